package legacy

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"nemastocks/pkg/domain"
)

// Thaw count-and-location tokens look like "1(JA2 3-4)": one tube from tank
// JA2, rack 3, box 4. Very old records occasionally carry trailing garbage,
// so the pattern is anchored only at the front.
var thawLocationPattern = regexp.MustCompile(`^(\d+)\((JA\s?\d+)\s{1,2}(\d+)-(\d+)\)`)

// ThawRecord is one parsed historical thaw. It is never persisted directly;
// it only mutates tube state during materialization.
type ThawRecord struct {
	Date      time.Time
	Requester string
	Count     int
	Dewar     int
	Rack      int
	Box       int
}

// BoxID returns the canonical id of the box the thaw targeted.
func (t ThawRecord) BoxID() string {
	return domain.BoxID(t.Dewar, t.Rack, t.Box)
}

// parseThaws pairs each date+requester token with its count+location token.
// Unparseable tokens are logged and dropped (there is precedent for garbage
// in very old records); a record claiming more than one tube per thaw breaks
// the one-tube-per-record model and is a hard error.
func parseThaws(wja int, l TokenLists, logf func(string, ...any)) ([]ThawRecord, error) {
	id := domain.FormatWJA(wja)
	if len(l.DateThawed) != len(l.TubesThawed) {
		return nil, strainErrf(id, domain.ReasonLengthMismatch,
			"%d thaw dates vs %d thaw locations", len(l.DateThawed), len(l.TubesThawed))
	}
	var out []ThawRecord
	for i := range l.DateThawed {
		m := thawLocationPattern.FindStringSubmatch(l.TubesThawed[i])
		if m == nil {
			if logf != nil {
				logf("%s: skipping unparseable thaw location %q", id, l.TubesThawed[i])
			}
			continue
		}
		count, _ := strconv.Atoi(m[1])
		tank := m[2]
		dewar, err := strconv.Atoi(tank[len(tank)-1:])
		if err != nil {
			if logf != nil {
				logf("%s: skipping thaw with bad tank %q", id, tank)
			}
			continue
		}
		rack, _ := strconv.Atoi(m[3])
		box, _ := strconv.Atoi(m[4])

		dateAndUser := strings.SplitN(strings.TrimSpace(l.DateThawed[i]), " ", 2)
		if len(dateAndUser) != 2 {
			if logf != nil {
				logf("%s: skipping thaw without requester %q", id, l.DateThawed[i])
			}
			continue
		}
		date, ok := ParseDate(dateAndUser[0])
		if !ok {
			if logf != nil {
				logf("%s: skipping thaw with unparseable date %q", id, dateAndUser[0])
			}
			continue
		}
		if count != 1 {
			return nil, strainErrf(id, domain.ReasonMultiTubeThaw,
				"thaw record %q claims %d tubes; exactly one tube per thaw", l.TubesThawed[i], count)
		}
		out = append(out, ThawRecord{
			Date:      date,
			Requester: strings.TrimSpace(dateAndUser[1]),
			Count:     count,
			Dewar:     dewar,
			Rack:      rack,
			Box:       box,
		})
	}
	return out, nil
}
