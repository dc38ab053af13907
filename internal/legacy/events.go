package legacy

import (
	"strconv"
	"time"

	"nemastocks/pkg/domain"
)

// tubeRow is one per-index slice of the parallel tube lists: a set of Count
// identical tubes placed together during one freeze. Ephemeral; it only
// lives while rows are grouped into freeze builders.
type tubeRow struct {
	Count    int
	Tank     string
	Rack     string
	RackBox  string
	CapColor string
}

// freezeBuilder accumulates the tube rows of one distinct freeze date, in
// first-appearance order.
type freezeBuilder struct {
	Date time.Time
	Rows []tubeRow
}

// groupFreezeEvents groups the per-index tube rows into one builder per
// distinct parsed freeze date. All parallel lists must have the same length
// as the freeze-date list; a mismatch is a data-quality signal, not
// something to auto-correct. Unparseable dates are logged and skipped.
func groupFreezeEvents(wja int, l TokenLists, logf func(string, ...any)) ([]freezeBuilder, error) {
	id := domain.FormatWJA(wja)
	n := len(l.DateFrozen)
	if len(l.TubeNo) != n || len(l.TankNo) != n || len(l.RackNo) != n || len(l.RackBoxNo) != n {
		return nil, strainErrf(id, domain.ReasonLengthMismatch,
			"parallel tube lists disagree: dates=%d tubes=%d tanks=%d racks=%d boxes=%d",
			n, len(l.TubeNo), len(l.TankNo), len(l.RackNo), len(l.RackBoxNo))
	}
	if len(l.CapColors) != n {
		return nil, strainErrf(id, domain.ReasonCardinalityMismatch,
			"%d cap colors for %d freeze dates after reconciliation", len(l.CapColors), n)
	}

	var builders []freezeBuilder
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		date, ok := ParseDate(l.DateFrozen[i])
		if !ok {
			if logf != nil {
				logf("%s: skipping unparseable freeze date %q", id, l.DateFrozen[i])
			}
			continue
		}
		count, err := strconv.Atoi(l.TubeNo[i])
		if err != nil || count < 0 {
			return nil, strainErrf(id, domain.ReasonBadRecord,
				"bad tube count %q for freeze %s", l.TubeNo[i], l.DateFrozen[i])
		}
		row := tubeRow{
			Count:    count,
			Tank:     l.TankNo[i],
			Rack:     l.RackNo[i],
			RackBox:  l.RackBoxNo[i],
			CapColor: l.CapColors[i],
		}
		key := dateKey(date)
		if at, seen := index[key]; seen {
			builders[at].Rows = append(builders[at].Rows, row)
			continue
		}
		index[key] = len(builders)
		builders = append(builders, freezeBuilder{Date: date, Rows: []tubeRow{row}})
	}
	return builders, nil
}
