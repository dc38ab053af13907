package legacy

import (
	"regexp"
	"strings"
	"time"
)

// UnknownInitials stands in when no author could be recovered from a token.
const UnknownInitials = "XXX"

// Author initials as the lab writes them: two to four capitals, optionally a
// trailing digit for collisions.
var initialsPattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]?$`)

// datedComment is a freeze-scoped annotation parsed out of the comments
// column: "<date> <initials> <free text>".
type datedComment struct {
	Date     time.Time
	Initials string
	Text     string
}

// classifyComments partitions comment tokens into dated freeze annotations
// and undated strain-level notes. A token is dated when its first
// whitespace-delimited segment parses as a date; the second segment becomes
// the author initials when it looks like initials, otherwise the author is
// unknown and the whole remainder is kept as text.
func classifyComments(tokens []string) (dated []datedComment, undated []string) {
	for _, tok := range tokens {
		fields := strings.Fields(tok)
		if len(fields) == 0 {
			continue
		}
		date, ok := ParseDate(fields[0])
		if !ok {
			undated = append(undated, tok)
			continue
		}
		c := datedComment{Date: date, Initials: UnknownInitials}
		rest := fields[1:]
		if len(rest) > 0 && initialsPattern.MatchString(rest[0]) {
			c.Initials = rest[0]
			rest = rest[1:]
		}
		c.Text = strings.Join(rest, " ")
		dated = append(dated, c)
	}
	return dated, undated
}

// StrainComments joins undated comment tokens into the immutable strain-level
// comment field.
func StrainComments(undated []string) string {
	return strings.Join(undated, " | ")
}
