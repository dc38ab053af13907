package legacy

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a legacy month/day/year token ("11/22/2017", "9/1/22").
// Tokens must contain exactly two slashes; anything else is not a date.
// Callers branch on the boolean instead of treating parse failure as an
// error.
func ParseDate(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if strings.Count(token, "/") != 2 {
		return time.Time{}, false
	}
	parts := strings.Split(token, "/")
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, false
	}
	if year < 100 {
		// Two-digit years in the export all post-date 2000.
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 2000 || year > 2100 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		// time.Date normalizes overflow (e.g. 2/30), which means the token
		// named a day that does not exist.
		return time.Time{}, false
	}
	return t, true
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
