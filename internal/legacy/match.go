package legacy

import (
	"sort"
	"time"

	"nemastocks/pkg/domain"
)

// MatchOptions bound the temporal matcher. All windows are in days.
type MatchOptions struct {
	// ToleranceDays is the widest gap at which a dated comment still binds
	// to a freeze event.
	ToleranceDays int
	// TooFarDays is the gap beyond which a dated comment is a hard error:
	// it signals a data defect that needs a manual correction entry.
	TooFarDays int
	// WiggleDays is the extra slack granted to a runner-up candidate when
	// the closest match is implausible (comment predates the freeze).
	WiggleDays int
}

// DefaultMatchOptions returns the windows used by the historical migration.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{ToleranceDays: 10, TooFarDays: 30, WiggleDays: 3}
}

func daysBetween(a, b time.Time) int {
	return int(a.Sub(b) / (24 * time.Hour))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// matchAnnotations assigns dated comments to freeze dates one-to-one by
// nearest date within the tolerance window. Both inputs are treated as
// immutable; consumption is tracked with an index set rather than list
// mutation. Comments are processed in date order (greedy), so the earliest
// comment wins a contested freeze and later comments fall back to whatever
// candidates remain.
//
// A comment whose nearest freeze sits inside (tolerance, tooFar] is simply
// unmatched; beyond tooFar it is a hard error. When the closest candidate
// has a negative delta (the comment predates the freeze, which is
// implausible for a post-freeze quality check), the best non-negative
// runner-up is preferred if it is within tolerance and within wiggle of the
// closest candidate's magnitude.
func matchAnnotations(wja int, freezes []time.Time, comments []datedComment, opts MatchOptions) (map[string]datedComment, error) {
	id := domain.FormatWJA(wja)
	dates := append([]time.Time(nil), freezes...)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	ordered := append([]datedComment(nil), comments...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	consumed := make([]bool, len(dates))
	matched := make(map[string]datedComment, len(ordered))

	for _, c := range ordered {
		best, bestNonNeg := -1, -1
		for i, d := range dates {
			if consumed[i] {
				continue
			}
			delta := daysBetween(c.Date, d)
			if best < 0 || abs(delta) < abs(daysBetween(c.Date, dates[best])) {
				best = i
			}
			if delta >= 0 && (bestNonNeg < 0 || delta < daysBetween(c.Date, dates[bestNonNeg])) {
				bestNonNeg = i
			}
		}
		if best < 0 {
			// Every freeze already carries an annotation; the comment stays
			// a loose end rather than overwriting anything.
			continue
		}
		bestDelta := daysBetween(c.Date, dates[best])
		if abs(bestDelta) > opts.TooFarDays {
			return nil, strainErrf(id, domain.ReasonCommentGapExceeded,
				"comment dated %s is %d days from nearest freeze %s",
				dateKey(c.Date), abs(bestDelta), dateKey(dates[best]))
		}
		if abs(bestDelta) > opts.ToleranceDays {
			continue
		}
		if bestDelta < 0 && bestNonNeg >= 0 && bestNonNeg != best {
			// The comment precedes its closest freeze; tests happen after
			// freezing, so a plausible later candidate nearby wins instead.
			nnDelta := daysBetween(c.Date, dates[bestNonNeg])
			if nnDelta <= opts.ToleranceDays &&
				nnDelta-abs(bestDelta) <= opts.WiggleDays {
				best = bestNonNeg
			}
		}
		key := dateKey(dates[best])
		if _, dup := matched[key]; dup {
			return nil, strainErrf(id, domain.ReasonAnnotationCollision,
				"freeze %s already carries an annotation", key)
		}
		matched[key] = c
		consumed[best] = true
	}
	return matched, nil
}
