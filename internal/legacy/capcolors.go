package legacy

import (
	"strings"
	"time"

	"nemastocks/pkg/domain"
)

// Strains frozen before freeze dates were systematically logged. Their
// freeze date is synthesized from the construction date plus a fixed offset.
var knownDatelessStrains = map[int]bool{
	1197: true, 1201: true, 3065: true, 3066: true, 3067: true,
	3068: true, 3070: true,
}

const defaultSyntheticOffsetDays = 25

// Per-strain overrides for the synthetic freeze-date offset.
var syntheticOffsetOverrides = map[int]int{
	3070: 15,
}

// constructionDate recovers the strain's construction date. The usual source
// is the first cap-color token ("green 09/28/17"); failing that, the first
// freeze date stands in.
func constructionDate(l TokenLists) (time.Time, bool) {
	if len(l.CapColors) > 0 {
		parts := strings.Fields(l.CapColors[0])
		switch {
		case len(parts) == 2:
			if d, ok := ParseDate(parts[1]); ok {
				return d, true
			}
		case len(parts) > 2:
			// Some strains carry several trailing dates; the last one wins.
			if d, ok := ParseDate(parts[len(parts)-1]); ok {
				return d, true
			}
		case len(parts) == 1:
			// A date and no color at all.
			if d, ok := ParseDate(parts[0]); ok {
				return d, true
			}
		}
	}
	for _, tok := range l.DateFrozen {
		if d, ok := ParseDate(tok); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func dedupTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// reconcileCapColors makes the cap-color list cardinality match the number of
// distinct freeze dates, then expands it back out so every (possibly
// repeated) freeze-date token has an associated color.
func reconcileCapColors(wja int, l *TokenLists, logf func(string, ...any)) error {
	id := domain.FormatWJA(wja)
	if len(l.DateFrozen) == 0 && len(l.TubeNo) == 0 {
		// Nothing frozen, nothing to reconcile.
		return nil
	}
	if len(l.DateFrozen) == 0 {
		// Tubes with no dates at all: the strain predates date logging.
		created, ok := constructionDate(*l)
		if !ok {
			return strainErrf(id, domain.ReasonBadRecord,
				"no construction date available to synthesize freeze dates")
		}
		if !knownDatelessStrains[wja] && logf != nil {
			logf("%s: strain without freeze dates not in the known set", id)
		}
		offset := defaultSyntheticOffsetDays
		if o, ok := syntheticOffsetOverrides[wja]; ok {
			offset = o
		}
		synthetic := created.AddDate(0, 0, offset).Format("01/02/2006")
		for range l.TubeNo {
			l.DateFrozen = append(l.DateFrozen, synthetic)
		}
	}

	// The first cap-color token is often a construction-time annotation
	// ("color date", sometimes with the date duplicated). If its date
	// parses, it is not a freeze color and gets dropped.
	dropped := false
	if len(l.CapColors) > 0 {
		parts := strings.Fields(l.CapColors[0])
		if len(parts) > 2 && parts[len(parts)-1] == parts[len(parts)-2] {
			parts = parts[:2]
		}
		if len(parts) == 2 {
			if _, ok := ParseDate(parts[1]); ok {
				l.CapColors = l.CapColors[1:]
				dropped = true
			}
		}
	}

	distinct := len(dedupTokens(l.DateFrozen))
	if !dropped && len(l.CapColors) != distinct {
		return strainErrf(id, domain.ReasonCardinalityMismatch,
			"%d cap colors vs %d distinct freeze dates", len(l.CapColors), distinct)
	}
	if len(l.CapColors) != distinct {
		if len(l.CapColors) == distinct+1 {
			// A rarer second construction-annotation pattern.
			l.CapColors = l.CapColors[1:]
		}
		if len(l.CapColors) != distinct {
			return strainErrf(id, domain.ReasonCardinalityMismatch,
				"%d cap colors vs %d distinct freeze dates", len(l.CapColors), distinct)
		}
	}

	// Expand per-date colors back out across repeated freeze-date tokens.
	byDate := make(map[string]string, distinct)
	for i, tok := range dedupTokens(l.DateFrozen) {
		byDate[tok] = l.CapColors[i]
	}
	expanded := make([]string, len(l.DateFrozen))
	for i, tok := range l.DateFrozen {
		expanded[i] = byDate[tok]
	}
	l.CapColors = expanded
	return nil
}
