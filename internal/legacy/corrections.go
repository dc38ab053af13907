package legacy

import (
	"strings"

	"nemastocks/pkg/domain"
)

// ListField names one of the mutable token lists a correction can target.
type ListField string

const (
	FieldDateFrozen  ListField = "date_frozen"
	FieldDateThawed  ListField = "date_thawed"
	FieldTubesThawed ListField = "tubes_thawed"
	FieldComments    ListField = "comments"
	FieldCapColors   ListField = "cap_colors"
)

// OpKind enumerates the declarative correction operations.
type OpKind string

const (
	// OpAppendCopy appends a copy of list[Src].
	OpAppendCopy OpKind = "append_copy"
	// OpInsertCopy inserts a copy of list[Src] at Index.
	OpInsertCopy OpKind = "insert_copy"
	// OpAppendValue appends Value.
	OpAppendValue OpKind = "append_value"
	// OpReplaceList replaces the whole list with Values.
	OpReplaceList OpKind = "replace_list"
	// OpSetAt overwrites list[Index] with Value.
	OpSetAt OpKind = "set_at"
	// OpRewriteAt replaces the leading From of list[Index] with To. A no-op
	// when the prefix is absent, which makes re-application safe.
	OpRewriteAt OpKind = "rewrite_at"
	// OpRemoveAt removes list[Index].
	OpRemoveAt OpKind = "remove_at"
	// OpDemoteLeadingColorDate moves the first cap-color token to the tail as
	// "unknown <token>" and appends one extra "unknown" color. Covers strains
	// whose only recorded color token was a bare construction date.
	OpDemoteLeadingColorDate OpKind = "demote_leading_color_date"
)

// PatchOp is one hand-curated correction. Index follows the legacy
// convention that negative values count from the end of the list.
type PatchOp struct {
	Field  ListField
	Kind   OpKind
	Index  int
	Src    int
	From   string
	To     string
	Value  string
	Values []string
}

// CorrectionTable maps formatted strain identifiers ("WJA 0042") to the
// ordered corrections applied before any general reconciliation runs. The
// entries are tribal knowledge: every one encodes a specific historical
// data-entry defect found while migrating the export.
type CorrectionTable map[string][]PatchOp

func (l *TokenLists) field(f ListField) *[]string {
	switch f {
	case FieldDateFrozen:
		return &l.DateFrozen
	case FieldDateThawed:
		return &l.DateThawed
	case FieldTubesThawed:
		return &l.TubesThawed
	case FieldComments:
		return &l.Comments
	case FieldCapColors:
		return &l.CapColors
	default:
		return nil
	}
}

func resolveIndex(n, idx int) (int, bool) {
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func applyOp(l *TokenLists, op PatchOp) {
	list := l.field(op.Field)
	if list == nil {
		return
	}
	switch op.Kind {
	case OpAppendCopy:
		if src, ok := resolveIndex(len(*list), op.Src); ok {
			*list = append(*list, (*list)[src])
		}
	case OpInsertCopy:
		src, okSrc := resolveIndex(len(*list), op.Src)
		if !okSrc || op.Index < 0 || op.Index > len(*list) {
			return
		}
		val := (*list)[src]
		*list = append(*list, "")
		copy((*list)[op.Index+1:], (*list)[op.Index:])
		(*list)[op.Index] = val
	case OpAppendValue:
		*list = append(*list, op.Value)
	case OpReplaceList:
		*list = append([]string(nil), op.Values...)
	case OpSetAt:
		if idx, ok := resolveIndex(len(*list), op.Index); ok {
			(*list)[idx] = op.Value
		}
	case OpRewriteAt:
		if idx, ok := resolveIndex(len(*list), op.Index); ok {
			if strings.HasPrefix((*list)[idx], op.From) {
				(*list)[idx] = op.To + strings.TrimPrefix((*list)[idx], op.From)
			}
		}
	case OpRemoveAt:
		if idx, ok := resolveIndex(len(*list), op.Index); ok {
			*list = append((*list)[:idx], (*list)[idx+1:]...)
		}
	case OpDemoteLeadingColorDate:
		if len(l.CapColors) == 0 {
			return
		}
		first := l.CapColors[0]
		if strings.HasPrefix(first, "unknown ") {
			// Already demoted.
			return
		}
		l.CapColors = append(l.CapColors[1:], "unknown "+first, "unknown")
	}
}

// Strains whose two earliest freezes share a single recorded date. The first
// date token is duplicated so the tube rows line up.
var earlyDoubleFreezeStrains = map[int]bool{
	9: true, 10: true, 12: true, 13: true, 14: true, 15: true, 16: true,
	17: true, 18: true, 19: true, 20: true, 25: true, 26: true, 28: true,
	30: true, 35: true, 36: true, 41: true, 42: true, 44: true, 46: true,
	47: true, 49: true, 50: true, 51: true, 52: true, 53: true, 54: true,
	55: true, 56: true, 66: true, 67: true, 68: true, 69: true, 70: true,
	78: true, 79: true, 80: true, 81: true, 82: true, 83: true, 86: true,
	87: true, 88: true, 89: true, 90: true, 93: true, 94: true, 98: true,
	101: true, 102: true, 103: true, 104: true, 105: true, 107: true, 108: true,
}

// Same defect, but the strain saw later freezes, so the duplicated date has
// to go in the middle of the list instead of the end.
var earlyInsertFreezeStrains = map[int]bool{
	33: true, 40: true, 45: true, 65: true, 73: true, 84: true, 85: true,
	111: true, 143: true, 168: true, 278: true, 330: true, 331: true,
	573: true, 574: true, 578: true, 611: true, 612: true, 628: true,
	629: true, 630: true,
}

// Apply runs the generic early-record rules followed by the strain's curated
// corrections. Deterministic, and must run before cardinality reconciliation.
// An uncorrected defect is not swallowed here; it surfaces downstream as a
// length-mismatch error with the strain's id attached.
func (t CorrectionTable) Apply(wja int, l *TokenLists) {
	id := domain.FormatWJA(wja)

	switch {
	case earlyDoubleFreezeStrains[wja]:
		if len(l.DateFrozen) > 0 {
			l.DateFrozen = append(l.DateFrozen, l.DateFrozen[0])
		}
	case earlyInsertFreezeStrains[wja]:
		if len(l.DateFrozen) > 0 {
			applyOp(l, PatchOp{Field: FieldDateFrozen, Kind: OpInsertCopy, Index: 1, Src: 0})
		}
	case len(l.DateFrozen) == 1 && len(l.TubeNo) == 2 &&
		(l.DateFrozen[0] == "11/22/2017" || l.DateFrozen[0] == "3/15/2018"):
		// Too many strains share the two-freezes-one-date defect to list them
		// all; the first recorded date pins them down instead.
		l.DateFrozen = append(l.DateFrozen, l.DateFrozen[0])
	}

	if len(l.DateFrozen) > 0 && len(l.Comments) > 0 &&
		l.DateFrozen[len(l.DateFrozen)-1] == "12/23/19" &&
		strings.HasPrefix(l.Comments[len(l.Comments)-1], "01/06/20 AC") {
		// Rather than widen the matching window, move the comment date to sit
		// inside it.
		applyOp(l, PatchOp{Field: FieldComments, Kind: OpRewriteAt, Index: -1,
			From: "01/06/20 AC", To: "12/30/19 AC"})
	}
	if len(l.Comments) > 0 {
		applyOp(l, PatchOp{Field: FieldComments, Kind: OpRewriteAt, Index: -1,
			From: "8/9/18 MNP", To: "3/9/18 MNP"})
		for i := range l.Comments {
			if strings.HasPrefix(l.Comments[i], "11/21/2017 JAA ") {
				fixed := "11/25/2017 JAA "
				if wja == 42 {
					fixed = "11/11/2017 JAA "
				}
				applyOp(l, PatchOp{Field: FieldComments, Kind: OpRewriteAt, Index: i,
					From: "11/21/2017 JAA ", To: fixed})
			} else if strings.HasPrefix(l.Comments[i], "6/26/18 MNP") {
				applyOp(l, PatchOp{Field: FieldComments, Kind: OpRewriteAt, Index: i,
					From: "6/26/18 MNP", To: "5/26/18 MNP"})
			}
		}
	}

	for _, op := range t[id] {
		applyOp(l, op)
	}
}

// DefaultCorrections returns the curated per-strain correction table built
// up while triaging the spreadsheet export strain by strain.
func DefaultCorrections() CorrectionTable {
	return CorrectionTable{
		"WJA 0639": {
			// The wildtype. Three freezes were never dated and two colors
			// never recorded; a thaw entry lost its requester.
			{Field: FieldDateFrozen, Kind: OpAppendValue, Value: "9/1/22"},
			{Field: FieldDateFrozen, Kind: OpAppendValue, Value: "10/10/22"},
			{Field: FieldDateFrozen, Kind: OpAppendValue, Value: "10/10/22"},
			{Field: FieldCapColors, Kind: OpAppendValue, Value: "unknown"},
			{Field: FieldCapColors, Kind: OpAppendValue, Value: "unknown"},
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 5, Value: "03/03/2021 XXX"},
		},
		"WJA 2106": {
			// The male stock; comment lost its author initials.
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "3/29/18", To: "3/29/18 JAA"},
		},
		"WJA 0045": {
			{Field: FieldTubesThawed, Kind: OpRemoveAt, Index: 4},
			{Field: FieldDateThawed, Kind: OpRemoveAt, Index: 4},
		},
		"WJA 0141": {
			// Four freezes, one recorded date.
			{Field: FieldDateFrozen, Kind: OpReplaceList,
				Values: []string{"12/27/2017", "12/27/2017", "01/30/2018", "01/30/2018"}},
		},
		"WJA 0498": {
			// Five freezes, three dates; middle pair inferred from the first
			// thaw of those tubes.
			{Field: FieldDateFrozen, Kind: OpReplaceList,
				Values: []string{"11/22/2017", "10/20/2020", "10/20/2020", "03/16/2022", "03/16/2022"}},
		},
		"WJA 0552": {
			{Field: FieldDateFrozen, Kind: OpReplaceList,
				Values: []string{"11/22/2017", "02/01/2019", "02/01/2019", "11/16/2020", "11/16/2020"}},
			{Field: FieldComments, Kind: OpRewriteAt, Index: -2, From: "11/21/2017 JAA", To: "11/25/2017 JAA"},
			{Field: FieldCapColors, Kind: OpSetAt, Index: 1, Value: "red"},
			{Field: FieldTubesThawed, Kind: OpSetAt, Index: 2, Value: "1(JA2 1-8)"},
		},
		"WJA 0572": {
			{Field: FieldDateFrozen, Kind: OpReplaceList,
				Values: []string{"11/22/2017", "04/01/2018", "04/01/2018", "07/26/2019", "07/26/2019"}},
			{Field: FieldComments, Kind: OpRewriteAt, Index: -2, From: "11/21/2017 JAA", To: "11/25/2017 JAA"},
		},
		"WJA 0097": {
			{Field: FieldCapColors, Kind: OpReplaceList, Values: []string{"green 09/28/17"}},
		},
		"WJA 3129": {
			// Correction note dated like a freeze comment.
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "3/21/23- ", To: "CW (3/21/23):"},
		},
		"WJA 1234": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "10/21/22 CW", To: "CW (10/21/22)"},
		},
		"WJA 3069": {
			{Field: FieldDateFrozen, Kind: OpAppendValue, Value: "4/11/22"},
			{Field: FieldDateFrozen, Kind: OpAppendValue, Value: "4/11/22"},
		},
		"WJA 6014": {
			// Both trailing comments were meant for WJA 6104.
			{Field: FieldComments, Kind: OpRemoveAt, Index: -1},
			{Field: FieldComments, Kind: OpRemoveAt, Index: -1},
		},
		"WJA 3013": {
			{Field: FieldComments, Kind: OpRemoveAt, Index: -1},
		},
		"WJA 3015": {
			// Comment belongs on WJA 3105.
			{Field: FieldComments, Kind: OpRemoveAt, Index: -1},
		},
		"WJA 3105": {
			{Field: FieldComments, Kind: OpAppendValue, Value: "7/21/22 CW ok- some contamination"},
		},
		"WJA 4002": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -2, From: "8/4/2021 MJV", To: "MJV (8/4/2021)"},
		},
		"WJA 2107": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "05/18/18", To: "Note (05/18/18)"},
		},
		"WJA 0682": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -3, From: "1/16/18 MNP", To: "1/20/18 MNP"},
		},
		"WJA 0628": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -3, From: "1/16/18 MNP", To: "1/20/18 MNP"},
		},
		"WJA 0654": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "1/5/2018 JAA", To: "JAA (1/5/2018) Note:"},
		},
		"WJA 0680": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: -1, From: "1/7/22 note:", To: "Note (1/7/22):"},
		},
		"WJA 0043": {
			{Field: FieldComments, Kind: OpRewriteAt, Index: 4, From: "1/16/18 MNP", To: "1/26/18 MNP"},
		},
		"WJA 0432": {{Field: FieldCapColors, Kind: OpDemoteLeadingColorDate}},
		"WJA 0433": {{Field: FieldCapColors, Kind: OpDemoteLeadingColorDate}},
		"WJA 0434": {{Field: FieldCapColors, Kind: OpDemoteLeadingColorDate}},
		"WJA 0278": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 0, Value: "10/24/2020 SS"},
		},
		"WJA 0458": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 4, Value: "7/9/21 NB"},
		},
		"WJA 2126": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 2, Value: "10/8/20 JW"},
		},
		"WJA 2128": {
			{Field: FieldTubesThawed, Kind: OpSetAt, Index: 1, Value: "1(JA2 1-7)"},
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 8, Value: "5/5/22 XXX"},
		},
		"WJA 0780": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 3, Value: "6/6/23 XXX"},
		},
		"WJA 5106": {
			{Field: FieldTubesThawed, Kind: OpSetAt, Index: 0, Value: "1(JA1 5-6)"},
		},
		"WJA 6111": {
			{Field: FieldTubesThawed, Kind: OpSetAt, Index: 0, Value: "1(JA1 2-4)"},
		},
		"WJA 5051": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 2, Value: "10/8/2020 JW"},
		},
		"WJA 4005": {
			{Field: FieldDateThawed, Kind: OpSetAt, Index: 0, Value: "12/10/19 AZ"},
		},
	}
}
