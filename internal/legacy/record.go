package legacy

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one strain row of the legacy spreadsheet export. Multi-valued
// columns hold pipe-delimited token lists. Records are immutable input; the
// pipeline never persists them as-is.
type Record struct {
	WJANumber        string `json:"WJA_NUMBER"`
	Description      string `json:"DESCRIPTION"`
	Phenotype        string `json:"PHENOTYPE"`
	ReceivedFromDate string `json:"RECEIVED_FROM_DATE"`
	Location         string `json:"LOCATION"`
	Frozen           string `json:"FROZEN"`
	Thawed           string `json:"THAWED"`
	DateFrozen       string `json:"DATE_FROZEN"`
	TubeNo           string `json:"TUBE_NO"`
	TankNo           string `json:"TANK_NO"`
	RackNo           string `json:"RACK_NO"`
	RackBoxNo        string `json:"RACK_BOX_NO"`
	DateThawed       string `json:"DATE_THAWED"`
	NoOfTubesThawed  string `json:"NO_OF_TUBES_THAWED"`
	Comments         string `json:"COMMENTS"`
	CapColor         string `json:"CAP_COLOR"`
}

// StrainNumber extracts the numeric WJA id from identifiers like "WJA 0042".
func (r Record) StrainNumber() (int, error) {
	fields := strings.Fields(r.WJANumber)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty WJA number")
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("parse WJA number %q: %w", r.WJANumber, err)
	}
	return n, nil
}

// TokenLists holds the split multi-valued columns of one record.
type TokenLists struct {
	DateFrozen  []string
	TubeNo      []string
	TankNo      []string
	RackNo      []string
	RackBoxNo   []string
	DateThawed  []string
	TubesThawed []string
	Comments    []string
	CapColors   []string
}

// Delimiter separates tokens inside a multi-valued legacy column.
const Delimiter = "|"

// SplitColumn tokenizes one raw multi-valued column. Empty tokens from
// leading or doubled delimiters are dropped so they never become phantom
// entries. Token content is not normalized here.
func SplitColumn(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(raw, Delimiter) {
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// SplitColumns tokenizes every multi-valued column of a record.
func SplitColumns(r Record) TokenLists {
	return TokenLists{
		DateFrozen:  SplitColumn(r.DateFrozen),
		TubeNo:      SplitColumn(r.TubeNo),
		TankNo:      SplitColumn(r.TankNo),
		RackNo:      SplitColumn(r.RackNo),
		RackBoxNo:   SplitColumn(r.RackBoxNo),
		DateThawed:  SplitColumn(r.DateThawed),
		TubesThawed: SplitColumn(r.NoOfTubesThawed),
		Comments:    SplitColumn(r.Comments),
		CapColors:   SplitColumn(r.CapColor),
	}
}
