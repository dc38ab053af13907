package legacy

import (
	"log"
	"strconv"
	"strings"
	"time"

	"nemastocks/pkg/domain"
)

// Annotation is the outcome of one freeze's quality check, recovered from a
// dated comment.
type Annotation struct {
	Tester   string
	Comments string
	TestDate time.Time
}

// TubePlan is one physical tube placement to materialize.
type TubePlan struct {
	CapColor  string
	Dewar     int
	Rack      int
	Box       int
	SetNumber int
}

// FreezePlan is one freeze event with its annotation and tube placements.
type FreezePlan struct {
	Date  time.Time
	Note  *Annotation
	Tubes []TubePlan
}

// Plan is the normalized, causally-linked output of reconciling one legacy
// record. Building a plan touches no external state; the materializer
// applies it to the record store afterwards.
type Plan struct {
	WJA                int
	Description        string
	Phenotype          string
	DateCreated        time.Time
	AdditionalComments string
	Freezes            []FreezePlan
	Thaws              []ThawRecord
	// Empty marks a strain with no freezes and no tubes on record; it is
	// reported as skipped rather than materialized.
	Empty bool
}

// Pipeline reconciles legacy records into plans.
type Pipeline struct {
	Corrections CorrectionTable
	Match       MatchOptions
	Logger      *log.Logger
}

// NewPipeline builds a pipeline with the curated correction table and the
// historical matching windows.
func NewPipeline(logger *log.Logger) *Pipeline {
	return &Pipeline{
		Corrections: DefaultCorrections(),
		Match:       DefaultMatchOptions(),
		Logger:      logger,
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

// BuildPlan runs the full per-strain reconciliation: split, correct,
// reconcile cardinality, group freeze events, classify and match comments,
// parse thaws. The returned error, when strain-fatal, is a *StrainError
// carrying a reason code.
func (p *Pipeline) BuildPlan(rec Record) (*Plan, error) {
	wja, err := rec.StrainNumber()
	if err != nil {
		return nil, &StrainError{WJA: rec.WJANumber, Reason: domain.ReasonBadRecord,
			Msg: "unusable strain identifier", Err: err}
	}
	id := domain.FormatWJA(wja)

	lists := SplitColumns(rec)
	p.Corrections.Apply(wja, &lists)

	created, hasCreated := constructionDate(lists)
	if err := reconcileCapColors(wja, &lists, p.logf); err != nil {
		return nil, err
	}
	if !hasCreated {
		// A handful of never-frozen strains carry no date anywhere; their
		// construction date is re-derived after reconciliation in case a
		// synthetic freeze date appeared.
		created, _ = constructionDate(lists)
	}

	dated, undated := classifyComments(lists.Comments)
	plan := &Plan{
		WJA:                wja,
		Description:        rec.Description,
		Phenotype:          rec.Phenotype,
		DateCreated:        created,
		AdditionalComments: StrainComments(undated),
	}

	if len(lists.DateFrozen) == 0 && len(lists.TubeNo) == 0 {
		plan.Empty = true
		return plan, nil
	}

	builders, err := groupFreezeEvents(wja, lists, p.logf)
	if err != nil {
		return nil, err
	}
	freezeDates := make([]time.Time, len(builders))
	for i, b := range builders {
		freezeDates[i] = b.Date
	}
	notes, err := matchAnnotations(wja, freezeDates, dated, p.Match)
	if err != nil {
		return nil, err
	}

	for _, b := range builders {
		fp := FreezePlan{Date: b.Date}
		if c, ok := notes[dateKey(b.Date)]; ok {
			fp.Note = &Annotation{Tester: c.Initials, Comments: c.Text, TestDate: c.Date}
		}
		// Set numbers disambiguate tubes sharing a box within one freeze;
		// they are allocated per box so the placement key stays unique even
		// when two raw rows of the same freeze land in one box.
		nextSet := make(map[string]int)
		for _, row := range b.Rows {
			dewar, rack, box, err := parsePlacement(id, row)
			if err != nil {
				return nil, err
			}
			boxID := domain.BoxID(dewar, rack, box)
			for i := 0; i < row.Count; i++ {
				fp.Tubes = append(fp.Tubes, TubePlan{
					CapColor:  strings.ToLower(row.CapColor),
					Dewar:     dewar,
					Rack:      rack,
					Box:       box,
					SetNumber: nextSet[boxID],
				})
				nextSet[boxID]++
			}
		}
		plan.Freezes = append(plan.Freezes, fp)
	}

	thaws, err := parseThaws(wja, lists, p.logf)
	if err != nil {
		return nil, err
	}
	plan.Thaws = thaws
	return plan, nil
}

// parsePlacement resolves a raw tube row's tank/rack/box tokens into the
// dewar/rack/box triple. Tank tokens keep only their final digit ("JA2" is
// dewar 2); rack-box tokens keep the segment after the final dash.
func parsePlacement(id string, row tubeRow) (dewar, rack, box int, err error) {
	tank := strings.TrimSpace(row.Tank)
	if tank == "" {
		return 0, 0, 0, strainErrf(id, domain.ReasonBadRecord, "empty tank token")
	}
	dewar, aerr := strconv.Atoi(tank[len(tank)-1:])
	if aerr != nil {
		return 0, 0, 0, strainErrf(id, domain.ReasonBadRecord, "bad tank token %q", row.Tank)
	}
	rack, aerr = strconv.Atoi(strings.TrimSpace(row.Rack))
	if aerr != nil {
		return 0, 0, 0, strainErrf(id, domain.ReasonBadRecord, "bad rack token %q", row.Rack)
	}
	parts := strings.Split(strings.TrimSpace(row.RackBox), "-")
	box, aerr = strconv.Atoi(parts[len(parts)-1])
	if aerr != nil {
		return 0, 0, 0, strainErrf(id, domain.ReasonBadRecord, "bad rack-box token %q", row.RackBox)
	}
	return dewar, rack, box, nil
}
