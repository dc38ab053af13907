// Package migrate drives the one-shot conversion of the legacy spreadsheet
// export into normalized records: it loads the export, builds per-strain
// plans with the legacy pipeline, materializes them transactionally, and
// writes the batch report.
package migrate

import (
	"errors"
	"fmt"

	"nemastocks/internal/legacy"
	"nemastocks/pkg/domain"
)

// materialize applies one strain's plan inside an open transaction. Plans
// are deterministic and all store operations are create-or-fetch, so
// replaying a plan against populated state is a no-op. Any returned error
// rolls the whole strain back.
func materialize(tx domain.Transaction, plan *legacy.Plan) error {
	id := domain.FormatWJA(plan.WJA)

	if _, _, err := tx.EnsureStrain(domain.Strain{
		WJA:                plan.WJA,
		Description:        plan.Description,
		Phenotype:          plan.Phenotype,
		DateCreated:        plan.DateCreated,
		AdditionalComments: plan.AdditionalComments,
	}); err != nil {
		return &legacy.StrainError{WJA: id, Reason: domain.ReasonStoreError, Msg: "storing strain", Err: err}
	}

	for _, fp := range plan.Freezes {
		fg := domain.FreezeGroup{
			StrainWJA:   plan.WJA,
			DateCreated: fp.Date,
			DateStored:  fp.Date,
			Freezer:     legacy.UnknownInitials,
			Stored:      true,
		}
		if fp.Note != nil {
			tester := fp.Note.Tester
			comments := fp.Note.Comments
			testDate := fp.Note.TestDate
			fg.StartedTest = true
			fg.CompletedTest = true
			fg.PassedTest = true
			fg.Tester = &tester
			fg.TesterComments = &comments
			fg.TestCheckDate = &testDate
		}
		stored, created, err := tx.EnsureFreezeGroup(fg)
		if err != nil {
			return &legacy.StrainError{WJA: id, Reason: domain.ReasonStoreError, Msg: "storing freeze group", Err: err}
		}
		if !created {
			if err := checkAnnotation(id, stored, fp.Note); err != nil {
				return err
			}
		}

		for _, tp := range fp.Tubes {
			box, ok := tx.FindBox(tp.Dewar, tp.Rack, tp.Box)
			if !ok {
				return &legacy.StrainError{WJA: id, Reason: domain.ReasonBoxNotFound,
					Msg: fmt.Sprintf("no box at %s", domain.BoxID(tp.Dewar, tp.Rack, tp.Box))}
			}
			if _, _, err := tx.EnsureTube(domain.Tube{
				StrainWJA:     plan.WJA,
				FreezeGroupID: stored.ID,
				BoxID:         box.ID,
				SetNumber:     tp.SetNumber,
				CapColor:      tp.CapColor,
				DateCreated:   fp.Date,
			}); err != nil {
				reason := domain.ReasonStoreError
				if errors.Is(err, domain.ErrBoxFull) {
					reason = domain.ReasonBoxOverflow
				}
				return &legacy.StrainError{WJA: id, Reason: reason, Msg: "placing tube", Err: err}
			}
		}

		if got := len(tx.TubesForFreezeGroup(stored.ID)); got != len(fp.Tubes) {
			return &legacy.StrainError{WJA: id, Reason: domain.ReasonCardinalityMismatch,
				Msg: fmt.Sprintf("freeze group %s holds %d tubes, plan called for %d", stored.ID, got, len(fp.Tubes))}
		}
	}

	return resolveThaws(tx, id, plan)
}

// checkAnnotation verifies an existing freeze group carries the same
// annotation the plan would attach. Matching annotations make re-runs
// no-ops; diverging ones mean two comments claim the same freeze.
func checkAnnotation(id string, existing domain.FreezeGroup, note *legacy.Annotation) error {
	switch {
	case note == nil:
		return nil
	case !existing.Annotated():
		return &legacy.StrainError{WJA: id, Reason: domain.ReasonAnnotationCollision,
			Msg: fmt.Sprintf("freeze group %s exists without the expected annotation", existing.ID)}
	case *existing.TesterComments != note.Comments ||
		(existing.Tester != nil && *existing.Tester != note.Tester) ||
		(existing.TestCheckDate != nil && !existing.TestCheckDate.Equal(note.TestDate)):
		return &legacy.StrainError{WJA: id, Reason: domain.ReasonAnnotationCollision,
			Msg: fmt.Sprintf("freeze group %s already annotated differently", existing.ID)}
	}
	return nil
}

// resolveThaws pairs each historical thaw with a concrete tube. Thaws name
// only a box, never a tube, so they are zipped against the strain's tubes in
// that box in creation order. The pairing is deterministic, which keeps
// re-marking idempotent.
func resolveThaws(tx domain.Transaction, id string, plan *legacy.Plan) error {
	cursor := make(map[string]int)
	for _, th := range plan.Thaws {
		boxID := th.BoxID()
		tubes := tx.TubesInBox(plan.WJA, boxID)
		i := cursor[boxID]
		if i >= len(tubes) {
			return &legacy.StrainError{WJA: id, Reason: domain.ReasonBadRecord,
				Msg: fmt.Sprintf("thaw on %s names box %s but only %d tube(s) of this strain are there", th.Date.Format("2006-01-02"), boxID, len(tubes))}
		}
		cursor[boxID] = i + 1
		if _, err := tx.MarkTubeThawed(tubes[i].ID, th.Date, th.Requester); err != nil {
			return &legacy.StrainError{WJA: id, Reason: domain.ReasonStoreError, Msg: "marking tube thawed", Err: err}
		}
	}
	return nil
}
