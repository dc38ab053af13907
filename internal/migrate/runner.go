package migrate

import (
	"context"
	"errors"
	"log"
	"time"

	"nemastocks/internal/legacy"
	"nemastocks/pkg/domain"
)

// Status is the terminal outcome of processing one strain.
type Status string

const (
	StatusSuccess Status = "success" // fully materialized
	StatusSkipped Status = "skipped" // no freezes or tubes on record
	StatusFailed  Status = "failed"  // rolled back with a reason code
)

// Outcome records what happened to one strain.
type Outcome struct {
	StrainID     string            `json:"strain_id"`
	Status       Status            `json:"status"`
	Reason       domain.ReasonCode `json:"reason,omitempty"`
	Detail       string            `json:"detail,omitempty"`
	Freezes      int               `json:"freezes,omitempty"`
	TubesCreated int               `json:"tubes,omitempty"`
	Thaws        int               `json:"thaws,omitempty"`
}

// Runner processes legacy records one strain at a time. Each strain runs in
// its own transaction, so one bad record never poisons the batch.
type Runner struct {
	Store    domain.RecordStore
	Pipeline *legacy.Pipeline
	Metrics  *Metrics
	Logger   *log.Logger
}

// NewRunner wires a runner with the default pipeline.
func NewRunner(store domain.RecordStore, metrics *Metrics, logger *log.Logger) *Runner {
	return &Runner{
		Store:    store,
		Pipeline: legacy.NewPipeline(logger),
		Metrics:  metrics,
		Logger:   logger,
	}
}

// Run migrates every record and returns the batch report. Only a context
// cancellation or a storage-level failure aborts the run early.
func (r *Runner) Run(ctx context.Context, records []legacy.Record) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o := r.runOne(ctx, rec)
		r.Metrics.observeOutcome(o)
		report.Outcomes = append(report.Outcomes, o)
	}
	report.FinishedAt = time.Now().UTC()
	r.Metrics.observeDuration(report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, rec legacy.Record) Outcome {
	plan, err := r.Pipeline.BuildPlan(rec)
	if err != nil {
		return failedOutcome(rec.WJANumber, err)
	}

	o := Outcome{StrainID: domain.FormatWJA(plan.WJA)}
	for _, fp := range plan.Freezes {
		o.TubesCreated += len(fp.Tubes)
	}
	o.Freezes = len(plan.Freezes)
	o.Thaws = len(plan.Thaws)

	if err := r.Store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return materialize(tx, plan)
	}); err != nil {
		return failedOutcome(o.StrainID, err)
	}

	if plan.Empty {
		// The strain row itself is still materialized so lookups find it;
		// only the freeze/tube/thaw reconciliation is skipped.
		o.Status = StatusSkipped
		o.Detail = "no freezes or tubes on record"
		return o
	}
	o.Status = StatusSuccess
	return o
}

func failedOutcome(strainID string, err error) Outcome {
	o := Outcome{StrainID: strainID, Status: StatusFailed, Detail: err.Error()}
	var serr *legacy.StrainError
	if errors.As(err, &serr) {
		o.StrainID = serr.WJA
		o.Reason = serr.Reason
	} else {
		o.Reason = domain.ReasonStoreError
	}
	return o
}
