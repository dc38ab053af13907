package migrate

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	blobcore "nemastocks/internal/blob/core"
	"nemastocks/pkg/domain"
)

// Report is the full batch result: one outcome per input strain.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// RunSummary aggregates a report for triage.
type RunSummary struct {
	Total     int                       `json:"total"`
	Succeeded int                       `json:"succeeded"`
	Skipped   int                       `json:"skipped"`
	Failed    int                       `json:"failed"`
	Tubes     int                       `json:"tubes"`
	Reasons   map[domain.ReasonCode]int `json:"reasons,omitempty"`
}

// Summary tallies outcomes by status and failure reason.
func (r *Report) Summary() RunSummary {
	s := RunSummary{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
			if s.Reasons == nil {
				s.Reasons = make(map[domain.ReasonCode]int)
			}
			s.Reasons[o.Reason]++
		}
		s.Tubes += o.TubesCreated
	}
	return s
}

// FailureReasons returns the reason histogram sorted by descending count,
// ties broken by code.
func (r *Report) FailureReasons() []ReasonCount {
	counts := r.Summary().Reasons
	out := make([]ReasonCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, ReasonCount{Reason: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// ReasonCount is one row of the failure histogram.
type ReasonCount struct {
	Reason domain.ReasonCode `json:"reason"`
	Count  int               `json:"count"`
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes the per-strain outcomes as CSV with a header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"strain", "status", "reason", "freezes", "tubes", "thaws", "detail"}); err != nil {
		return err
	}
	for _, o := range r.Outcomes {
		row := []string{
			o.StrainID,
			string(o.Status),
			string(o.Reason),
			strconv.Itoa(o.Freezes),
			strconv.Itoa(o.TubesCreated),
			strconv.Itoa(o.Thaws),
			o.Detail,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Archive writes the report to the blob store under prefix, as JSON and CSV,
// keyed by the run's start timestamp. Put is create-only, so an archived run
// can never be rewritten.
func (r *Report) Archive(ctx context.Context, store blobcore.Store, prefix string) ([]string, error) {
	stamp := r.StartedAt.Format("20060102T150405Z")

	var jsonBuf bytes.Buffer
	if err := r.WriteJSON(&jsonBuf); err != nil {
		return nil, err
	}
	jsonKey := fmt.Sprintf("%srun-%s.json", prefix, stamp)
	if _, err := store.Put(ctx, jsonKey, &jsonBuf, blobcore.PutOptions{ContentType: "application/json"}); err != nil {
		return nil, fmt.Errorf("archiving %s: %w", jsonKey, err)
	}

	var csvBuf bytes.Buffer
	if err := r.WriteCSV(&csvBuf); err != nil {
		return nil, err
	}
	csvKey := fmt.Sprintf("%srun-%s.csv", prefix, stamp)
	if _, err := store.Put(ctx, csvKey, &csvBuf, blobcore.PutOptions{ContentType: "text/csv"}); err != nil {
		return nil, fmt.Errorf("archiving %s: %w", csvKey, err)
	}
	return []string{jsonKey, csvKey}, nil
}
