// Package legacy converts denormalized strain records from the historical
// spreadsheet export into discrete freeze, tube and thaw entities. All of the
// parsing and reconciliation here is pure; persistence happens elsewhere.
package legacy

import (
	"fmt"

	"nemastocks/pkg/domain"
)

// StrainError aborts processing of a single strain. It carries the reason
// code surfaced in the batch report; it never aborts the whole batch.
type StrainError struct {
	WJA    string
	Reason domain.ReasonCode
	Msg    string
	Err    error
}

func (e *StrainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.WJA, e.Reason, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.WJA, e.Reason, e.Msg)
}

func (e *StrainError) Unwrap() error { return e.Err }

func strainErrf(wja string, reason domain.ReasonCode, format string, args ...any) *StrainError {
	return &StrainError{WJA: wja, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}
