package domain

import (
	"context"
	"errors"
	"time"
)

// ErrBoxFull reports that EnsureTube would place a tube into a box whose
// slots are all occupied. Implementations wrap it so callers can match
// with errors.Is.
var ErrBoxFull = errors.New("box is full")

// Transaction exposes the operations a persistence implementation must
// support within an atomic scope. All Ensure* operations are create-or-fetch:
// they look the entity up by its natural key before creating, so replaying a
// migration against an already-populated store is a no-op.
type Transaction interface {
	EnsureStrain(Strain) (Strain, bool, error)
	EnsureFreezeGroup(FreezeGroup) (FreezeGroup, bool, error)
	EnsureTube(Tube) (Tube, bool, error)
	EnsureBox(Box) (Box, bool, error)
	MarkTubeThawed(tubeID string, date time.Time, requester string) (Tube, error)

	FindStrain(wja int) (Strain, bool)
	FindFreezeGroup(wja int, dateStored time.Time) (FreezeGroup, bool)
	FindBox(dewar, rack, box int) (Box, bool)
	TubesForFreezeGroup(freezeGroupID string) []Tube
	TubesInBox(wja int, boxID string) []Tube
}

// TransactionView provides read-only access to committed state.
type TransactionView interface {
	ListStrains() []Strain
	ListFreezeGroups() []FreezeGroup
	ListTubes() []Tube
	ListBoxes() []Box
	FindStrain(wja int) (Strain, bool)
}

// RecordStore is the abstraction over durable backends. A transaction that
// returns an error must leave committed state untouched.
type RecordStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	ListStrains() []Strain
	ListFreezeGroups() []FreezeGroup
	ListTubes() []Tube
	ListBoxes() []Box
}
