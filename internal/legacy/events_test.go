package legacy

import (
	"errors"
	"testing"

	"nemastocks/pkg/domain"
)

func TestGroupFreezeEvents(t *testing.T) {
	l := TokenLists{
		DateFrozen: []string{"10/12/17", "10/12/17", "12/01/18"},
		TubeNo:     []string{"5", "5", "4"},
		TankNo:     []string{"JA1", "JA2", "JA1"},
		RackNo:     []string{"1", "2", "3"},
		RackBoxNo:  []string{"1-2", "2-3", "3-4"},
		CapColors:  []string{"blue", "blue", "red"},
	}
	builders, err := groupFreezeEvents(100, l, nil)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(builders) != 2 {
		t.Fatalf("builders=%d", len(builders))
	}
	if len(builders[0].Rows) != 2 || len(builders[1].Rows) != 1 {
		t.Fatalf("rows=%d,%d", len(builders[0].Rows), len(builders[1].Rows))
	}
	if builders[0].Rows[1].Tank != "JA2" || builders[0].Rows[1].Count != 5 {
		t.Fatalf("row=%+v", builders[0].Rows[1])
	}
	if builders[1].Rows[0].CapColor != "red" {
		t.Fatalf("row=%+v", builders[1].Rows[0])
	}
}

func TestGroupFreezeEventsSkipsUnparseableDates(t *testing.T) {
	l := TokenLists{
		DateFrozen: []string{"garbage", "12/01/18"},
		TubeNo:     []string{"5", "4"},
		TankNo:     []string{"JA1", "JA1"},
		RackNo:     []string{"1", "3"},
		RackBoxNo:  []string{"1-2", "3-4"},
		CapColors:  []string{"blue", "red"},
	}
	builders, err := groupFreezeEvents(100, l, nil)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(builders) != 1 || builders[0].Rows[0].Count != 4 {
		t.Fatalf("builders=%+v", builders)
	}
}

func TestGroupFreezeEventsLengthMismatch(t *testing.T) {
	l := TokenLists{
		DateFrozen: []string{"12/01/18"},
		TubeNo:     []string{"5", "4"},
		TankNo:     []string{"JA1"},
		RackNo:     []string{"1"},
		RackBoxNo:  []string{"1-2"},
		CapColors:  []string{"blue"},
	}
	_, err := groupFreezeEvents(100, l, nil)
	var serr *StrainError
	if !errors.As(err, &serr) || serr.Reason != domain.ReasonLengthMismatch {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestGroupFreezeEventsBadTubeCount(t *testing.T) {
	l := TokenLists{
		DateFrozen: []string{"12/01/18"},
		TubeNo:     []string{"five"},
		TankNo:     []string{"JA1"},
		RackNo:     []string{"1"},
		RackBoxNo:  []string{"1-2"},
		CapColors:  []string{"blue"},
	}
	_, err := groupFreezeEvents(100, l, nil)
	var serr *StrainError
	if !errors.As(err, &serr) || serr.Reason != domain.ReasonBadRecord {
		t.Fatalf("expected bad record, got %v", err)
	}
}
