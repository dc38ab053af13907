package migrate

import (
	"context"
	"testing"

	"nemastocks/internal/legacy"
	"nemastocks/pkg/domain"
)

func TestThawsExceedingTubesFail(t *testing.T) {
	store := newSeededStore(t)
	runner := NewRunner(store, nil, nil)

	rec := legacy.Record{
		WJANumber:       "WJA 0100",
		DateFrozen:      "10/12/17",
		TubeNo:          "1",
		TankNo:          "JA1",
		RackNo:          "1",
		RackBoxNo:       "1-2",
		DateThawed:      "5/17/19 AC|6/1/19 AC",
		NoOfTubesThawed: "1(JA1 1-2)|1(JA1 1-2)",
		CapColor:        "blue",
	}
	report, err := runner.Run(context.Background(), []legacy.Record{rec})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	o := report.Outcomes[0]
	if o.Status != StatusFailed || o.Reason != domain.ReasonBadRecord {
		t.Fatalf("outcome=%+v", o)
	}
	if got := len(store.ListTubes()); got != 0 {
		t.Fatalf("tubes=%d, expected rollback", got)
	}
}

func TestThawsOnlyTouchOwnStrain(t *testing.T) {
	store := newSeededStore(t)
	runner := NewRunner(store, nil, nil)

	// Two strains share a box; the thaw must land on the thawing strain's
	// own tube, never its neighbor's.
	neighbor := legacy.Record{
		WJANumber:  "WJA 0060",
		DateFrozen: "10/01/17",
		TubeNo:     "2",
		TankNo:     "JA1",
		RackNo:     "1",
		RackBoxNo:  "1-2",
		CapColor:   "red",
	}
	thawing := legacy.Record{
		WJANumber:       "WJA 0061",
		DateFrozen:      "10/12/17",
		TubeNo:          "1",
		TankNo:          "JA1",
		RackNo:          "1",
		RackBoxNo:       "1-2",
		DateThawed:      "5/17/19 AC",
		NoOfTubesThawed: "1(JA1 1-2)",
		CapColor:        "blue",
	}
	report, err := runner.Run(context.Background(), []legacy.Record{neighbor, thawing})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, o := range report.Outcomes {
		if o.Status != StatusSuccess {
			t.Fatalf("outcome=%+v", o)
		}
	}
	for _, tube := range store.ListTubes() {
		switch tube.StrainWJA {
		case 60:
			if tube.Thawed {
				t.Fatalf("neighbor tube thawed: %+v", tube)
			}
		case 61:
			if !tube.Thawed {
				t.Fatalf("own tube not thawed: %+v", tube)
			}
		}
	}
}
