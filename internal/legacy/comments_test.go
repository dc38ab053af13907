package legacy

import (
	"testing"
	"time"
)

func TestClassifyComments(t *testing.T) {
	dated, undated := classifyComments([]string{
		"10/15/17 AC froze well, all 10 tubes",
		"picky grower",
		"5/26/18 MNP2 thawed fine",
		"1/2/19 no initials here",
	})
	if len(dated) != 3 || len(undated) != 1 {
		t.Fatalf("dated=%d undated=%d", len(dated), len(undated))
	}
	if undated[0] != "picky grower" {
		t.Fatalf("undated=%v", undated)
	}
	first := dated[0]
	if first.Initials != "AC" || first.Text != "froze well, all 10 tubes" {
		t.Fatalf("first=%+v", first)
	}
	if !first.Date.Equal(time.Date(2017, 10, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first date=%v", first.Date)
	}
	if dated[1].Initials != "MNP2" {
		t.Fatalf("numbered initials=%q", dated[1].Initials)
	}
	// "no" is lowercase, so the whole remainder stays text.
	if dated[2].Initials != UnknownInitials || dated[2].Text != "no initials here" {
		t.Fatalf("third=%+v", dated[2])
	}
}

func TestStrainComments(t *testing.T) {
	if got := StrainComments([]string{"a", "b"}); got != "a | b" {
		t.Fatalf("StrainComments=%q", got)
	}
	if got := StrainComments(nil); got != "" {
		t.Fatalf("StrainComments=%q", got)
	}
}
