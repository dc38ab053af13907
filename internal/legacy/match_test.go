package legacy

import (
	"errors"
	"testing"
	"time"

	"nemastocks/pkg/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMatchAnnotationsWithinTolerance(t *testing.T) {
	freezes := []time.Time{day(2017, 10, 12)}
	comments := []datedComment{{Date: day(2017, 10, 15), Initials: "AC", Text: "froze well"}}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	c, ok := got["2017-10-12"]
	if !ok || c.Initials != "AC" {
		t.Fatalf("matched=%v", got)
	}
}

func TestMatchAnnotationsToleranceBoundary(t *testing.T) {
	freezes := []time.Time{day(2017, 10, 12)}
	opts := DefaultMatchOptions()

	// Exactly tolerance days away still matches.
	got, err := matchAnnotations(100, freezes,
		[]datedComment{{Date: day(2017, 10, 22)}}, opts)
	if err != nil || len(got) != 1 {
		t.Fatalf("at boundary: got=%v err=%v", got, err)
	}

	// One day past tolerance does not.
	got, err = matchAnnotations(100, freezes,
		[]datedComment{{Date: day(2017, 10, 23)}}, opts)
	if err != nil || len(got) != 0 {
		t.Fatalf("past boundary: got=%v err=%v", got, err)
	}
}

func TestMatchAnnotationsBeyondToleranceUnmatched(t *testing.T) {
	freezes := []time.Time{day(2017, 10, 12)}
	comments := []datedComment{{Date: day(2017, 10, 27)}}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestMatchAnnotationsTooFarIsError(t *testing.T) {
	freezes := []time.Time{day(2017, 10, 12)}
	comments := []datedComment{{Date: day(2017, 12, 1)}}
	_, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	var serr *StrainError
	if !errors.As(err, &serr) || serr.Reason != domain.ReasonCommentGapExceeded {
		t.Fatalf("expected gap error, got %v", err)
	}
}

func TestMatchAnnotationsPrefersLaterFreezeOverEarlierComment(t *testing.T) {
	// The comment sits one day before the Jan 13 freeze but two days after
	// the Jan 10 one. Tests happen after freezing, so Jan 10 wins.
	freezes := []time.Time{day(2020, 1, 10), day(2020, 1, 13)}
	comments := []datedComment{{Date: day(2020, 1, 12), Initials: "AC"}}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if _, ok := got["2020-01-10"]; !ok {
		t.Fatalf("expected match against earlier freeze, got %v", got)
	}
}

func TestMatchAnnotationsKeepsClosestWhenRunnerUpTooFar(t *testing.T) {
	// The non-negative runner-up is 8 days out, more than wiggle past the
	// closest candidate, so the closest (pre-freeze) match stands.
	freezes := []time.Time{day(2020, 1, 10), day(2020, 1, 20)}
	comments := []datedComment{{Date: day(2020, 1, 18), Initials: "AC"}}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if _, ok := got["2020-01-20"]; !ok {
		t.Fatalf("expected match against closest freeze, got %v", got)
	}
}

func TestMatchAnnotationsGreedyOrder(t *testing.T) {
	// Two comments near one freeze: the earlier comment claims it, the later
	// one falls to the remaining freeze.
	freezes := []time.Time{day(2020, 1, 10), day(2020, 1, 11)}
	comments := []datedComment{
		{Date: day(2020, 1, 12), Text: "second"},
		{Date: day(2020, 1, 11), Text: "first"},
	}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got["2020-01-11"].Text != "first" || got["2020-01-10"].Text != "second" {
		t.Fatalf("matched=%v", got)
	}
}

func TestMatchAnnotationsExhaustedPool(t *testing.T) {
	freezes := []time.Time{day(2020, 1, 10)}
	comments := []datedComment{
		{Date: day(2020, 1, 11), Text: "first"},
		{Date: day(2020, 1, 12), Text: "second"},
	}
	got, err := matchAnnotations(100, freezes, comments, DefaultMatchOptions())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(got) != 1 || got["2020-01-10"].Text != "first" {
		t.Fatalf("matched=%v", got)
	}
}
