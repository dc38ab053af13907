package legacy

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		token string
		want  time.Time
		ok    bool
	}{
		{"11/22/2017", time.Date(2017, 11, 22, 0, 0, 0, 0, time.UTC), true},
		{"9/1/22", time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{" 10/12/17 ", time.Date(2017, 10, 12, 0, 0, 0, 0, time.UTC), true},
		{"11/2017", time.Time{}, false},
		{"1/2/3/4", time.Time{}, false},
		{"2/30/2019", time.Time{}, false},
		{"13/01/2019", time.Time{}, false},
		{"0/5/2019", time.Time{}, false},
		{"aa/bb/cc", time.Time{}, false},
		{"", time.Time{}, false},
		{"green", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.token)
		if ok != tc.ok {
			t.Fatalf("ParseDate(%q) ok=%v want %v", tc.token, ok, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q)=%v want %v", tc.token, got, tc.want)
		}
	}
}
