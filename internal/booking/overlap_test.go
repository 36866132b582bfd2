package booking

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(0), at(4), at(0), at(4), true},
		{"contained", at(0), at(4), at(1), at(2), true},
		{"partial front", at(0), at(4), at(3), at(6), true},
		{"partial back", at(3), at(6), at(0), at(4), true},
		{"disjoint", at(0), at(2), at(4), at(6), false},
		// 首尾相接不算冲突：前一单 10:00 结束，后一单 10:00 开始
		{"touching end/start", at(0), at(2), at(2), at(4), false},
		{"touching start/end", at(2), at(4), at(0), at(2), false},
	}
	for _, c := range cases {
		if got := Overlaps(c.s1, c.e1, c.s2, c.e2); got != c.want {
			t.Fatalf("%s: Overlaps = %v, want %v", c.name, got, c.want)
		}
	}
}
