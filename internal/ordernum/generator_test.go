package ordernum

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextStartsAtOneEachDay(t *testing.T) {
	day1 := time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)
	clock := day1
	g := New(func() time.Time { return clock })

	if got := g.Next(); got != "O202406150001" {
		t.Errorf("first id = %q, want O202406150001", got)
	}
	if got := g.Next(); got != "O202406150002" {
		t.Errorf("second id = %q, want O202406150002", got)
	}

	clock = day1.AddDate(0, 0, 1)
	if got := g.Next(); got != "O202406160001" {
		t.Errorf("next day id = %q, counter should reset", got)
	}
}

func TestSeedContinuesSequence(t *testing.T) {
	g := New(fixedClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)))
	g.Seed("O202406150042")

	if got := g.Next(); got != "O202406150043" {
		t.Errorf("id after seed = %q, want O202406150043", got)
	}
}

func TestSeedFromOlderDateResets(t *testing.T) {
	g := New(fixedClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)))
	g.Seed("O202406140042")

	if got := g.Next(); got != "O202406150001" {
		t.Errorf("id = %q, a new day starts at 0001", got)
	}
}

func TestSeedIgnoresMalformedIDs(t *testing.T) {
	g := New(fixedClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)))

	for _, bad := range []string{"", "garbage", "O2024061500", "X202406150001", "O20240615001"} {
		g.Seed(bad)
	}
	if got := g.Next(); got != "O202406150001" {
		t.Errorf("id = %q, malformed seeds must leave the zero state", got)
	}
}

func TestSeedTrimsWhitespace(t *testing.T) {
	g := New(fixedClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)))
	g.Seed("  O202406150007 ")

	if got := g.Next(); got != "O202406150008" {
		t.Errorf("id = %q, want O202406150008", got)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int // sign only
	}{
		{"O202406150002", "O202406150001", 1},
		{"O202406150001", "O202406150001", 0},
		{"O202406140099", "O202406150001", -1},
		{"garbage", "O202406150001", 0},
	}
	for _, tc := range cases {
		got := Compare(tc.a, tc.b)
		switch {
		case tc.want > 0 && got <= 0,
			tc.want < 0 && got >= 0,
			tc.want == 0 && got != 0:
			t.Errorf("Compare(%q, %q) = %d, want sign %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("O202406150007") {
		t.Error("well-formed id should be valid")
	}
	if Valid("O2024-06-15-0007") || Valid("") {
		t.Error("malformed ids should be invalid")
	}
}
