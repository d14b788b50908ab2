package analysis

import (
	"math"
	"testing"
)

func TestMoodOfBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want Mood
		ok   bool
	}{
		{0, MoodSad, true},
		{0.329999, MoodSad, true},
		{0.33, MoodNeutral, true},
		{0.659999, MoodNeutral, true},
		{0.66, MoodHappy, true},
		{1, MoodHappy, true},
		{math.NaN(), "", false},
	}
	for _, tc := range cases {
		got, ok := MoodOf(tc.v)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MoodOf(%v) = %q, %v; want %q, %v", tc.v, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMoodColumn(t *testing.T) {
	got := MoodColumn([]float64{0.1, math.NaN(), 0.9})
	if got[0] != string(MoodSad) || got[1] != "" || got[2] != string(MoodHappy) {
		t.Fatalf("MoodColumn = %#v", got)
	}
}
