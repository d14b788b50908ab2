package analysis

import "math"

// Mood is a coarse emotional label derived from Valence.
type Mood string

const (
	MoodSad     Mood = "Sad / Negative"
	MoodNeutral Mood = "Neutral / Moderate"
	MoodHappy   Mood = "Happy / Positive"
)

// Valence cut points between moods.
const (
	SadBelow     = 0.33
	NeutralBelow = 0.66
)

// Moods lists every mood in reporting order.
var Moods = []Mood{MoodSad, MoodNeutral, MoodHappy}

// MoodOf categorizes a valence value. It reports false for NaN.
func MoodOf(valence float64) (Mood, bool) {
	switch {
	case math.IsNaN(valence):
		return "", false
	case valence < SadBelow:
		return MoodSad, true
	case valence < NeutralBelow:
		return MoodNeutral, true
	default:
		return MoodHappy, true
	}
}

// MoodColumn maps a valence column to mood labels; undefined moods are "".
func MoodColumn(valence []float64) []string {
	out := make([]string, len(valence))
	for i, v := range valence {
		if m, ok := MoodOf(v); ok {
			out[i] = string(m)
		}
	}
	return out
}
