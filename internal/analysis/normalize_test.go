package analysis

import (
	"math"
	"testing"
)

func TestMinMaxConstantAndEmpty(t *testing.T) {
	cases := [][]float64{
		{5, 5, 5},
		{math.NaN(), 3, math.NaN(), 3},
		{math.NaN(), math.NaN()},
		{},
	}
	for _, in := range cases {
		out := MinMax(in)
		if len(out) != len(in) {
			t.Fatalf("MinMax(%v) len = %d", in, len(out))
		}
		for i, v := range out {
			if v != 0 {
				t.Fatalf("MinMax(%v)[%d] = %v, want 0", in, i, v)
			}
		}
	}
}

func TestMinMaxRangeAndOrder(t *testing.T) {
	in := []float64{30, math.NaN(), 10, 20, 50}
	out := MinMax(in)
	want := []float64{0.5, math.NaN(), 0, 0.25, 1}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(out[i]) {
				t.Fatalf("out[%d] = %v, want NaN", i, out[i])
			}
			continue
		}
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	reversed := []float64{50, 20, 10, math.NaN(), 30}
	rout := MinMax(reversed)
	for i := range reversed {
		j := len(reversed) - 1 - i
		if !(rout[i] == out[j] || (math.IsNaN(rout[i]) && math.IsNaN(out[j]))) {
			t.Fatalf("order dependence at %d: %v vs %v", i, rout[i], out[j])
		}
	}
}

func TestLog1pKeepsNaN(t *testing.T) {
	out := Log1p([]float64{0, math.E - 1, math.NaN()})
	if out[0] != 0 || math.Abs(out[1]-1) > 1e-12 || !math.IsNaN(out[2]) {
		t.Fatalf("Log1p = %v", out)
	}
}
