package analysis

import "math"

// MinMax scales values to [0,1]. NaN entries are skipped when finding the
// range and stay NaN in the output. A series with no range (all NaN, or
// constant) maps to zeros of the same length.
func MinMax(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	seen := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		seen = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(values))
	if !seen || lo == hi {
		return out
	}
	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Log1p applies log(1+x) elementwise, preserving NaN.
func Log1p(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log1p(v)
	}
	return out
}
