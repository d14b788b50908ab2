package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ValenceBins is the number of equal-width valence bins over [0,1].
const ValenceBins = 10

// ValenceBin returns the right-closed bin of v; the first bin also holds 0.
// Values outside [0,1] and NaN have no bin.
func ValenceBin(v float64) (int, bool) {
	if math.IsNaN(v) || v < 0 || v > binEdge(ValenceBins) {
		return 0, false
	}
	for b := 0; b < ValenceBins; b++ {
		if v <= binEdge(b+1) {
			return b, true
		}
	}
	return 0, false
}

func binEdge(i int) float64 { return float64(i) * (1.0 / ValenceBins) }

// ValenceBinLabel renders a bin as "0.3-0.4".
func ValenceBinLabel(b int) string {
	lo := binEdge(b)
	return fmt.Sprintf("%.1f-%.1f", lo, lo+0.1)
}

// ValenceGroups labels each valence value with its bin; unbinned values are "".
func ValenceGroups(valence []float64) []string {
	out := make([]string, len(valence))
	for i, v := range valence {
		if b, ok := ValenceBin(v); ok {
			out[i] = ValenceBinLabel(b)
		}
	}
	return out
}

// TrendPoint is the mean of a metric over the rows of one valence bin.
type TrendPoint struct {
	Bin   int
	Label string
	// Rows counts rows in the bin; Count counts the non-NaN values averaged.
	Rows  int
	Count int
	Mean  float64
}

// ValenceTrend averages values per valence bin, skipping NaN values. Only
// bins that contain at least one row are returned, in bin order. A bin whose
// values are all NaN has a NaN mean.
func ValenceTrend(valence, values []float64) []TrendPoint {
	rows := make([]int, ValenceBins)
	groups := make([][]float64, ValenceBins)
	for i, v := range valence {
		b, ok := ValenceBin(v)
		if !ok {
			continue
		}
		rows[b]++
		if i < len(values) && !math.IsNaN(values[i]) {
			groups[b] = append(groups[b], values[i])
		}
	}
	var out []TrendPoint
	for b := 0; b < ValenceBins; b++ {
		if rows[b] == 0 {
			continue
		}
		p := TrendPoint{Bin: b, Label: ValenceBinLabel(b), Rows: rows[b], Count: len(groups[b]), Mean: math.NaN()}
		if len(groups[b]) > 0 {
			p.Mean = stat.Mean(groups[b], nil)
		}
		out = append(out, p)
	}
	return out
}
