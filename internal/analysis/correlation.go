package analysis

import (
	"math"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrTable holds Pearson coefficients for every (row, column) pair.
type CorrTable struct {
	Rows   []string
	Cols   []string
	Values [][]float64 // Values[i][j] pairs Rows[i] with Cols[j]
}

// At returns the coefficient for a named pair, or NaN if either is unknown.
func (c *CorrTable) At(row, col string) float64 {
	for i, r := range c.Rows {
		if r != row {
			continue
		}
		for j, cc := range c.Cols {
			if cc == col {
				return c.Values[i][j]
			}
		}
	}
	return math.NaN()
}

// Correlate computes Pearson r between each row column and each column
// column of t over pairwise-complete observations.
func Correlate(t *dataset.Table, rows, cols []string) (*CorrTable, error) {
	if err := t.Require(rows...); err != nil {
		return nil, err
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := &CorrTable{Rows: rows, Cols: cols, Values: make([][]float64, len(rows))}
	for i, r := range rows {
		x := t.Floats(r)
		out.Values[i] = make([]float64, len(cols))
		for j, c := range cols {
			out.Values[i][j] = Pearson(x, t.Floats(c))
		}
	}
	return out, nil
}

// Pearson returns the correlation of x and y over indices where both are
// non-NaN. Fewer than two pairs or a constant side yields NaN.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
