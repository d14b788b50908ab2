package cluster

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler holds per-feature z-score parameters fitted on one population.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes population mean and standard deviation for each column.
// A column with zero deviation gets scale 1 so it standardizes to zeros.
func FitScaler(x mat.Matrix) *Scaler {
	_, c := x.Dims()
	s := &Scaler{Mean: make([]float64, c), Scale: make([]float64, c)}
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		m, sd := stat.PopMeanStdDev(col, nil)
		if sd == 0 {
			sd = 1
		}
		s.Mean[j], s.Scale[j] = m, sd
	}
	return s
}

// Transform returns (x - mean) / scale as a new matrix.
func (s *Scaler) Transform(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out
}

// Standardize fits a scaler on x and applies it.
func Standardize(x mat.Matrix) (*mat.Dense, *Scaler) {
	s := FitScaler(x)
	return s.Transform(x), s
}
