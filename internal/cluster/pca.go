package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is a fitted principal component projection.
type Projection struct {
	// Coords has one row per input row and one column per component.
	Coords *mat.Dense
	// ExplainedVarianceRatio is each component's share of total variance.
	ExplainedVarianceRatio []float64
	// Loadings[c][j] is the weight of feature j in component c. The largest
	// magnitude weight of each component is positive.
	Loadings [][]float64
}

// PCA projects the rows of x onto its first n principal components.
func PCA(x mat.Matrix, n int) (*Projection, error) {
	r, c := x.Dims()
	if r < 2 {
		return nil, fmt.Errorf("%w: pca needs at least 2 rows, got %d", ErrTooFewRows, r)
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition failed")
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, avail := vecs.Dims()
	if n > avail {
		return nil, fmt.Errorf("pca: %d components requested, %d available", n, avail)
	}

	p := &Projection{ExplainedVarianceRatio: make([]float64, n), Loadings: make([][]float64, n)}
	total := floats.Sum(vars)
	for k := 0; k < n; k++ {
		load := mat.Col(nil, k, &vecs)
		if load[floats.MaxIdx(absAll(load))] < 0 {
			floats.Scale(-1, load)
		}
		p.Loadings[k] = load
		if total > 0 {
			p.ExplainedVarianceRatio[k] = vars[k] / total
		}
	}

	centered := mat.DenseCopyOf(x)
	for j := 0; j < c; j++ {
		m := stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < r; i++ {
			centered.Set(i, j, centered.At(i, j)-m)
		}
	}
	basis := mat.NewDense(c, n, nil)
	for k, load := range p.Loadings {
		basis.SetCol(k, load)
	}
	p.Coords = mat.NewDense(r, n, nil)
	p.Coords.Mul(centered, basis)
	return p, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
