package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewRows is returned when a population cannot support the request.
var ErrTooFewRows = errors.New("too few rows")

// KMeans configures Lloyd's algorithm with greedy k-means++ seeding.
type KMeans struct {
	K int
	// Inits is the number of independent seedings; the lowest inertia wins.
	Inits   int
	MaxIter int
	// Tol is relative to the mean feature variance, on total centroid shift.
	Tol  float64
	Seed uint64
}

// Fit is one fitted partition.
type Fit struct {
	Labels    []int
	Centroids [][]float64
	// Inertia is the sum of squared distances to the assigned centroid.
	Inertia    float64
	Iterations int
}

// Fit partitions the rows of x. Identical input and seed give identical output.
func (km KMeans) Fit(x mat.Matrix) (*Fit, error) {
	n, d := x.Dims()
	if km.K < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", km.K)
	}
	if n < km.K {
		return nil, fmt.Errorf("%w: %d rows for %d clusters", ErrTooFewRows, n, km.K)
	}
	inits := max(km.Inits, 1)
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	tol := km.Tol
	if tol == 0 {
		tol = 1e-4
	}
	pts := rows(x)
	tol *= meanVariance(x, d)

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))
	var best *Fit
	for run := 0; run < inits; run++ {
		centers := seedPlusPlus(pts, km.K, rng)
		f := lloyd(pts, centers, maxIter, tol)
		if best == nil || f.Inertia < best.Inertia {
			best = f
		}
	}
	return best, nil
}

func rows(x mat.Matrix) [][]float64 {
	n, _ := x.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}

func meanVariance(x mat.Matrix, d int) float64 {
	if d == 0 {
		return 0
	}
	var sum float64
	for j := 0; j < d; j++ {
		_, sd := stat.PopMeanStdDev(mat.Col(nil, j, x), nil)
		sum += sd * sd
	}
	return sum / float64(d)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		diff := a[i] - b[i]
		s += diff * diff
	}
	return s
}

// seedPlusPlus picks k initial centers, trying 2+ln(k) candidates per step
// and keeping the one that most reduces the potential.
func seedPlusPlus(pts [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(pts)
	trials := 2 + int(math.Log(float64(k)))
	centers := make([][]float64, 0, k)
	first := pts[rng.IntN(n)]
	centers = append(centers, append([]float64(nil), first...))

	closest := make([]float64, n)
	for i, p := range pts {
		closest[i] = sqDist(p, first)
	}
	pot := floats.Sum(closest)
	cum := make([]float64, n)
	cand := make([]float64, n)
	bestDist := make([]float64, n)

	for c := 1; c < k; c++ {
		floats.CumSum(cum, closest)
		bestIdx, bestPot := -1, math.Inf(1)
		for t := 0; t < trials; t++ {
			idx := searchCum(cum, rng.Float64()*pot)
			for i, p := range pts {
				cand[i] = math.Min(closest[i], sqDist(p, pts[idx]))
			}
			if cp := floats.Sum(cand); cp < bestPot {
				bestPot, bestIdx = cp, idx
				copy(bestDist, cand)
			}
		}
		centers = append(centers, append([]float64(nil), pts[bestIdx]...))
		copy(closest, bestDist)
		pot = bestPot
	}
	return centers
}

// searchCum returns the first index whose cumulative weight reaches v.
func searchCum(cum []float64, v float64) int {
	lo, hi := 0, len(cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cum[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func lloyd(pts [][]float64, centers [][]float64, maxIter int, tol float64) *Fit {
	k, d := len(centers), len(pts[0])
	labels := make([]int, len(pts))
	dists := make([]float64, len(pts))
	iter := 0
	for iter < maxIter {
		iter++
		changed := assign(pts, centers, labels, dists)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, d)
		}
		for i, p := range pts {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		relocateEmpty(pts, next, counts, dists)
		var shift float64
		for c := range next {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), next[c])
			}
			shift += sqDist(next[c], centers[c])
		}
		centers = next
		if !changed && iter > 1 || shift <= tol {
			break
		}
	}
	assign(pts, centers, labels, dists)
	return &Fit{Labels: labels, Centroids: centers, Inertia: floats.Sum(dists), Iterations: iter}
}

// assign labels every point with its nearest center, ties to the lowest
// index, and reports whether any label changed.
func assign(pts, centers [][]float64, labels []int, dists []float64) bool {
	changed := false
	for i, p := range pts {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			if dd := sqDist(p, ctr); dd < bestD {
				best, bestD = c, dd
			}
		}
		if labels[i] != best {
			changed = true
		}
		labels[i] = best
		dists[i] = bestD
	}
	return changed
}

// relocateEmpty moves each empty cluster onto the point farthest from its
// current center. sums holds unnormalized centroid sums.
func relocateEmpty(pts [][]float64, sums [][]float64, counts []int, dists []float64) {
	used := map[int]bool{}
	for c := range sums {
		if counts[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, dd := range dists {
			if !used[i] && dd > farD {
				far, farD = i, dd
			}
		}
		if far < 0 {
			continue
		}
		used[far] = true
		copy(sums[c], pts[far])
		counts[c] = 1
	}
}
