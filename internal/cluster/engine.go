// Package cluster groups tracks by their audio features: z-score
// standardization, an inertia sweep over k, seeded k-means, a 2-D PCA
// projection and per-cluster profiles.
package cluster

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Features are the audio features every clustering runs on.
var Features = []string{
	"Danceability", "Energy", "Speechiness", "Acousticness",
	"Instrumentalness", "Liveness", "Valence", "Tempo",
}

// Options configures one clustering run.
type Options struct {
	Features []string
	K        int
	// KMin..KMax is the inertia sweep; KMax < KMin skips it.
	KMin, KMax int
	Inits      int
	MaxIter    int
	Seed       uint64
	// Components is the PCA output dimension.
	Components int
}

// DefaultOverviewOptions uses a single k-means++ seeding per fit.
func DefaultOverviewOptions() Options {
	return Options{Features: Features, K: 4, KMin: 2, KMax: 8, Inits: 1, MaxIter: 300, Seed: 42, Components: 2}
}

// DefaultPlatformOptions keeps the best of ten seedings per fit.
func DefaultPlatformOptions() Options {
	o := DefaultOverviewOptions()
	o.Inits = 10
	return o
}

// ElbowPoint is the inertia of a k-means fit for one k.
type ElbowPoint struct {
	K       int
	Inertia float64
}

// Profile summarizes one cluster.
type Profile struct {
	Cluster int
	Size    int
	// FeatureMeans follows Result.Features.
	FeatureMeans []float64
	// LogPopularity is log1p of the mean of each Result.Metrics column.
	LogPopularity []float64
}

// Result is a fitted clustering over a subset of table rows.
type Result struct {
	Name     string
	Features []string
	Metrics  []string
	// Rows are the source table rows in clustering order.
	Rows []int
	// Values are the feature values that were standardized (after any
	// median filling); Scaled is the standardized matrix.
	Values *mat.Dense
	Scaled *mat.Dense
	Scaler *Scaler

	// Unobserved lists features with no value in any clustered row. They are
	// filled with 0 and standardize to a constant zero column.
	Unobserved []string

	Labels   []int
	Inertia  float64
	Elbow    []ElbowPoint
	PCA      *Projection
	Profiles []Profile
}

// Overview clusters rows that have every feature plus Artist, Track, Stream
// and Views observed. Incomplete rows are dropped.
func Overview(t *dataset.Table, opt Options) (*Result, error) {
	metrics := []string{"Stream", "Views"}
	required := append(append([]string{}, opt.Features...), "Artist", "Track")
	required = append(required, metrics...)
	if err := t.Require(required...); err != nil {
		return nil, fmt.Errorf("overview clustering: %w", err)
	}
	coerce(t, opt.Features...)
	coerce(t, metrics...)

	var keep []int
	for i := 0; i < t.Len(); i++ {
		complete := true
		for _, c := range required {
			if t.IsMissing(c, i) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("overview clustering: %w: no complete rows", ErrTooFewRows)
	}
	values := mat.NewDense(len(keep), len(opt.Features), nil)
	for j, f := range opt.Features {
		col := t.Floats(f)
		for i, r := range keep {
			values.Set(i, j, col[r])
		}
	}
	return fit(t, "overview", keep, values, metrics, opt)
}

// Platform clusters every row whose metric is observed. Missing feature
// values are replaced by the column median over those rows.
func Platform(t *dataset.Table, name, metric string, opt Options) (*Result, error) {
	if err := t.Require(append(append([]string{}, opt.Features...), metric)...); err != nil {
		return nil, fmt.Errorf("%s clustering: %w", name, err)
	}
	coerce(t, opt.Features...)

	m := t.Floats(metric)
	var keep []int
	for i, v := range m {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%s clustering: %w: no rows with %s", name, ErrTooFewRows, metric)
	}
	values := mat.NewDense(len(keep), len(opt.Features), nil)
	var unobserved []string
	for j, f := range opt.Features {
		col := t.Floats(f)
		observed := make(stats.Float64Data, 0, len(keep))
		for _, r := range keep {
			if !math.IsNaN(col[r]) {
				observed = append(observed, col[r])
			}
		}
		fillValue, err := observed.Median()
		if err != nil {
			fillValue = 0
			unobserved = append(unobserved, f)
		}
		for i, r := range keep {
			v := col[r]
			if math.IsNaN(v) {
				v = fillValue
			}
			values.Set(i, j, v)
		}
	}
	res, err := fit(t, name, keep, values, []string{metric}, opt)
	if err != nil {
		return nil, err
	}
	res.Unobserved = unobserved
	return res, nil
}

// coerce makes cols numeric with the table's own parse options.
func coerce(t *dataset.Table, cols ...string) {
	for _, c := range cols {
		t.Floats(c)
	}
}

func fit(t *dataset.Table, name string, keep []int, values *mat.Dense, metrics []string, opt Options) (*Result, error) {
	k := opt.K
	if len(keep) < k {
		return nil, fmt.Errorf("%s clustering: %w: %d rows for k=%d", name, ErrTooFewRows, len(keep), k)
	}
	scaled, scaler := Standardize(values)
	res := &Result{
		Name:     name,
		Features: opt.Features,
		Metrics:  metrics,
		Rows:     keep,
		Values:   values,
		Scaled:   scaled,
		Scaler:   scaler,
	}
	base := KMeans{Inits: opt.Inits, MaxIter: opt.MaxIter, Seed: opt.Seed}
	for kk := opt.KMin; kk <= opt.KMax && kk <= len(keep); kk++ {
		km := base
		km.K = kk
		f, err := km.Fit(scaled)
		if err != nil {
			return nil, fmt.Errorf("%s clustering: elbow k=%d: %w", name, kk, err)
		}
		res.Elbow = append(res.Elbow, ElbowPoint{K: kk, Inertia: f.Inertia})
	}

	final := base
	final.K = k
	f, err := final.Fit(scaled)
	if err != nil {
		return nil, fmt.Errorf("%s clustering: %w", name, err)
	}
	res.Labels, res.Inertia = f.Labels, f.Inertia

	comps := opt.Components
	if comps <= 0 {
		comps = 2
	}
	res.PCA, err = PCA(scaled, comps)
	if err != nil {
		return nil, fmt.Errorf("%s clustering: %w", name, err)
	}
	res.Profiles = profiles(t, res, k)
	return res, nil
}

func profiles(t *dataset.Table, res *Result, k int) []Profile {
	members := make([][]int, k)
	for i, l := range res.Labels {
		members[l] = append(members[l], i)
	}
	out := make([]Profile, k)
	for c := 0; c < k; c++ {
		p := Profile{Cluster: c, Size: len(members[c])}
		for j := range res.Features {
			p.FeatureMeans = append(p.FeatureMeans, meanOf(members[c], func(i int) float64 { return res.Values.At(i, j) }))
		}
		for _, m := range res.Metrics {
			col := t.Floats(m)
			mean := meanOf(members[c], func(i int) float64 { return col[res.Rows[i]] })
			p.LogPopularity = append(p.LogPopularity, math.Log1p(mean))
		}
		out[c] = p
	}
	return out
}

// meanOf averages the non-NaN values at idx; an empty set is NaN.
func meanOf(idx []int, at func(int) float64) float64 {
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		if v := at(i); !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Attach writes cluster ids and PCA coordinates back onto t as
// cluster<suffix>, pca1<suffix> and pca2<suffix>. Rows outside the
// clustered population get NaN.
func (r *Result) Attach(t *dataset.Table, suffix string) error {
	n := t.Len()
	cols := []string{"cluster" + suffix}
	data := [][]float64{nanSlice(n)}
	_, comps := r.PCA.Coords.Dims()
	for c := 0; c < comps; c++ {
		cols = append(cols, fmt.Sprintf("pca%d%s", c+1, suffix))
		data = append(data, nanSlice(n))
	}
	for i, row := range r.Rows {
		data[0][row] = float64(r.Labels[i])
		for c := 0; c < comps; c++ {
			data[c+1][row] = r.PCA.Coords.At(i, c)
		}
	}
	for i, c := range cols {
		if err := t.SetFloats(c, data[i]); err != nil {
			return err
		}
	}
	return nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
