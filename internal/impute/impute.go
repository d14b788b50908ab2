// Package impute repairs missing popularity metrics by ratio estimation
// against an observed denominator (YouTube views).
package impute

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// Column names the imputer reads and writes.
const (
	ColArtist = "Artist"
	ColViews  = "Views"
	ColLikes  = "Likes"
	ColStream = "Stream"
)

// Result describes the ratios that were estimated and how many cells they filled.
// Undefined ratios are NaN.
type Result struct {
	LikeViewRatio float64
	LikesFilled   int
	// LikesPending counts rows eligible for filling that stayed missing
	// because the ratio was undefined.
	LikesPending int

	StreamViewRatio float64
	ArtistRatios    map[string]float64
	StreamFilled    int
	StreamPending   int
}

// Impute fills missing Likes and Stream values in place. Rows whose Views
// is missing or not positive are never filled.
func Impute(t *dataset.Table) (*Result, error) {
	if err := t.Require(ColArtist, ColViews, ColLikes, ColStream); err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}
	res := &Result{}
	views := t.Floats(ColViews)

	likes := t.Floats(ColLikes)
	res.LikeViewRatio = meanRatio(likes, views)
	res.LikesFilled, res.LikesPending = fill(likes, views, func(int) float64 { return res.LikeViewRatio })
	roundColumn(likes)

	stream := t.Floats(ColStream)
	artists := make([]string, t.Len())
	for i := range artists {
		if !t.IsMissing(ColArtist, i) {
			artists[i] = t.Value(ColArtist, i)
		}
	}
	res.ArtistRatios, res.StreamViewRatio = medianRatios(stream, views, artists)
	res.StreamFilled, res.StreamPending = fill(stream, views, func(i int) float64 {
		if r, ok := res.ArtistRatios[artists[i]]; ok && artists[i] != "" {
			return r
		}
		return res.StreamViewRatio
	})
	roundColumn(stream)
	return res, nil
}

// ratios returns target/views for rows with target observed and views > 0,
// keeping only finite results, along with the row each ratio came from.
func ratios(target, views []float64) (vals []float64, rows []int) {
	for i := range target {
		if math.IsNaN(target[i]) || !(views[i] > 0) {
			continue
		}
		r := target[i] / views[i]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		vals = append(vals, r)
		rows = append(rows, i)
	}
	return vals, rows
}

func meanRatio(target, views []float64) float64 {
	vals, _ := ratios(target, views)
	m, err := stats.Mean(vals)
	if err != nil {
		return math.NaN()
	}
	return m
}

func medianRatios(target, views []float64, artists []string) (map[string]float64, float64) {
	vals, rows := ratios(target, views)
	grouped := make(map[string]stats.Float64Data)
	for k, r := range rows {
		a := artists[r]
		if a == "" {
			continue
		}
		grouped[a] = append(grouped[a], vals[k])
	}
	perArtist := make(map[string]float64, len(grouped))
	for a, g := range grouped {
		if m, err := g.Median(); err == nil {
			perArtist[a] = m
		}
	}
	global, err := stats.Median(vals)
	if err != nil {
		global = math.NaN()
	}
	return perArtist, global
}

// fill sets target[i] = round(views[i]*ratio(i)) for missing targets with
// positive views. A non-finite ratio leaves the cell missing.
func fill(target, views []float64, ratio func(i int) float64) (filled, pending int) {
	for i := range target {
		if !math.IsNaN(target[i]) || !(views[i] > 0) {
			continue
		}
		r := ratio(i)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			pending++
			continue
		}
		target[i] = math.RoundToEven(views[i] * r)
		filled++
	}
	return filled, pending
}

func roundColumn(vals []float64) {
	for i, v := range vals {
		if !math.IsNaN(v) {
			vals[i] = math.RoundToEven(v)
		}
	}
}
