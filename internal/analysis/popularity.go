package analysis

import (
	"math"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// MoodPopularity summarizes a balanced per-mood sample of one popularity metric.
type MoodPopularity struct {
	Metric string
	Cap    int
	// Counts and Medians follow the order of Moods. A mood with no sampled
	// rows has count 0 and a NaN median.
	Counts  []int
	Medians []float64
}

// SummarizeMoodPopularity samples at most n rows per mood among rows where
// both moodCol and metricCol are observed, then takes the median metric per mood.
func SummarizeMoodPopularity(t *dataset.Table, moodCol, metricCol string, n int, seed uint64) (*MoodPopularity, error) {
	if err := t.Require(moodCol, metricCol); err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < t.Len(); i++ {
		if !t.IsMissing(moodCol, i) && !t.IsMissing(metricCol, i) {
			rows = append(rows, i)
		}
	}
	eligible, err := t.Select(rows, moodCol, metricCol)
	if err != nil {
		return nil, err
	}
	sample, err := BalancedSample(eligible, moodCol, n, []string{metricCol}, seed)
	if err != nil {
		return nil, err
	}
	byMood := map[string]stats.Float64Data{}
	vals := sample.Floats(metricCol)
	for i := 0; i < sample.Len(); i++ {
		m := sample.Value(moodCol, i)
		byMood[m] = append(byMood[m], vals[i])
	}
	out := &MoodPopularity{Metric: metricCol, Cap: n}
	for _, m := range Moods {
		g := byMood[string(m)]
		out.Counts = append(out.Counts, len(g))
		med, err := g.Median()
		if err != nil {
			med = math.NaN()
		}
		out.Medians = append(out.Medians, med)
	}
	return out, nil
}
