package analysis

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
)

// BalancedSample keeps at most n rows per category of categoryCol.
//
// Every row of t gets one uniform random key from a generator seeded with
// seed; rows are stably sorted by key and the first n rows seen for each
// category are kept, in key order. Rows with a missing category are dropped.
// The returned table holds categoryCol followed by valueCols.
func BalancedSample(t *dataset.Table, categoryCol string, n int, valueCols []string, seed uint64) (*dataset.Table, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample cap must be >= 0, got %d", n)
	}
	keep := append([]string{categoryCol}, valueCols...)
	if err := t.Require(keep...); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	keys := make([]float64, t.Len())
	order := make([]int, t.Len())
	for i := range keys {
		keys[i] = rng.Float64()
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	taken := map[string]int{}
	rows := make([]int, 0, len(order))
	for _, r := range order {
		if t.IsMissing(categoryCol, r) {
			continue
		}
		cat := t.Value(categoryCol, r)
		if taken[cat] >= n {
			continue
		}
		taken[cat]++
		rows = append(rows, r)
	}
	return t.Select(rows, keep...)
}

// CategoryCount is the number of rows carrying one category value.
type CategoryCount struct {
	Value string
	Count int
}

// CountBy tallies non-missing values of col, most frequent first.
func CountBy(t *dataset.Table, col string) []CategoryCount {
	counts := map[string]int{}
	for i := 0; i < t.Len(); i++ {
		if !t.IsMissing(col, i) {
			counts[t.Value(col, i)]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}
