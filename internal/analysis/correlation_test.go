package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
)

func TestPearson(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"inverse", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
		{"pairwise", []float64{1, nan, 2, 3, 100}, []float64{10, 5, 20, 30, nan}, 1},
		{"constant", []float64{1, 1, 1}, []float64{1, 2, 3}, nan},
		{"single", []float64{1, nan}, []float64{2, 3}, nan},
	}
	for _, tc := range cases {
		got := Pearson(tc.x, tc.y)
		if math.IsNaN(tc.want) {
			if !math.IsNaN(got) {
				t.Errorf("%s: got %v, want NaN", tc.name, got)
			}
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCorrelateTable(t *testing.T) {
	rows := [][]string{
		{"0.1", "0.9", "100", "10"},
		{"0.2", "0.7", "200", ""},
		{"0.3", "0.8", "300", "30"},
		{"0.4", "0.1", "400", "40"},
	}
	tbl, err := dataset.New("c", []string{"Energy", "Valence", "Stream", "Views"}, rows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := Correlate(tbl, []string{"Energy", "Valence"}, []string{"Stream", "Views"})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if len(ct.Values) != 2 || len(ct.Values[0]) != 2 {
		t.Fatalf("shape = %v", ct.Values)
	}
	if math.Abs(ct.At("Energy", "Stream")-1) > 1e-9 || math.Abs(ct.At("Energy", "Views")-1) > 1e-9 {
		t.Fatalf("energy row = %v", ct.Values[0])
	}
	if ct.At("Valence", "Stream") >= 0 {
		t.Fatalf("valence/stream should be negative, got %v", ct.At("Valence", "Stream"))
	}
	if !math.IsNaN(ct.At("Tempo", "Stream")) {
		t.Fatalf("unknown row should be NaN")
	}
	if _, err := Correlate(tbl, []string{"Tempo"}, []string{"Stream"}); err == nil {
		t.Fatalf("expected missing column error")
	}
}
