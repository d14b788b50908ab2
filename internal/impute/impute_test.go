package impute

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
)

var header = []string{"Artist", "Track", "Views", "Stream", "Likes"}

func newTable(t *testing.T, rows [][]string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New("fixture.csv", header, rows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func itoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func TestImputeLikesUsesMeanRatio(t *testing.T) {
	tbl := newTable(t, [][]string{
		{"A", "t1", "100", "1", "10"},
		{"A", "t2", "200", "1", "40"},
		{"B", "t3", "1000", "1", ""},
		{"B", "t4", "0", "1", ""},
		{"B", "t5", "", "1", ""},
		{"B", "t6", "-5", "1", ""},
		{"C", "t7", "0", "1", "7"},
		{"C", "t8", "333", "1", "1.6"},
	})
	res, err := Impute(tbl)
	if err != nil {
		t.Fatalf("Impute: %v", err)
	}
	// (0.1 + 0.2 + 1.6/333) / 3
	want := (0.1 + 0.2 + 1.6/333) / 3
	if math.Abs(res.LikeViewRatio-want) > 1e-12 {
		t.Fatalf("like ratio = %v, want %v", res.LikeViewRatio, want)
	}
	likes := tbl.Floats("Likes")
	if likes[2] != math.RoundToEven(1000*want) {
		t.Fatalf("filled likes = %v, want %v", likes[2], math.RoundToEven(1000*want))
	}
	for _, i := range []int{3, 4, 5} {
		if !math.IsNaN(likes[i]) {
			t.Fatalf("row %d should stay missing, got %v", i, likes[i])
		}
	}
	if likes[7] != 2 {
		t.Fatalf("observed likes should be rounded, got %v", likes[7])
	}
	if res.LikesFilled != 1 || res.LikesPending != 0 {
		t.Fatalf("filled=%d pending=%d", res.LikesFilled, res.LikesPending)
	}
}

func TestImputeUndefinedRatioLeavesMissing(t *testing.T) {
	tbl := newTable(t, [][]string{
		{"A", "t1", "100", "", ""},
		{"A", "t2", "0", "50", "3"},
	})
	res, err := Impute(tbl)
	if err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if !math.IsNaN(res.LikeViewRatio) || !math.IsNaN(res.StreamViewRatio) {
		t.Fatalf("ratios should be undefined: %+v", res)
	}
	if !math.IsNaN(tbl.Floats("Likes")[0]) || !math.IsNaN(tbl.Floats("Stream")[0]) {
		t.Fatalf("targets should stay missing")
	}
	if res.LikesPending != 1 || res.StreamPending != 1 || res.LikesFilled != 0 || res.StreamFilled != 0 {
		t.Fatalf("counts = %+v", res)
	}
}

func TestImputeStreamArtistMedianWithGlobalFallback(t *testing.T) {
	tbl := newTable(t, [][]string{
		{"A", "a1", "100", "100", "1"},
		{"A", "a2", "100", "300", "1"},
		{"A", "a3", "1000", "", "1"},
		{"C", "c1", "10", "100", "1"},
		{"C", "c2", "7", "", "1"},
		{"B", "b1", "50", "", "1"},
		{"", "x1", "100", "", "1"},
	})
	res, err := Impute(tbl)
	if err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if res.ArtistRatios["A"] != 2 || res.ArtistRatios["C"] != 10 {
		t.Fatalf("artist ratios = %v", res.ArtistRatios)
	}
	if _, ok := res.ArtistRatios["B"]; ok {
		t.Fatalf("B has no observed ratio")
	}
	if res.StreamViewRatio != 3 {
		t.Fatalf("global ratio = %v, want 3", res.StreamViewRatio)
	}
	stream := tbl.Floats("Stream")
	want := map[int]float64{2: 2000, 4: 70, 5: 150, 6: 300}
	for i, w := range want {
		if stream[i] != w {
			t.Fatalf("stream[%d] = %v, want %v", i, stream[i], w)
		}
	}
	if res.StreamFilled != 4 {
		t.Fatalf("stream filled = %d", res.StreamFilled)
	}
}

func TestImputeIsIdempotent(t *testing.T) {
	tbl := newTable(t, [][]string{
		{"A", "a1", "120", "250", "12"},
		{"A", "a2", "333", "", ""},
		{"B", "b1", "77", "", "5"},
		{"B", "b2", "0", "", ""},
	})
	if _, err := Impute(tbl); err != nil {
		t.Fatalf("first Impute: %v", err)
	}
	firstLikes := append([]float64(nil), tbl.Floats("Likes")...)
	firstStream := append([]float64(nil), tbl.Floats("Stream")...)

	res, err := Impute(tbl)
	if err != nil {
		t.Fatalf("second Impute: %v", err)
	}
	if res.LikesFilled != 0 || res.StreamFilled != 0 {
		t.Fatalf("second pass filled %d/%d", res.LikesFilled, res.StreamFilled)
	}
	for i := range firstLikes {
		if !sameFloat(firstLikes[i], tbl.Floats("Likes")[i]) || !sameFloat(firstStream[i], tbl.Floats("Stream")[i]) {
			t.Fatalf("row %d changed on second pass", i)
		}
	}
}

// 100 rows, two artists, 10 missing streams; artist B has no observed ratio.
// Artist A's ratios median to 2.5 while C's high ratios pull the global
// median to 3, so A's gaps and B's gaps must take different paths.
func TestImputeStreamScenario(t *testing.T) {
	var rows [][]string
	views := make([]float64, 125)
	for i := 0; i < 90; i++ {
		views[i] = float64(1000 + i*10)
		ratio := 2 + float64(i%3)*0.5
		stream := itoa(views[i] * ratio)
		if i < 5 {
			stream = ""
		}
		rows = append(rows, []string{"A", "a" + strconv.Itoa(i), itoa(views[i]), stream, "1"})
	}
	for i := 90; i < 120; i++ {
		views[i] = float64(2000 + i)
		rows = append(rows, []string{"C", "c" + strconv.Itoa(i), itoa(views[i]), itoa(views[i] * 10), "1"})
	}
	for i := 120; i < 125; i++ {
		views[i] = float64(5000 + i)
		rows = append(rows, []string{"B", "b" + strconv.Itoa(i), itoa(views[i]), "", "1"})
	}
	tbl := newTable(t, rows)
	res, err := Impute(tbl)
	if err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if res.ArtistRatios["A"] != 2.5 || res.ArtistRatios["C"] != 10 {
		t.Fatalf("artist medians = %v", res.ArtistRatios)
	}
	if _, ok := res.ArtistRatios["B"]; ok {
		t.Fatalf("B has no observed stream and should have no ratio")
	}
	if res.StreamViewRatio != 3 {
		t.Fatalf("global median = %v", res.StreamViewRatio)
	}
	stream := tbl.Floats("Stream")
	for i := 0; i < 5; i++ {
		if want := math.RoundToEven(views[i] * 2.5); stream[i] != want {
			t.Fatalf("A row %d = %v, want %v", i, stream[i], want)
		}
	}
	for i := 120; i < 125; i++ {
		if want := math.RoundToEven(views[i] * 3); stream[i] != want {
			t.Fatalf("B row %d = %v, want %v", i, stream[i], want)
		}
	}
	if res.StreamFilled != 10 {
		t.Fatalf("filled = %d", res.StreamFilled)
	}
}

func TestImputeRequiresColumns(t *testing.T) {
	tbl, err := dataset.New("x", []string{"Artist", "Views"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := Impute(tbl); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("err = %v", err)
	}
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
