package analysis

import (
	"strconv"
	"testing"

	"github.com/KaramelBytes/songlens-cli/internal/dataset"
)

func moodTable(t *testing.T, counts map[string]int) *dataset.Table {
	t.Helper()
	var rows [][]string
	id := 0
	for _, mood := range []string{"happy", "sad", "neutral"} {
		for i := 0; i < counts[mood]; i++ {
			rows = append(rows, []string{mood, strconv.Itoa(id), "x"})
			id++
		}
	}
	rows = append(rows, []string{"", strconv.Itoa(id), "x"})
	tbl, err := dataset.New("moods", []string{"Mood", "Score", "Other"}, rows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestBalancedSampleCaps(t *testing.T) {
	tbl := moodTable(t, map[string]int{"happy": 40, "sad": 12, "neutral": 3})
	out, err := BalancedSample(tbl, "Mood", 10, []string{"Score"}, 42)
	if err != nil {
		t.Fatalf("BalancedSample: %v", err)
	}
	if got := out.Columns(); len(got) != 2 || got[0] != "Mood" || got[1] != "Score" {
		t.Fatalf("columns = %v", got)
	}
	counts := map[string]int{}
	for _, cc := range CountBy(out, "Mood") {
		counts[cc.Value] = cc.Count
	}
	if counts["happy"] != 10 || counts["sad"] != 10 || counts["neutral"] != 3 {
		t.Fatalf("counts = %v", counts)
	}
	if _, ok := counts[""]; ok || out.Len() != 23 {
		t.Fatalf("missing moods must be dropped, len=%d", out.Len())
	}
}

func TestBalancedSampleReproducible(t *testing.T) {
	tbl := moodTable(t, map[string]int{"happy": 50, "sad": 50, "neutral": 50})
	a, err := BalancedSample(tbl, "Mood", 7, []string{"Score"}, 7)
	if err != nil {
		t.Fatalf("BalancedSample: %v", err)
	}
	b, _ := BalancedSample(tbl, "Mood", 7, []string{"Score"}, 7)
	c, _ := BalancedSample(tbl, "Mood", 7, []string{"Score"}, 8)
	sa, sb, sc := a.Strings("Score"), b.Strings("Score"), c.Strings("Score")
	same := true
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("same seed differs at %d: %s vs %s", i, sa[i], sb[i])
		}
		if sa[i] != sc[i] {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced identical samples")
	}
}

func TestBalancedSampleUnknownColumn(t *testing.T) {
	tbl := moodTable(t, map[string]int{"happy": 1})
	if _, err := BalancedSample(tbl, "Mood", 1, []string{"Nope"}, 1); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestSummarizeMoodPopularity(t *testing.T) {
	rows := [][]string{
		{"0.1", "1"}, {"0.2", "3"}, {"0.2", ""},
		{"0.5", "10"},
		{"", "99"},
	}
	tbl, err := dataset.New("p", []string{"Valence", "log_Stream"}, rows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.SetStrings("Mood", MoodColumn(tbl.Floats("Valence"))); err != nil {
		t.Fatalf("SetStrings: %v", err)
	}
	mp, err := SummarizeMoodPopularity(tbl, "Mood", "log_Stream", 100, 42)
	if err != nil {
		t.Fatalf("SummarizeMoodPopularity: %v", err)
	}
	if mp.Counts[0] != 2 || mp.Counts[1] != 1 || mp.Counts[2] != 0 {
		t.Fatalf("counts = %v", mp.Counts)
	}
	if mp.Medians[0] != 2 || mp.Medians[1] != 10 {
		t.Fatalf("medians = %v", mp.Medians)
	}
}
