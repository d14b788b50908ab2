package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset state that persists across invocations
	cfg = nil
	cfgFile = ""
	for _, c := range []struct {
		name  string
		flags []string
	}{
		{"run", []string{"out-dir", "seed", "k", "sample-cap", "no-charts", "repaired", "delimiter", "decimal", "thousands"}},
		{"cluster", []string{"mode", "k", "delimiter", "decimal", "thousands"}},
		{"impute", []string{"output", "delimiter", "decimal", "thousands"}},
	} {
		sub, _, err := rootCmd.Find([]string{c.name})
		if err != nil {
			t.Fatalf("find %s: %v", c.name, err)
		}
		for _, name := range c.flags {
			if fl := sub.Flags().Lookup(name); fl != nil {
				_ = fl.Value.Set(fl.DefValue)
				fl.Changed = false
			}
		}
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, _ := os.Getwd()
	if err := os.Chdir(home); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func writeCSV(t *testing.T, dir string, n int) string {
	t.Helper()
	rows := []string{"Artist,Track,Danceability,Energy,Speechiness,Acousticness,Instrumentalness,Liveness,Valence,Tempo,Views,Likes,Comments,Stream"}
	for i := 0; i < n; i++ {
		v := func(k int) string { return fmt.Sprintf("%.3f", float64((i*k)%97)/97) }
		views := 1000 * (i + 1)
		stream := fmt.Sprint(views * (2 + i%3))
		if i%5 == 0 {
			stream = ""
		}
		likes := fmt.Sprint(views / 10)
		if i%7 == 0 {
			likes = ""
		}
		rows = append(rows, strings.Join([]string{
			fmt.Sprintf("artist%d", i%4), fmt.Sprintf("track%d", i),
			v(3), v(5), v(7), v(11), v(13), v(17), v(19), fmt.Sprint(90 + i%40),
			fmt.Sprint(views), likes, fmt.Sprint(views / 50), stream,
		}, ","))
	}
	path := filepath.Join(dir, "tracks.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_RunWritesChartsAndRepairedTable(t *testing.T) {
	home := isolateHome(t)
	csv := writeCSV(t, home, 40)
	outDir := filepath.Join(home, "charts")
	repaired := filepath.Join(home, "repaired.csv")

	out := mustExecute(t, "run", csv, "--out-dir", outDir, "--sample-cap", "5", "--repaired", repaired)
	if !strings.Contains(out, "✓ Analyzed 40 rows") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "manifest.json")); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "11_yt_interaction_vs_features.html")); err != nil {
		t.Fatalf("last chart missing: %v", err)
	}
	b, err := os.ReadFile(repaired)
	if err != nil {
		t.Fatalf("read repaired: %v", err)
	}
	if strings.Contains(string(b), ",,") {
		t.Fatalf("repaired table still has empty cells:\n%s", strings.SplitN(string(b), "\n", 3)[1])
	}
}

func TestCLI_ImputeMissingCorrelate(t *testing.T) {
	home := isolateHome(t)
	csv := writeCSV(t, home, 30)

	out := mustExecute(t, "missing", csv)
	if !strings.Contains(out, "Stream") || !strings.Contains(out, "Likes") {
		t.Fatalf("missing report:\n%s", out)
	}

	repaired := filepath.Join(home, "out.csv")
	out = mustExecute(t, "impute", csv, "-o", repaired)
	if !strings.Contains(out, "Stream filled by artist ratio: 6") || !strings.Contains(out, "✓ Wrote repaired table") {
		t.Fatalf("impute output:\n%s", out)
	}

	out = mustExecute(t, "correlate", csv)
	if !strings.Contains(out, "Danceability") || !strings.Contains(out, "Comments") {
		t.Fatalf("correlate output:\n%s", out)
	}
}

func TestCLI_ClusterModes(t *testing.T) {
	home := isolateHome(t)
	csv := writeCSV(t, home, 40)

	for _, mode := range []string{"overview", "spotify", "youtube"} {
		out := mustExecute(t, "cluster", csv, "--mode", mode, "--k", "3")
		if !strings.Contains(out, mode+" cluster profiles") {
			t.Fatalf("%s output:\n%s", mode, out)
		}
	}
	if _, err := execute(t, "cluster", csv, "--mode", "tiktok"); err == nil {
		t.Fatalf("expected unsupported mode error")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)
	mustExecute(t, "config", "set", "clusters", "6")
	if _, err := os.Stat(filepath.Join(home, ".songlens", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := mustExecute(t, "config", "show")
	if !strings.Contains(out, `clusters: "6"`) || !strings.Contains(out, `output_dir: "information"`) {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := execute(t, "config", "set", "clusters", "many"); err == nil {
		t.Fatalf("expected invalid int error")
	}
}

func TestCLI_TSVInputIsTabSeparated(t *testing.T) {
	home := isolateHome(t)
	b, err := os.ReadFile(writeCSV(t, home, 30))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	tsv := filepath.Join(home, "tracks.tsv")
	if err := os.WriteFile(tsv, []byte(strings.ReplaceAll(string(b), ",", "\t")), 0o644); err != nil {
		t.Fatalf("write tsv: %v", err)
	}

	out := mustExecute(t, "impute", tsv, "-o", filepath.Join(home, "out.csv"))
	if !strings.Contains(out, "Stream filled by artist ratio: 6") {
		t.Fatalf("impute on tsv:\n%s", out)
	}

	// An explicit tab delimiter from config reads the same file under any name.
	plain := filepath.Join(home, "tracks.txt")
	if err := os.Rename(tsv, plain); err != nil {
		t.Fatalf("rename: %v", err)
	}
	mustExecute(t, "config", "set", "delimiter", "tab")
	out = mustExecute(t, "impute", plain, "-o", filepath.Join(home, "out2.csv"))
	if !strings.Contains(out, "Stream filled by artist ratio: 6") {
		t.Fatalf("impute with configured tab:\n%s", out)
	}
	if _, err := execute(t, "config", "set", "delimiter", "::"); err == nil {
		t.Fatalf("expected unsupported delimiter error")
	}
}
