// Package console prints run diagnostics as colored headings and aligned tables.
package console

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/songlens-cli/internal/analysis"
	"github.com/KaramelBytes/songlens-cli/internal/cluster"
	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/KaramelBytes/songlens-cli/internal/impute"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Printer writes diagnostics to w. Output is informational only.
type Printer struct {
	w       io.Writer
	heading *color.Color
	sub     *color.Color
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		sub:     color.New(color.FgYellow),
	}
}

// Section prints a top-level heading.
func (p *Printer) Section(title string) {
	p.heading.Fprintf(p.w, "\n=== %s ===\n", title)
}

func (p *Printer) subheading(format string, args ...any) {
	p.sub.Fprintf(p.w, "\n"+format+"\n", args...)
}

func (p *Printer) table(header []string, rows [][]string) {
	tw := tablewriter.NewWriter(p.w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	tw.AppendBulk(rows)
	tw.Render()
}

// Missing prints one missing-value report.
func (p *Printer) Missing(rep dataset.MissingReport) {
	p.subheading("▶ %s", rep.Title)
	if rep.Empty() {
		fmt.Fprintln(p.w, "  ✓ no missing values")
		return
	}
	rows := make([][]string, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		rows = append(rows, []string{e.Column, strconv.Itoa(e.Count)})
	}
	p.table([]string{"Column", "Missing"}, rows)
	if rep.Omitted > 0 {
		fmt.Fprintf(p.w, "  ... %d more columns omitted\n", rep.Omitted)
	}
}

// Imputation prints the estimated ratios and fill counts.
func (p *Printer) Imputation(res *impute.Result) {
	fmt.Fprintf(p.w, "\nestimated like/view ratio = %s\n", Float(res.LikeViewRatio, 6))
	fmt.Fprintf(p.w, "→ Likes filled by ratio: %d", res.LikesFilled)
	if res.LikesPending > 0 {
		fmt.Fprintf(p.w, " (%d left missing, ratio undefined)", res.LikesPending)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "global stream/view median ratio = %s (%d artists with their own ratio)\n",
		Float(res.StreamViewRatio, 6), len(res.ArtistRatios))
	fmt.Fprintf(p.w, "→ Stream filled by artist ratio: %d", res.StreamFilled)
	if res.StreamPending > 0 {
		fmt.Fprintf(p.w, " (%d left missing, ratio undefined)", res.StreamPending)
	}
	fmt.Fprintln(p.w)
}

// Categories prints a value count table.
func (p *Printer) Categories(title string, counts []analysis.CategoryCount) {
	p.subheading("%s", title)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Value, strconv.Itoa(c.Count)})
	}
	p.table([]string{"Value", "Count"}, rows)
}

// MoodPopularity prints the sampled size and median metric per mood.
func (p *Printer) MoodPopularity(title string, mp *analysis.MoodPopularity) {
	p.subheading("%s (at most %d per mood)", title, mp.Cap)
	rows := make([][]string, 0, len(analysis.Moods))
	for i, m := range analysis.Moods {
		rows = append(rows, []string{string(m), strconv.Itoa(mp.Counts[i]), Float(mp.Medians[i], 0)})
	}
	p.table([]string{"Mood", "Sampled", "Median " + mp.Metric}, rows)
}

// Trend prints a valence trend.
func (p *Printer) Trend(title string, points []analysis.TrendPoint) {
	p.subheading("%s", title)
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		rows = append(rows, []string{pt.Label, strconv.Itoa(pt.Rows), Float(pt.Mean, 0)})
	}
	p.table([]string{"Valence", "Rows", "Mean"}, rows)
}

// Elbow prints the inertia sweep of a clustering.
func (p *Printer) Elbow(res *cluster.Result) {
	if len(res.Elbow) == 0 {
		return
	}
	p.subheading("%s inertia by k", res.Name)
	rows := make([][]string, 0, len(res.Elbow))
	for _, e := range res.Elbow {
		rows = append(rows, []string{strconv.Itoa(e.K), Float(e.Inertia, 2)})
	}
	p.table([]string{"k", "Inertia"}, rows)
}

// Projection prints explained variance and loadings of a clustering's PCA.
func (p *Printer) Projection(res *cluster.Result) {
	pr := res.PCA
	p.subheading("%s PCA", res.Name)
	header := []string{"Feature"}
	for i, r := range pr.ExplainedVarianceRatio {
		header = append(header, fmt.Sprintf("PC%d (%s)", i+1, Float(r, 3)))
	}
	rows := make([][]string, 0, len(res.Features))
	for j, f := range res.Features {
		row := []string{f}
		for _, load := range pr.Loadings {
			row = append(row, Float(load[j], 4))
		}
		rows = append(rows, row)
	}
	p.table(header, rows)
}

// Profiles prints per-cluster feature means and log popularity.
func (p *Printer) Profiles(res *cluster.Result) {
	p.subheading("%s cluster profiles", res.Name)
	header := []string{"Cluster", "Size"}
	header = append(header, res.Features...)
	for _, m := range res.Metrics {
		header = append(header, "log1p "+m)
	}
	rows := make([][]string, 0, len(res.Profiles))
	for _, pr := range res.Profiles {
		row := []string{strconv.Itoa(pr.Cluster), strconv.Itoa(pr.Size)}
		for _, v := range pr.FeatureMeans {
			row = append(row, Float(v, 3))
		}
		for _, v := range pr.LogPopularity {
			row = append(row, Float(v, 3))
		}
		rows = append(rows, row)
	}
	p.table(header, rows)
}

// Correlations prints a coefficient table rounded to three decimals.
func (p *Printer) Correlations(title string, c *analysis.CorrTable) {
	p.subheading("%s", title)
	header := append([]string{""}, c.Cols...)
	rows := make([][]string, 0, len(c.Rows))
	for i, r := range c.Rows {
		row := []string{r}
		for _, v := range c.Values[i] {
			row = append(row, Float(v, 3))
		}
		rows = append(rows, row)
	}
	p.table(header, rows)
}

// Float formats v with prec decimals; NaN prints as "NaN".
func Float(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
