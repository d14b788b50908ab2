package render

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/songlens-cli/internal/analysis"
	"github.com/KaramelBytes/songlens-cli/internal/cluster"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func ptr[T any](v T) *T { return &v }

// value maps non-finite numbers to "-", which echarts draws as a gap.
func value(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// PlatformLabel names the platform a popularity metric comes from.
func PlatformLabel(metric string) string {
	switch metric {
	case "Stream", "log_Stream", "norm_Stream":
		return "Spotify (" + metric + ")"
	case "Views", "log_Views", "norm_Views":
		return "YouTube (" + metric + ")"
	}
	return metric
}

func base(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: ptr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: ptr(true), Top: "bottom"}),
	}
}

// TrendSeries is one line of a valence trend chart.
type TrendSeries struct {
	Name   string
	Points []analysis.TrendPoint
}

// ValenceTrend plots mean popularity per valence bin. Empty bins are gaps.
func ValenceTrend(title string, series ...TrendSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(base(title, ""),
		charts.WithXAxisOpts(opts.XAxis{Name: "Valence (0-1, binned)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average popularity (0-1, normalized)"}),
	)...)
	labels := make([]string, analysis.ValenceBins)
	for b := range labels {
		labels[b] = analysis.ValenceBinLabel(b)
	}
	line.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.LineData, analysis.ValenceBins)
		for b := range data {
			data[b] = opts.LineData{Value: "-"}
		}
		for _, p := range s.Points {
			data[p.Bin] = opts.LineData{Value: value(p.Mean)}
		}
		line.AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: ptr(true)}))
	}
	return line
}

// MoodSeries is one platform's balanced mood summary.
type MoodSeries struct {
	Name string
	Pop  *analysis.MoodPopularity
}

// MoodPopularity compares median popularity per mood across platforms.
func MoodPopularity(sampleCap int, series ...MoodSeries) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(base("Cross-Platform Popularity by Mood",
		fmt.Sprintf("balanced sampling, n=%d per mood and platform", sampleCap)),
		charts.WithYAxisOpts(opts.YAxis{Name: "Median popularity (log scale)"}),
	)...)
	moods := make([]string, len(analysis.Moods))
	for i, m := range analysis.Moods {
		moods[i] = string(m)
	}
	bar.SetXAxis(moods)
	for _, s := range series {
		data := make([]opts.BarData, len(s.Pop.Medians))
		for i, v := range s.Pop.Medians {
			data[i] = opts.BarData{Value: value(v)}
		}
		bar.AddSeries(s.Name, data)
	}
	return bar
}

// Elbow plots inertia against k.
func Elbow(res *cluster.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(base("Elbow Method for Optimal K", res.Name),
		charts.WithXAxisOpts(opts.XAxis{Name: "Number of clusters (k)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Inertia"}),
	)...)
	ks := make([]string, len(res.Elbow))
	data := make([]opts.LineData, len(res.Elbow))
	for i, e := range res.Elbow {
		ks[i] = fmt.Sprint(e.K)
		data[i] = opts.LineData{Value: value(e.Inertia)}
	}
	line.SetXAxis(ks).AddSeries("inertia", data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: ptr(true)}))
	return line
}

// ClusterScatter plots the 2-D PCA projection with one series per cluster.
func ClusterScatter(title string, res *cluster.Result) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(base(title, ""),
		charts.WithXAxisOpts(opts.XAxis{Name: "PCA-1", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "PCA-2", Type: "value"}),
	)...)
	k := len(res.Profiles)
	points := make([][]opts.ScatterData, k)
	for i, l := range res.Labels {
		points[l] = append(points[l], opts.ScatterData{
			Value:      []any{value(res.PCA.Coords.At(i, 0)), value(res.PCA.Coords.At(i, 1))},
			SymbolSize: 5,
		})
	}
	for c := 0; c < k; c++ {
		sc.AddSeries(fmt.Sprintf("cluster %d", c), points[c])
	}
	return sc
}

// PopularityByCluster plots log1p mean popularity per cluster and metric.
func PopularityByCluster(res *cluster.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(base("Average Popularity by Cluster (log scale)", res.Name),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average popularity (log scale)"}),
	)...)
	names := make([]string, len(res.Profiles))
	for i, p := range res.Profiles {
		names[i] = fmt.Sprintf("C%d", p.Cluster)
	}
	bar.SetXAxis(names)
	for m, metric := range res.Metrics {
		data := make([]opts.BarData, len(res.Profiles))
		for i, p := range res.Profiles {
			data[i] = opts.BarData{Value: value(round3(p.LogPopularity[m]))}
		}
		bar.AddSeries(PlatformLabel(metric), data)
	}
	return bar
}

// heatmap draws values[i][j] with rows on y and cols on x.
func heatmap(title string, rows, cols []string, values [][]float64, lo, hi float64, palette []string) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(base(title, ""),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: cols, SplitArea: &opts.SplitArea{Show: ptr(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows, SplitArea: &opts.SplitArea{Show: ptr(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: ptr(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: palette},
		}),
	)...)
	var data []opts.HeatMapData
	for i := range rows {
		for j := range cols {
			data = append(data, opts.HeatMapData{Value: [3]any{j, i, value(round3(values[i][j]))}})
		}
	}
	hm.SetXAxis(cols).AddSeries(title, data, charts.WithLabelOpts(opts.Label{Show: ptr(true)}))
	return hm
}

// bounds returns the finite min and max of values, or 0,1 when there are none.
func bounds(values [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range values {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

// ProfileHeatmap draws per-cluster feature means.
func ProfileHeatmap(title string, res *cluster.Result, palette []string) *charts.HeatMap {
	rows := make([]string, len(res.Profiles))
	values := make([][]float64, len(res.Profiles))
	for i, p := range res.Profiles {
		rows[i] = fmt.Sprint(p.Cluster)
		values[i] = p.FeatureMeans
	}
	lo, hi := bounds(values)
	return heatmap(title, rows, res.Features, values, lo, hi, palette)
}

// Palettes for the platform heatmaps and signed correlations.
var (
	BlueGreen = []string{"#ffffd9", "#7fcdbb", "#1d91c0", "#081d58"}
	OrangeRed = []string{"#ffffcc", "#feb24c", "#fc4e2a", "#800026"}
	CoolWarm  = []string{"#3b4cc0", "#dddddd", "#b40426"}
)

// PlatformPanel is one clustering drawn in a side-by-side page.
type PlatformPanel struct {
	Title   string
	Result  *cluster.Result
	Palette []string
}

// ProfileHeatmaps places one feature-mean heatmap per panel on a page.
func ProfileHeatmaps(panels ...PlatformPanel) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Cluster Feature Means"
	for _, p := range panels {
		page.AddCharts(ProfileHeatmap(p.Title, p.Result, p.Palette))
	}
	return page
}

// PlatformScatters places one PCA scatter per panel on a page.
func PlatformScatters(panels ...PlatformPanel) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Platform Clusters (PCA Projection)"
	for _, p := range panels {
		page.AddCharts(ClusterScatter(p.Title, p.Result))
	}
	return page
}

// CorrelationBars draws one bar series per column of c across its rows.
func CorrelationBars(title string, c *analysis.CorrTable) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(base(title, ""),
		charts.WithYAxisOpts(opts.YAxis{Name: "Correlation (Pearson r)", Min: -1, Max: 1}),
	)...)
	bar.SetXAxis(c.Rows)
	for j, col := range c.Cols {
		data := make([]opts.BarData, len(c.Rows))
		for i := range c.Rows {
			data[i] = opts.BarData{Value: value(round3(c.Values[i][j]))}
		}
		bar.AddSeries(PlatformLabel(col)+" corr", data)
	}
	return bar
}

// CorrelationHeatmap draws c on a fixed [-1, 1] scale.
func CorrelationHeatmap(title string, c *analysis.CorrTable) *charts.HeatMap {
	return heatmap(title, c.Rows, c.Cols, c.Values, -1, 1, CoolWarm)
}
