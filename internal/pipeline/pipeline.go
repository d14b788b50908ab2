// Package pipeline runs the analysis stages over one CSV in a fixed order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/songlens-cli/internal/analysis"
	"github.com/KaramelBytes/songlens-cli/internal/cluster"
	"github.com/KaramelBytes/songlens-cli/internal/console"
	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/KaramelBytes/songlens-cli/internal/impute"
	"github.com/KaramelBytes/songlens-cli/internal/render"
	"github.com/KaramelBytes/songlens-cli/internal/utils"
	"go.uber.org/zap"
)

// Derived column names.
const (
	ColValence      = "Valence"
	ColComments     = "Comments"
	ColLogStream    = "log_Stream"
	ColLogViews     = "log_Views"
	ColNormStream   = "norm_Stream"
	ColNormViews    = "norm_Views"
	ColValenceGroup = "valence_group"
	ColMood         = "Mood"
)

// CorrelationFeatures are the audio features compared against popularity.
var CorrelationFeatures = []string{
	"Danceability", "Energy", "Valence", "Tempo",
	"Acousticness", "Instrumentalness", "Speechiness",
}

// Options configures a run.
type Options struct {
	Input     string
	Load      dataset.LoadOptions
	OutputDir string
	// RepairedPath, when set, receives the table as CSV after all stages.
	RepairedPath   string
	Charts         bool
	Seed           uint64
	Clusters       int
	KMin, KMax     int
	OverviewInits  int
	PlatformInits  int
	MaxIter        int
	SampleCap      int
	MissingMaxRows int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		OutputDir:      "information",
		Charts:         true,
		Seed:           42,
		Clusters:       4,
		KMin:           2,
		KMax:           8,
		OverviewInits:  1,
		PlatformInits:  10,
		MaxIter:        300,
		SampleCap:      2500,
		MissingMaxRows: 30,
	}
}

func (o Options) clusterOptions(inits int) cluster.Options {
	return cluster.Options{
		Features:   cluster.Features,
		K:          o.Clusters,
		KMin:       o.KMin,
		KMax:       o.KMax,
		Inits:      inits,
		MaxIter:    o.MaxIter,
		Seed:       o.Seed,
		Components: 2,
	}
}

// Summary collects what a run computed.
type Summary struct {
	Rows          int
	MissingBefore dataset.MissingReport
	MissingAfter  dataset.MissingReport
	Imputation    *impute.Result

	SpotifyTrend []analysis.TrendPoint
	YouTubeTrend []analysis.TrendPoint
	SpotifyMood  *analysis.MoodPopularity
	YouTubeMood  *analysis.MoodPopularity

	Overview *cluster.Result
	Spotify  *cluster.Result
	YouTube  *cluster.Result

	PlatformCorr    *analysis.CorrTable
	InteractionCorr *analysis.CorrTable

	RunID        string
	Manifest     string
	RepairedPath string
}

// Runner executes stages against one in-memory table.
type Runner struct {
	opt   Options
	out   *console.Printer
	log   *zap.SugaredLogger
	table *dataset.Table
	art   *render.ArtifactWriter
	sum   Summary
}

// NewRunner prints diagnostics to w and logs progress to log.
func NewRunner(opt Options, w io.Writer, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{opt: opt, out: console.New(w), log: log}
}

// Table returns the working table, nil before Load.
func (r *Runner) Table() *dataset.Table { return r.table }

// Summary returns the results gathered so far.
func (r *Runner) Summary() *Summary { return &r.sum }

// Run executes every stage. Chart failures are recorded in the manifest and
// never abort the run; a failed clustering or correlation only skips its charts.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	stages := []struct {
		name string
		fn   func() error
	}{
		{"load", r.Load},
		{"impute", r.Impute},
		{"derive", r.Derive},
		{"valence trends", r.ValenceTrends},
		{"mood popularity", r.MoodPopularity},
		{"overview clustering", r.OverviewClusters},
		{"platform clustering", func() error { return r.PlatformClusters() }},
		{"correlations", r.Correlations},
		{"repaired csv", r.WriteRepaired},
		{"manifest", r.finish},
	}
	if r.opt.Charts {
		aw, err := render.NewArtifactWriter(r.opt.OutputDir, r.opt.Input, r.log)
		if err != nil {
			return nil, err
		}
		r.art = aw
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.log.Debugw("stage start", "stage", s.name)
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return &r.sum, nil
}

// numericColumns are coerced at load time when present.
var numericColumns = []string{
	impute.ColViews, impute.ColLikes, impute.ColStream, ColComments,
	"Danceability", "Energy", "Key", "Loudness", "Speechiness", "Acousticness",
	"Instrumentalness", "Liveness", "Valence", "Tempo", "Duration_ms",
}

// Load reads the input and coerces the numeric columns.
func (r *Runner) Load() error {
	t, err := dataset.Load(r.opt.Input, r.opt.Load)
	if err != nil {
		return err
	}
	t.Coerce(r.opt.Load.Parse, numericColumns...)
	r.table = t
	r.sum.Rows = t.Len()
	r.log.Infow("loaded table", "path", r.opt.Input, "rows", t.Len(), "columns", len(t.Columns()))
	return nil
}

// ReportMissing prints and returns the missing-value report of the table.
func (r *Runner) ReportMissing(title string) dataset.MissingReport {
	rep := dataset.SummarizeMissing(r.table, title, r.opt.MissingMaxRows)
	r.out.Missing(rep)
	return rep
}

// Impute reports missing values, fills Likes and Stream, and reports again.
func (r *Runner) Impute() error {
	r.out.Section("Missing values and imputation")
	r.sum.MissingBefore = r.ReportMissing("Missing values before imputation")
	res, err := impute.Impute(r.table)
	if err != nil {
		return err
	}
	r.sum.Imputation = res
	r.out.Imputation(res)
	r.sum.MissingAfter = r.ReportMissing("Missing values after imputation")
	r.log.Infow("imputed", "likes", res.LikesFilled, "stream", res.StreamFilled,
		"likes_pending", res.LikesPending, "stream_pending", res.StreamPending)
	return nil
}

// Derive adds log, normalized, valence bin and mood columns.
func (r *Runner) Derive() error {
	t := r.table
	if err := t.Require(ColValence, impute.ColStream, impute.ColViews); err != nil {
		return err
	}
	logStream := analysis.Log1p(t.Floats(impute.ColStream))
	logViews := analysis.Log1p(t.Floats(impute.ColViews))
	valence := t.Floats(ColValence)
	for _, c := range []struct {
		name string
		vals []float64
	}{
		{ColLogStream, logStream},
		{ColLogViews, logViews},
		{ColNormStream, analysis.MinMax(logStream)},
		{ColNormViews, analysis.MinMax(logViews)},
	} {
		if err := t.SetFloats(c.name, c.vals); err != nil {
			return err
		}
	}
	if err := t.SetStrings(ColValenceGroup, analysis.ValenceGroups(valence)); err != nil {
		return err
	}
	return t.SetStrings(ColMood, analysis.MoodColumn(valence))
}

// ValenceTrends averages normalized popularity per valence bin.
func (r *Runner) ValenceTrends() error {
	t := r.table
	valence := t.Floats(ColValence)
	r.sum.SpotifyTrend = analysis.ValenceTrend(valence, t.Floats(ColNormStream))
	r.sum.YouTubeTrend = analysis.ValenceTrend(valence, t.Floats(ColNormViews))

	r.out.Section("Popularity vs valence")
	r.out.Trend("Spotify (normalized log Stream)", r.sum.SpotifyTrend)
	r.out.Trend("YouTube (normalized log Views)", r.sum.YouTubeTrend)

	sp := render.TrendSeries{Name: "Spotify", Points: r.sum.SpotifyTrend}
	yt := render.TrendSeries{Name: "YouTube", Points: r.sum.YouTubeTrend}
	r.save("spotify_valence_trend", func() render.Renderer {
		return render.ValenceTrend("Spotify Popularity vs Valence (Normalized)", sp)
	})
	r.save("youtube_valence_trend", func() render.Renderer {
		return render.ValenceTrend("YouTube Popularity vs Valence (Normalized)", yt)
	})
	r.save("crossplatform_valence_trend", func() render.Renderer {
		return render.ValenceTrend("Cross-Platform Popularity vs Valence (Normalized)", sp, yt)
	})
	return nil
}

// MoodPopularity compares balanced per-mood samples of log popularity.
func (r *Runner) MoodPopularity() error {
	var err error
	r.sum.SpotifyMood, err = analysis.SummarizeMoodPopularity(r.table, ColMood, ColLogStream, r.opt.SampleCap, r.opt.Seed)
	if err != nil {
		return err
	}
	r.sum.YouTubeMood, err = analysis.SummarizeMoodPopularity(r.table, ColMood, ColLogViews, r.opt.SampleCap, r.opt.Seed)
	if err != nil {
		return err
	}
	r.out.Section("Popularity by mood")
	r.out.Categories("Mood distribution (all rows)", analysis.CountBy(r.table, ColMood))
	r.out.MoodPopularity("Spotify sample", r.sum.SpotifyMood)
	r.out.MoodPopularity("YouTube sample", r.sum.YouTubeMood)
	r.save("pop_by_mood", func() render.Renderer {
		return render.MoodPopularity(r.opt.SampleCap,
			render.MoodSeries{Name: "Spotify (balanced)", Pop: r.sum.SpotifyMood},
			render.MoodSeries{Name: "YouTube (balanced)", Pop: r.sum.YouTubeMood})
	})
	return nil
}

// OverviewClusters clusters complete rows on audio features. Too few rows
// skips the stage's charts instead of failing the run.
func (r *Runner) OverviewClusters() error {
	names := []string{"elbow_k", "clusters_pca", "avg_pop_by_cluster"}
	r.out.Section("Clustering overview")
	res, err := cluster.Overview(r.table, r.opt.clusterOptions(r.opt.OverviewInits))
	if err != nil {
		if !errors.Is(err, cluster.ErrTooFewRows) {
			return err
		}
		r.log.Warnw("overview clustering skipped", "error", err)
		r.skip(err, names...)
		return nil
	}
	if err := res.Attach(r.table, ""); err != nil {
		return err
	}
	r.sum.Overview = res
	r.out.Elbow(res)
	r.out.Projection(res)
	r.out.Profiles(res)
	r.save(names[0], func() render.Renderer { return render.Elbow(res) })
	r.save(names[1], func() render.Renderer { return render.ClusterScatter("Song Clusters (PCA Projection)", res) })
	r.save(names[2], func() render.Renderer { return render.PopularityByCluster(res) })
	return nil
}

// PlatformClusters clusters Spotify rows (Stream observed) and YouTube rows
// (Views observed) separately with median-filled features. Naming platforms
// restricts the stage to them.
func (r *Runner) PlatformClusters(only ...string) error {
	want := map[string]bool{}
	for _, p := range only {
		want[p] = true
	}
	r.out.Section("Platform clustering")
	var panels []render.PlatformPanel
	var skipped []error
	for _, p := range []struct {
		name, metric, suffix, title string
		palette                     []string
		dst                         **cluster.Result
	}{
		{"spotify", impute.ColStream, "_sp", "Spotify", render.BlueGreen, &r.sum.Spotify},
		{"youtube", impute.ColViews, "_yt", "YouTube", render.OrangeRed, &r.sum.YouTube},
	} {
		if len(want) > 0 && !want[p.name] {
			continue
		}
		res, err := cluster.Platform(r.table, p.name, p.metric, r.opt.clusterOptions(r.opt.PlatformInits))
		if err != nil {
			if !errors.Is(err, cluster.ErrTooFewRows) {
				return err
			}
			r.log.Warnw("platform clustering skipped", "platform", p.name, "error", err)
			skipped = append(skipped, err)
			continue
		}
		if len(res.Unobserved) > 0 {
			r.log.Warnw("features have no observed values, clustered as constant zero", "platform", p.name, "features", res.Unobserved)
		}
		if err := res.Attach(r.table, p.suffix); err != nil {
			return err
		}
		*p.dst = res
		r.out.Elbow(res)
		r.out.Projection(res)
		r.out.Profiles(res)
		panels = append(panels, render.PlatformPanel{Title: p.title, Result: res, Palette: p.palette})
	}
	if len(panels) == 0 {
		r.skip(errors.Join(skipped...), "cluster_feature_heatmaps", "pca_platforms")
		return nil
	}
	for i := range panels {
		panels[i].Title += " Cluster Feature Means"
	}
	r.save("cluster_feature_heatmaps", func() render.Renderer { return render.ProfileHeatmaps(panels...) })
	scatter := make([]render.PlatformPanel, len(panels))
	for i, p := range panels {
		scatter[i] = p
		scatter[i].Title = p.Result.Name + " clusters (PCA projection)"
	}
	r.save("pca_platforms", func() render.Renderer { return render.PlatformScatters(scatter...) })
	return nil
}

// Correlations relates audio features to popularity and to YouTube
// interactions. Missing columns skip the affected table.
func (r *Runner) Correlations() error {
	r.out.Section("Feature correlations")
	pc, err := analysis.Correlate(r.table, CorrelationFeatures, []string{impute.ColStream, impute.ColViews})
	if err != nil {
		if !errors.Is(err, dataset.ErrMissingColumn) {
			return err
		}
		r.log.Warnw("popularity correlations skipped", "error", err)
		r.skip(err, "feature_pop_corr")
	} else {
		r.sum.PlatformCorr = pc
		r.out.Correlations("Feature vs popularity (Pearson r)", pc)
		r.save("feature_pop_corr", func() render.Renderer {
			return render.CorrelationBars("Feature-Popularity Correlation by Platform", pc)
		})
	}

	ic, err := analysis.Correlate(r.table, []string{impute.ColLikes, ColComments}, CorrelationFeatures)
	if err != nil {
		if !errors.Is(err, dataset.ErrMissingColumn) {
			return err
		}
		r.log.Warnw("interaction correlations skipped", "error", err)
		r.skip(err, "yt_interaction_vs_features")
		return nil
	}
	r.sum.InteractionCorr = ic
	r.out.Correlations("YouTube interaction vs audio features (Pearson r)", ic)
	r.save("yt_interaction_vs_features", func() render.Renderer {
		return render.CorrelationHeatmap("YouTube Interaction vs Audio Features", ic)
	})
	return nil
}

// WriteRepaired writes the table to RepairedPath if one is set.
func (r *Runner) WriteRepaired() error {
	if r.opt.RepairedPath == "" {
		return nil
	}
	f, err := utils.CreateAtomic(r.opt.RepairedPath)
	if err != nil {
		return err
	}
	if err := r.table.WriteCSV(f); err != nil {
		f.Abort()
		return fmt.Errorf("write repaired csv: %w", err)
	}
	if err := f.Commit(); err != nil {
		return err
	}
	r.sum.RepairedPath = r.opt.RepairedPath
	r.log.Infow("wrote repaired table", "path", r.opt.RepairedPath)
	return nil
}

func (r *Runner) finish() error {
	if r.art == nil {
		return nil
	}
	path, err := r.art.WriteManifest()
	if err != nil {
		return err
	}
	r.sum.Manifest = path
	r.sum.RunID = r.art.RunID()
	m := r.art.Manifest()
	r.log.Infow("artifacts written", "run_id", r.sum.RunID, "dir", r.art.Dir(), "saved", len(m.Saved), "skipped", len(m.Skipped))
	return nil
}

// save builds and writes one chart when charts are enabled.
func (r *Runner) save(name string, build func() render.Renderer) {
	if r.art == nil {
		return
	}
	_ = r.art.Save(name, build())
}

func (r *Runner) skip(reason error, names ...string) {
	if r.art == nil {
		return
	}
	for _, n := range names {
		r.art.Skip(n, reason)
	}
}
