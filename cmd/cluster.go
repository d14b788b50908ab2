package cmd

import (
	"fmt"

	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cluMode string
	cluK    int
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <csv>",
	Short: "Cluster tracks by audio features and print cluster profiles",
	Long: `Cluster tracks by audio features after imputation.

Modes:
  overview  rows with every feature and both popularity metrics observed
  spotify   rows with Stream observed, missing features median-filled
  youtube   rows with Views observed, missing features median-filled`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch cluMode {
		case "overview", "spotify", "youtube":
		default:
			return fmt.Errorf("unsupported --mode: %s (use overview|spotify|youtube)", cluMode)
		}
		opt, err := pipelineOptions(cmd, args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("k") {
			if cluK < 1 {
				return fmt.Errorf("invalid --k: %d", cluK)
			}
			opt.Clusters = cluK
		}
		opt.Charts = false
		r := pipeline.NewRunner(opt, cmd.OutOrStdout(), logger)
		if err := r.Load(); err != nil {
			return err
		}
		if err := r.Impute(); err != nil {
			return err
		}
		sum := r.Summary()
		switch cluMode {
		case "overview":
			if err := r.OverviewClusters(); err != nil {
				return err
			}
			if sum.Overview == nil {
				return fmt.Errorf("overview clustering: too few complete rows for k=%d", opt.Clusters)
			}
		default:
			if err := r.PlatformClusters(cluMode); err != nil {
				return err
			}
			if sum.Spotify == nil && sum.YouTube == nil {
				return fmt.Errorf("%s clustering: too few rows for k=%d", cluMode, opt.Clusters)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().StringVar(&cluMode, "mode", "overview", "clustering population: overview|spotify|youtube")
	clusterCmd.Flags().IntVar(&cluK, "k", 4, "number of clusters (overrides config)")
	addParseFlags(clusterCmd)
}
