package cmd

import (
	"fmt"

	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runOutDir    string
	runSeed      uint64
	runK         int
	runSampleCap int
	runNoCharts  bool
	runRepaired  string
)

var runCmd = &cobra.Command{
	Use:   "run <csv>",
	Short: "Run the full analysis and write charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("out-dir") {
			opt.OutputDir = runOutDir
		}
		if f.Changed("seed") {
			opt.Seed = runSeed
		}
		if f.Changed("k") {
			if runK < 1 {
				return fmt.Errorf("invalid --k: %d", runK)
			}
			opt.Clusters = runK
		}
		if f.Changed("sample-cap") {
			if runSampleCap < 0 {
				return fmt.Errorf("invalid --sample-cap: %d", runSampleCap)
			}
			opt.SampleCap = runSampleCap
		}
		if runNoCharts {
			opt.Charts = false
		}
		opt.RepairedPath = runRepaired

		sum, err := pipeline.NewRunner(opt, cmd.OutOrStdout(), logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n✓ Analyzed %d rows from %s\n", sum.Rows, args[0])
		if sum.Manifest != "" {
			fmt.Fprintf(out, "✓ Charts written to %s (manifest: %s)\n", opt.OutputDir, sum.Manifest)
		}
		if sum.RepairedPath != "" {
			fmt.Fprintf(out, "✓ Wrote repaired table to %s\n", sum.RepairedPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "directory for chart artifacts (overrides config)")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 42, "random seed for sampling and clustering (overrides config)")
	runCmd.Flags().IntVar(&runK, "k", 4, "number of clusters (overrides config)")
	runCmd.Flags().IntVar(&runSampleCap, "sample-cap", 2500, "rows sampled per mood and platform (overrides config)")
	runCmd.Flags().BoolVar(&runNoCharts, "no-charts", false, "skip chart artifacts")
	runCmd.Flags().StringVar(&runRepaired, "repaired", "", "optional path to write the repaired table (CSV)")
	addParseFlags(runCmd)
}
