package cmd

import (
	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <csv>",
	Short: "Print Pearson correlations between audio features and popularity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args[0])
		if err != nil {
			return err
		}
		opt.Charts = false
		r := pipeline.NewRunner(opt, cmd.OutOrStdout(), logger)
		if err := r.Load(); err != nil {
			return err
		}
		if err := r.Impute(); err != nil {
			return err
		}
		return r.Correlations()
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	addParseFlags(correlateCmd)
}
