package cmd

import (
	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var missMaxRows int

var missingCmd = &cobra.Command{
	Use:   "missing <csv>",
	Short: "Report missing values per column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MissingMaxRows = missMaxRows
		}
		r := pipeline.NewRunner(opt, cmd.OutOrStdout(), logger)
		if err := r.Load(); err != nil {
			return err
		}
		r.ReportMissing("Missing values in " + r.Table().Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(missingCmd)
	missingCmd.Flags().IntVar(&missMaxRows, "max-rows", 30, "maximum columns listed (0 = all)")
	addParseFlags(missingCmd)
}
