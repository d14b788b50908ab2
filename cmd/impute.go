package cmd

import (
	"fmt"

	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var impOutputPath string

var imputeCmd = &cobra.Command{
	Use:   "impute <csv>",
	Short: "Fill missing Likes and Stream values by ratio estimation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args[0])
		if err != nil {
			return err
		}
		opt.RepairedPath = impOutputPath
		r := pipeline.NewRunner(opt, cmd.OutOrStdout(), logger)
		if err := r.Load(); err != nil {
			return err
		}
		if err := r.Impute(); err != nil {
			return err
		}
		if err := r.WriteRepaired(); err != nil {
			return err
		}
		if impOutputPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote repaired table to %s\n", impOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(imputeCmd)
	imputeCmd.Flags().StringVarP(&impOutputPath, "output", "o", "", "optional path to write the repaired table (CSV)")
	addParseFlags(imputeCmd)
}
