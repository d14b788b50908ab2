package cmd

import (
	cfgpkg "github.com/KaramelBytes/songlens-cli/internal/config"
	"github.com/KaramelBytes/songlens-cli/internal/dataset"
	"github.com/KaramelBytes/songlens-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

// Parsing flags shared by every command that reads a CSV.
var (
	flagDelimiter string
	flagDecimal   string
	flagThousands string
)

func addParseFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (auto-detect if omitted)")
	c.Flags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	c.Flags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
}

// pipelineOptions merges configuration with the parsing flags of c.
func pipelineOptions(c *cobra.Command, input string) (pipeline.Options, error) {
	opt := pipeline.DefaultOptions()
	conf, err := loadedConfig()
	if err != nil {
		return opt, err
	}
	applyConfig(&opt, conf)
	opt.Input = input

	delim, dec, thou := conf.Delimiter, conf.DecimalSeparator, conf.ThousandsSeparator
	if c.Flags().Changed("delimiter") {
		delim = flagDelimiter
	}
	if c.Flags().Changed("decimal") {
		dec = flagDecimal
	}
	if c.Flags().Changed("thousands") {
		thou = flagThousands
	}
	if opt.Load.Delimiter, err = cfgpkg.ParseDelimiter(delim); err != nil {
		return opt, err
	}
	var parse dataset.ParseOptions
	if parse.DecimalSeparator, err = cfgpkg.ParseDecimal(dec); err != nil {
		return opt, err
	}
	if parse.ThousandsSeparator, err = cfgpkg.ParseThousands(thou); err != nil {
		return opt, err
	}
	opt.Load.Parse = parse
	return opt, nil
}

func applyConfig(opt *pipeline.Options, c *cfgpkg.Global) {
	opt.OutputDir = c.OutputDir
	opt.Charts = c.Charts
	opt.Seed = c.Seed
	opt.Clusters = c.Clusters
	opt.KMin, opt.KMax = c.KMin, c.KMax
	opt.OverviewInits = c.OverviewInits
	opt.PlatformInits = c.PlatformInits
	opt.MaxIter = c.MaxIter
	opt.SampleCap = c.SampleCap
	opt.MissingMaxRows = c.MissingMaxRows
}
