package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SONGLENS_SEED.
const EnvPrefix = "SONGLENS"

// Global configuration structure.
type Global struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Seed      uint64 `mapstructure:"seed" yaml:"seed"`

	// Clustering
	Clusters      int `mapstructure:"clusters" yaml:"clusters"`
	KMin          int `mapstructure:"k_min" yaml:"k_min"`
	KMax          int `mapstructure:"k_max" yaml:"k_max"`
	OverviewInits int `mapstructure:"overview_inits" yaml:"overview_inits"`
	PlatformInits int `mapstructure:"platform_inits" yaml:"platform_inits"`
	MaxIter       int `mapstructure:"max_iter" yaml:"max_iter"`

	SampleCap      int `mapstructure:"sample_cap" yaml:"sample_cap"`
	MissingMaxRows int `mapstructure:"missing_max_rows" yaml:"missing_max_rows"`

	// CSV parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	Charts bool `mapstructure:"charts" yaml:"charts"`
}

// Keys lists the configuration keys in display order.
var Keys = []string{
	"output_dir", "seed", "clusters", "k_min", "k_max", "overview_inits",
	"platform_inits", "max_iter", "sample_cap", "missing_max_rows",
	"delimiter", "decimal_separator", "thousands_separator", "charts",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "information")
	v.SetDefault("seed", 42)
	v.SetDefault("clusters", 4)
	v.SetDefault("k_min", 2)
	v.SetDefault("k_max", 8)
	v.SetDefault("overview_inits", 1)
	v.SetDefault("platform_inits", 10)
	v.SetDefault("max_iter", 300)
	v.SetDefault("sample_cap", 2500)
	v.SetDefault("missing_max_rows", 30)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("charts", true)
}

// DefaultPath returns ~/.songlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".songlens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.songlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
// A .env file in the working directory is read first if present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.Clusters < 1:
		return fmt.Errorf("clusters must be >= 1, got %d", c.Clusters)
	case c.KMin < 1:
		return fmt.Errorf("k_min must be >= 1, got %d", c.KMin)
	case c.SampleCap < 0:
		return fmt.Errorf("sample_cap must be >= 0, got %d", c.SampleCap)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if _, err := ParseDecimal(c.DecimalSeparator); err != nil {
		return err
	}
	if _, err := ParseThousands(c.ThousandsSeparator); err != nil {
		return err
	}
	return nil
}

// ParseDelimiter maps a delimiter setting to its rune. Empty means
// auto-detect: tab for .tsv files, otherwise sniffed from the header.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ','|';'|'|'|'tab')", s)
}

// ParseDecimal maps a decimal separator setting to its rune; '.' by default.
func ParseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ".", "dot":
		return '.', nil
	case ",", "comma":
		return ',', nil
	}
	return 0, fmt.Errorf("unsupported decimal separator: %q (use '.'|'comma')", s)
}

// ParseThousands maps a thousands separator setting to its rune; 0 means none.
func ParseThousands(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case "space", " ":
		return ' ', nil
	}
	return 0, fmt.Errorf("unsupported thousands separator: %q (use ','|'.'|'space')", s)
}

// Set assigns one key from its string form, as typed on the command line.
func (c *Global) Set(key, value string) error {
	atoi := func(dst *int) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, value)
		}
		*dst = i
		return nil
	}
	var err error
	switch key {
	case "output_dir":
		c.OutputDir = value
	case "seed":
		seed, perr := strconv.ParseUint(value, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid seed: %v", value)
		}
		c.Seed = seed
	case "clusters":
		err = atoi(&c.Clusters)
	case "k_min":
		err = atoi(&c.KMin)
	case "k_max":
		err = atoi(&c.KMax)
	case "overview_inits":
		err = atoi(&c.OverviewInits)
	case "platform_inits":
		err = atoi(&c.PlatformInits)
	case "max_iter":
		err = atoi(&c.MaxIter)
	case "sample_cap":
		err = atoi(&c.SampleCap)
	case "missing_max_rows":
		err = atoi(&c.MissingMaxRows)
	case "delimiter":
		c.Delimiter = value
	case "decimal_separator":
		c.DecimalSeparator = value
	case "thousands_separator":
		c.ThousandsSeparator = value
	case "charts":
		b, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid bool for charts: %v", value)
		}
		c.Charts = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return err
	}
	return c.Validate()
}

// Get returns the string form of one key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "output_dir":
		return c.OutputDir, nil
	case "seed":
		return fmt.Sprint(c.Seed), nil
	case "clusters":
		return fmt.Sprint(c.Clusters), nil
	case "k_min":
		return fmt.Sprint(c.KMin), nil
	case "k_max":
		return fmt.Sprint(c.KMax), nil
	case "overview_inits":
		return fmt.Sprint(c.OverviewInits), nil
	case "platform_inits":
		return fmt.Sprint(c.PlatformInits), nil
	case "max_iter":
		return fmt.Sprint(c.MaxIter), nil
	case "sample_cap":
		return fmt.Sprint(c.SampleCap), nil
	case "missing_max_rows":
		return fmt.Sprint(c.MissingMaxRows), nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "charts":
		return fmt.Sprint(c.Charts), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
