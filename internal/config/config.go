package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/rankedinc-cli/internal/normalize"
	"github.com/KaramelBytes/rankedinc-cli/internal/ranking"
	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/KaramelBytes/rankedinc-cli/internal/source"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Dataset location
	SheetID    string `mapstructure:"sheet_id" yaml:"sheet_id"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	DotenvPath string `mapstructure:"dotenv_path" yaml:"dotenv_path"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Normalization
	Sentinel         string  `mapstructure:"sentinel" yaml:"sentinel"`
	DecimalSeparator string  `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	MinPER           float64 `mapstructure:"min_per" yaml:"min_per"`
	MaxAbsMargin     float64 `mapstructure:"max_abs_margin" yaml:"max_abs_margin"`
	RequireGuards    bool    `mapstructure:"require_guards" yaml:"require_guards"`

	// Reporting
	Locale string `mapstructure:"locale" yaml:"locale"`

	Metrics []ranking.MetricSpec `mapstructure:"metrics" yaml:"metrics"`
}

// Dir returns ~/.rankedinc.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".rankedinc"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.rankedinc/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
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
// Precedence: flags (cfgFile) > env > config file > defaults.
// The metric table is validated; an invalid table fails the load.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("RANKEDINC")
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sheet_id", "")
	v.SetDefault("sheet_name", source.DefaultSheetName)
	v.SetDefault("dotenv_path", ".env")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Normalization defaults
	v.SetDefault("sentinel", normalize.DefaultSentinel)
	v.SetDefault("decimal_separator", ",")
	v.SetDefault("min_per", 0.0)
	v.SetDefault("max_abs_margin", float64(normalize.MaxMargin))
	v.SetDefault("require_guards", true)
	v.SetDefault("locale", "en")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !(cfgFile != "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Metrics) == 0 {
		c.Metrics = ranking.DefaultSpecs()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the metric table and the scalar settings.
func (c *Global) Validate() error {
	if err := ranking.ValidateSpecs(c.Metrics); err != nil {
		return err
	}
	if sep := []rune(c.DecimalSeparator); len(sep) > 1 {
		return fmt.Errorf("%w: decimal_separator must be a single character, got %q", ranking.ErrInvalidConfig, c.DecimalSeparator)
	}
	// Filter overrides may only tighten PER > 0 and |margin| < 100.
	if !(c.MinPER >= 0) {
		return fmt.Errorf("%w: min_per must be >= 0, got %v", ranking.ErrInvalidConfig, c.MinPER)
	}
	if !(c.MaxAbsMargin > 0 && c.MaxAbsMargin <= normalize.MaxMargin) {
		return fmt.Errorf("%w: max_abs_margin must be in (0, %d], got %v", ranking.ErrInvalidConfig, normalize.MaxMargin, c.MaxAbsMargin)
	}
	if _, err := report.NewFormatter(c.Locale); err != nil {
		return fmt.Errorf("%w: %v", ranking.ErrInvalidConfig, err)
	}
	return nil
}

// NormalizeOptions converts the normalization settings.
func (c *Global) NormalizeOptions() normalize.Options {
	opt := normalize.DefaultOptions()
	if s := strings.TrimSpace(c.Sentinel); s != "" {
		opt.Sentinel = s
	}
	if sep := []rune(c.DecimalSeparator); len(sep) == 1 {
		opt.DecimalSeparator = sep[0]
	}
	opt.Filter = normalize.FilterPolicy{MinPER: c.MinPER, MaxAbsMargin: c.MaxAbsMargin, RequireGuards: c.RequireGuards}
	return opt
}

// Fetcher builds the HTTP fetcher from the retry settings.
func (c *Global) Fetcher() *source.Fetcher {
	return source.NewFetcher(
		time.Duration(c.HTTPTimeoutSec)*time.Second,
		c.RetryMaxAttempts,
		time.Duration(c.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(c.RetryMaxDelayMs)*time.Millisecond,
	)
}
