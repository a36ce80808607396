package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/rankedinc-cli/internal/config"
	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	// Logging flags (override config if set)
	flagLogLevel  string
	flagLogFormat string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int
	flagLocale           string

	// Loaded configuration
	cfg *cfgpkg.Global
	// cfgErr keeps the load failure so commands that need a metric table can
	// report it instead of running with defaults.
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "rankedinc",
	Short: "rankedinc: rank French listed companies within their sector",
	Long: `rankedinc ingests a table of company fundamentals, ranks the companies of a
sector with a weighted multi-factor score and compares sector averages with
the whole market.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.rankedinc/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLocale, "locale", "", "number formatting locale, e.g. en or fr (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config commands still run
		cfgErr = err
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	cfgErr = nil

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if f.Changed("locale") && flagLocale != "" {
		cfg.Locale = flagLocale
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logger setup: %v\n", err)
	}
}

// requireConfig returns the loaded configuration, loading it when the command
// runs outside Execute (tests drive rootCmd directly).
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil && cfgErr == nil {
		loadConfig()
	}
	if cfgErr != nil {
		return nil, cfgErr
	}
	return cfg, nil
}
