package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	cfgpkg "github.com/KaramelBytes/rankedinc-cli/internal/config"
	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set rankedinc configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file and metric table",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration valid (%d ranked metrics)\n", len(c.Metrics))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

Metric weights and directions are set with keys of the form
metric.<column>.weight and metric.<column>.ascending, e.g.
  rankedinc config set metric.PER.weight 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := applySetting(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	if strings.HasPrefix(key, "metric.") {
		return applyMetricSetting(c, strings.TrimPrefix(key, "metric."), val)
	}
	switch key {
	case "log_level":
		if _, err := logger.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = val
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "sheet_id":
		c.SheetID = val
	case "sheet_name":
		c.SheetName = val
	case "dotenv_path":
		c.DotenvPath = val
	case "locale":
		if _, err := report.NewFormatter(val); err != nil {
			return err
		}
		c.Locale = val
	case "sentinel":
		c.Sentinel = val
	case "decimal_separator":
		c.DecimalSeparator = val
	case "require_guards":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for require_guards: %v", val)
		}
		c.RequireGuards = b
	case "min_per", "max_abs_margin":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		if key == "min_per" {
			c.MinPER = f
		} else {
			c.MaxAbsMargin = f
		}
	case "http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "http_timeout_sec":
			c.HTTPTimeoutSec = i
		case "retry_max_attempts":
			c.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			c.RetryBaseDelayMs = i
		default:
			c.RetryMaxDelayMs = i
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// applyMetricSetting handles "<column>.weight" and "<column>.ascending".
func applyMetricSetting(c *cfgpkg.Global, rest, val string) error {
	i := strings.LastIndex(rest, ".")
	if i <= 0 {
		return fmt.Errorf("invalid metric key: metric.%s (use metric.<column>.weight|ascending)", rest)
	}
	name, field := company.Metric(rest[:i]), rest[i+1:]
	for j := range c.Metrics {
		if c.Metrics[j].Metric != name {
			continue
		}
		switch field {
		case "weight":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for weight: %w", err)
			}
			c.Metrics[j].Weight = f
		case "ascending":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for ascending: %v", val)
			}
			c.Metrics[j].Ascending = b
		default:
			return fmt.Errorf("unknown metric field: %s (use weight or ascending)", field)
		}
		return nil
	}
	return fmt.Errorf("metric %q is not ranked", name)
}
