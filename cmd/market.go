package cmd

import (
	"io"

	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
)

var marketData datasetFlags

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show every sector's mean per metric against the market",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(marketData.format)
		if err != nil {
			return err
		}
		if format == report.FormatCSV {
			return errCSVOnlyForExport
		}
		f, err := marketData.formatter()
		if err != nil {
			return err
		}
		ds, label, err := marketData.load(cmd.Context())
		if err != nil {
			return err
		}
		o := ds.CompareAll()
		meta := report.NewMeta(label, ds.Len())
		return marketData.emit(cmd, func(w io.Writer) error {
			if format != report.FormatMarkdown {
				return report.Encode(w, format, report.NewOverviewDoc(meta, o))
			}
			return report.OverviewMarkdown(w, meta, o, f)
		})
	},
}

func init() {
	rootCmd.AddCommand(marketCmd)
	marketData.register(marketCmd, "markdown|json|yaml", report.FormatMarkdown)
}
