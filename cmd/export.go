package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
)

var exportData datasetFlags

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the normalized company table as CSV, JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(exportData.format)
		if err != nil {
			return err
		}
		if format == report.FormatMarkdown {
			return fmt.Errorf("export supports csv|json|yaml, got %s", exportData.format)
		}
		ds, label, err := exportData.load(cmd.Context())
		if err != nil {
			return err
		}
		records := ds.Records()
		meta := report.NewMeta(label, len(records))
		return exportData.emit(cmd, func(w io.Writer) error {
			if format == report.FormatCSV {
				return report.WriteRecordsCSV(w, records)
			}
			return report.Encode(w, format, report.NewRecordsDoc(meta, records))
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportData.register(exportCmd, "csv|json|yaml", report.FormatCSV)
}
