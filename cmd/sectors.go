package cmd

import (
	"io"

	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
)

var sectorsData datasetFlags

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "List the sectors available for ranking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(sectorsData.format)
		if err != nil {
			return err
		}
		if format == report.FormatCSV {
			return errCSVOnlyForExport
		}
		f, err := sectorsData.formatter()
		if err != nil {
			return err
		}
		ds, label, err := sectorsData.load(cmd.Context())
		if err != nil {
			return err
		}
		meta := report.NewMeta(label, ds.Len())
		return sectorsData.emit(cmd, func(w io.Writer) error {
			if format != report.FormatMarkdown {
				return report.Encode(w, format, struct {
					Meta    report.Meta `json:"meta" yaml:"meta"`
					Sectors []string    `json:"sectors" yaml:"sectors"`
				}{meta, ds.Sectors()})
			}
			return report.SectorList(w, meta, ds.Records(), f)
		})
	},
}

func init() {
	rootCmd.AddCommand(sectorsCmd)
	sectorsData.register(sectorsCmd, "markdown|json|yaml", report.FormatMarkdown)
}
