package cmd

import (
	"errors"
	"io"

	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
	"github.com/KaramelBytes/rankedinc-cli/internal/pipeline"
	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
)

var errCSVOnlyForExport = errors.New("csv output is only available for export")

var compareData datasetFlags

var compareCmd = &cobra.Command{
	Use:   "compare <sector>",
	Short: "Compare a sector's mean metrics with the whole market",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector := args[0]
		format, err := report.ParseFormat(compareData.format)
		if err != nil {
			return err
		}
		if format == report.FormatCSV {
			return errCSVOnlyForExport
		}
		f, err := compareData.formatter()
		if err != nil {
			return err
		}
		ds, label, err := compareData.load(cmd.Context())
		if err != nil {
			return err
		}
		if !ds.HasSector(sector) {
			logger.WithComponent("cmd").Warn("no data for sector", "sector", sector)
		}
		s, m := ds.CompareSector(sector)
		sa := pipeline.SectorAnalysis{Sector: sector, SectorMeans: s, MarketMeans: m}
		meta := report.NewMeta(label, ds.Len())
		return compareData.emit(cmd, func(w io.Writer) error {
			if format != report.FormatMarkdown {
				return report.Encode(w, format, report.NewSectorDoc(meta, sa))
			}
			return report.ComparisonMarkdown(w, meta, sa, f)
		})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareData.register(compareCmd, "markdown|json|yaml", report.FormatMarkdown)
}
