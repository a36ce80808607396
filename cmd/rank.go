package cmd

import (
	"io"

	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
	"github.com/KaramelBytes/rankedinc-cli/internal/pipeline"
	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	rankData    datasetFlags
	rankCompare bool
)

var rankCmd = &cobra.Command{
	Use:   "rank <sector>",
	Short: "Rank the companies of a sector by weighted score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector := args[0]
		format, err := report.ParseFormat(rankData.format)
		if err != nil {
			return err
		}
		if format == report.FormatCSV {
			return errCSVOnlyForExport
		}
		f, err := rankData.formatter()
		if err != nil {
			return err
		}
		ds, label, err := rankData.load(cmd.Context())
		if err != nil {
			return err
		}
		if !ds.HasSector(sector) {
			logger.WithComponent("cmd").Warn("no data for sector", "sector", sector, "available", ds.Sectors())
		}

		sa := pipeline.SectorAnalysis{Sector: sector, Ranking: ds.Rank(sector)}
		if rankCompare {
			sa = ds.SectorAnalysis(sector)
		}
		meta := report.NewMeta(label, ds.Len())
		return rankData.emit(cmd, func(w io.Writer) error {
			if format != report.FormatMarkdown {
				return report.Encode(w, format, report.NewSectorDoc(meta, sa))
			}
			if rankCompare {
				return report.SectorMarkdown(w, meta, sa, f)
			}
			return report.RankingMarkdown(w, meta, sa, f)
		})
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankData.register(rankCmd, "markdown|json|yaml", report.FormatMarkdown)
	rankCmd.Flags().BoolVar(&rankCompare, "compare", false, "append the sector vs market comparison")
}
