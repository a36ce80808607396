package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/aggregate"
	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/KaramelBytes/rankedinc-cli/internal/pipeline"
)

func writeMeta(b *strings.Builder, meta Meta, f Formatter) {
	b.WriteString("[RUN]\n")
	if meta.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", meta.RunID))
	}
	if meta.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", meta.Source))
	}
	if !meta.Generated.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n", meta.Generated.Format("2006-01-02 15:04:05 MST")))
	}
	b.WriteString(fmt.Sprintf("Companies analysed: %s\n", f.Int(meta.Companies)))
}

func writeRanking(b *strings.Builder, sa pipeline.SectorAnalysis, f Formatter) {
	b.WriteString(fmt.Sprintf("\n[SECTOR RANKING] %s\n", sa.Sector))
	if len(sa.Ranking) == 0 {
		b.WriteString("No data for this sector.\n")
		return
	}
	header := []string{"Rank", "Company"}
	for _, m := range company.Metrics() {
		header = append(header, string(m))
	}
	header = append(header, "Score")
	rows := make([][]string, 0, len(sa.Ranking))
	for _, e := range sa.Ranking {
		row := []string{strconv.Itoa(e.Rank), e.Name}
		for _, m := range company.Metrics() {
			row = append(row, f.Value(e.Get(m)))
		}
		row = append(row, f.Float(e.Score))
		rows = append(rows, row)
	}
	b.WriteString(Table(header, rows))
}

func writeComparison(b *strings.Builder, sa pipeline.SectorAnalysis, f Formatter) {
	b.WriteString(fmt.Sprintf("\n[SECTOR VS MARKET] %s\n", sa.Sector))
	rows := make([][]string, 0, len(aggregate.ComparableMetrics()))
	for _, m := range aggregate.ComparableMetrics() {
		rows = append(rows, []string{string(m), f.Value(sa.SectorMeans[m]), f.Value(sa.MarketMeans[m])})
	}
	b.WriteString(Table([]string{"Metric", "Sector mean", "Market mean"}, rows))
}

// RankingMarkdown renders the ranking table of one sector.
func RankingMarkdown(w io.Writer, meta Meta, sa pipeline.SectorAnalysis, f Formatter) error {
	var b strings.Builder
	writeMeta(&b, meta, f)
	writeRanking(&b, sa, f)
	_, err := io.WriteString(w, b.String())
	return err
}

// ComparisonMarkdown renders the sector means next to the market means.
func ComparisonMarkdown(w io.Writer, meta Meta, sa pipeline.SectorAnalysis, f Formatter) error {
	var b strings.Builder
	writeMeta(&b, meta, f)
	writeComparison(&b, sa, f)
	_, err := io.WriteString(w, b.String())
	return err
}

// SectorMarkdown renders the ranking of one sector followed by its comparison
// with the market.
func SectorMarkdown(w io.Writer, meta Meta, sa pipeline.SectorAnalysis, f Formatter) error {
	var b strings.Builder
	writeMeta(&b, meta, f)
	writeRanking(&b, sa, f)
	writeComparison(&b, sa, f)
	_, err := io.WriteString(w, b.String())
	return err
}

// OverviewMarkdown renders one table per metric listing every sector's mean,
// with the reference lines beneath.
func OverviewMarkdown(w io.Writer, meta Meta, o aggregate.Overview, f Formatter) error {
	var b strings.Builder
	writeMeta(&b, meta, f)
	names := o.SectorNames()
	for _, m := range aggregate.ComparableMetrics() {
		b.WriteString(fmt.Sprintf("\n[%s] mean of sector means = %s, market mean = %s\n",
			m, f.Value(o.SectorMeanAverage[m]), f.Value(o.GrandMean[m])))
		rows := make([][]string, 0, len(names))
		for _, s := range names {
			rows = append(rows, []string{s, f.Value(o.Sectors[s][m])})
		}
		b.WriteString(Table([]string{"Sector", "Mean"}, rows))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// SectorList renders the selectable sectors with their company counts.
func SectorList(w io.Writer, meta Meta, records []company.Record, f Formatter) error {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Sector]++
	}
	var b strings.Builder
	writeMeta(&b, meta, f)
	b.WriteString("\n[SECTORS]\n")
	sectors := company.Sectors(records)
	if len(sectors) == 0 {
		b.WriteString("(no sectors)\n")
	}
	for _, s := range sectors {
		b.WriteString(fmt.Sprintf("- %s (%s)\n", s, f.Int(counts[s])))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
