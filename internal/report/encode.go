package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/aggregate"
	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/KaramelBytes/rankedinc-cli/internal/normalize"
	"github.com/KaramelBytes/rankedinc-cli/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Encode.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatCSV      = "csv"
)

// ParseFormat normalizes a --format value.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use markdown|json|yaml|csv)", s)
	}
}

// CompanyDoc is the serialized form of one record.
type CompanyDoc struct {
	Rank    int                              `json:"rank,omitempty" yaml:"rank,omitempty"`
	Name    string                           `json:"name" yaml:"name"`
	Sector  string                           `json:"sector" yaml:"sector"`
	Score   float64                          `json:"score,omitempty" yaml:"score,omitempty"`
	Metrics map[company.Metric]company.Value `json:"metrics" yaml:"metrics"`
}

// SectorDoc is the serialized sector analysis.
type SectorDoc struct {
	Meta        Meta             `json:"meta" yaml:"meta"`
	Sector      string           `json:"sector" yaml:"sector"`
	Ranking     []CompanyDoc     `json:"ranking,omitempty" yaml:"ranking,omitempty"`
	SectorMeans aggregate.Vector `json:"sector_means,omitempty" yaml:"sector_means,omitempty"`
	MarketMeans aggregate.Vector `json:"market_means,omitempty" yaml:"market_means,omitempty"`
}

// OverviewDoc is the serialized cross-sector comparison.
type OverviewDoc struct {
	Meta              Meta                        `json:"meta" yaml:"meta"`
	Sectors           map[string]aggregate.Vector `json:"sectors" yaml:"sectors"`
	GrandMean         aggregate.Vector            `json:"grand_mean" yaml:"grand_mean"`
	SectorMeanAverage aggregate.Vector            `json:"sector_mean_average" yaml:"sector_mean_average"`
}

// RecordsDoc is the serialized normalized table.
type RecordsDoc struct {
	Meta      Meta         `json:"meta" yaml:"meta"`
	Companies []CompanyDoc `json:"companies" yaml:"companies"`
}

// NewSectorDoc converts a sector analysis.
func NewSectorDoc(meta Meta, sa pipeline.SectorAnalysis) SectorDoc {
	doc := SectorDoc{
		Meta:        meta,
		Sector:      sa.Sector,
		Ranking:     make([]CompanyDoc, 0, len(sa.Ranking)),
		SectorMeans: sa.SectorMeans,
		MarketMeans: sa.MarketMeans,
	}
	for _, e := range sa.Ranking {
		doc.Ranking = append(doc.Ranking, CompanyDoc{Rank: e.Rank, Name: e.Name, Sector: e.Sector, Score: e.Score, Metrics: e.Metrics})
	}
	return doc
}

// NewOverviewDoc converts a cross-sector overview.
func NewOverviewDoc(meta Meta, o aggregate.Overview) OverviewDoc {
	return OverviewDoc{Meta: meta, Sectors: o.Sectors, GrandMean: o.GrandMean, SectorMeanAverage: o.SectorMeanAverage}
}

// NewRecordsDoc converts normalized records.
func NewRecordsDoc(meta Meta, records []company.Record) RecordsDoc {
	doc := RecordsDoc{Meta: meta, Companies: make([]CompanyDoc, 0, len(records))}
	for _, r := range records {
		doc.Companies = append(doc.Companies, CompanyDoc{Name: r.Name, Sector: r.Sector, Metrics: r.Metrics})
	}
	return doc
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %s cannot encode documents", format)
	}
}

// WriteRecordsCSV writes the normalized table with '.' decimals and empty
// absent cells. The output reads back through the normal ingestion path.
func WriteRecordsCSV(w io.Writer, records []company.Record) error {
	raw := normalize.ToRaw(records)
	cw := csv.NewWriter(w)
	header := append([]string{company.NameColumn}, raw.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, row := range raw.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Name)
		for _, c := range raw.Columns {
			rec = append(rec, row.Cells[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
