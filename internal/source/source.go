package source

import (
	"context"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// Input selects where the raw table comes from. Path wins over SheetID; with
// neither, the locator resolves the sheet ID.
type Input struct {
	// Path is a local .csv/.tsv/.xlsx file or an http(s) URL serving CSV.
	Path string
	// SheetID is a Google Sheet ID.
	SheetID string
	// SheetName selects the worksheet (Google export or XLSX).
	SheetName string
	// SheetIndex is the 1-based XLSX worksheet used without SheetName.
	SheetIndex int
	// Delimiter for CSV files; 0 sniffs.
	Delimiter rune
}

// Load acquires the raw table described by in.
func Load(ctx context.Context, in Input, f *Fetcher, locate LocatorFunc) (company.RawTable, error) {
	lower := strings.ToLower(in.Path)
	switch {
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return f.FetchCSV(ctx, in.Path)
	case strings.HasSuffix(lower, ".xlsx"):
		return ReadXLSXFile(in.Path, in.SheetName, in.SheetIndex)
	case in.Path != "":
		return ReadCSVFile(in.Path, in.Delimiter)
	case in.SheetID != "":
		return f.FetchSheet(ctx, StaticLocator(in.SheetID), in.SheetName)
	default:
		if locate == nil {
			locate = LoadDatasetLocator
		}
		return f.FetchSheet(ctx, locate, in.SheetName)
	}
}
