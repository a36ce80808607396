// Package source acquires the raw company table: local CSV or XLSX files and
// the published Google Sheets CSV export. It only produces text; parsing
// numbers is the normalizer's job.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// ErrNoNameColumn indicates the header lacks the company name column.
var ErrNoNameColumn = errors.New("missing company name column")

// IgnoredColumns are sheet columns unused by the analysis.
var IgnoredColumns = []string{"BPA", "Ticker Google", "Ticker", "dividende"}

// keepColumn drops spreadsheet filler columns and the ignored ones.
func keepColumn(name string) bool {
	if name == "" || strings.Contains(name, "Unnamed") {
		return false
	}
	for _, ig := range IgnoredColumns {
		if name == ig {
			return false
		}
	}
	return true
}

// buildTable turns a header and rows of cells into a RawTable keyed by the
// company name column. Blank rows are skipped.
func buildTable(header []string, rows [][]string) (company.RawTable, error) {
	nameIdx := -1
	var cols []string
	keep := make([]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		header[i] = h
		if h == company.NameColumn {
			nameIdx = i
			continue
		}
		if keepColumn(h) {
			keep[i] = true
			cols = append(cols, h)
		}
	}
	if nameIdx < 0 {
		return company.RawTable{}, ErrNoNameColumn
	}
	t := company.RawTable{Columns: cols, Rows: make([]company.RawRow, 0, len(rows))}
	for ri, rec := range rows {
		if blank(rec) {
			continue
		}
		name := ""
		if nameIdx < len(rec) {
			name = strings.TrimSpace(rec[nameIdx])
		}
		if name == "" {
			return company.RawTable{}, fmt.Errorf("row %d: empty company name", ri+2)
		}
		cells := make(map[string]string, len(cols))
		for j, h := range header {
			if !keep[j] {
				continue
			}
			if j < len(rec) {
				cells[h] = rec[j]
			} else {
				cells[h] = ""
			}
		}
		t.Rows = append(t.Rows, company.RawRow{Name: name, Cells: cells})
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
