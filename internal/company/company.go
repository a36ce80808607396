// Package company holds the data model shared by the normalizer, the ranker and
// the aggregate comparator: raw all-text rows as ingested and the typed records
// derived from them.
package company

import (
	"sort"
)

// Metric names a numeric column of the dataset. The string value is the column
// header used by the source spreadsheet.
type Metric string

const (
	Capitalisation Metric = "capitalisation"
	Price          Metric = "cours"
	DividendYield  Metric = "rendement dividende [%]"
	PayoutRatio    Metric = "payout ratio [%]"
	ROE            Metric = "ROE"
	ROA            Metric = "ROA"
	GrossMargin    Metric = "Marge Brute [%]"
	NetMargin      Metric = "Marge Nette [%]"
	PER            Metric = "PER"
	DebtToEquity   Metric = "Dette/Capitaux Propre [%]"
	ProfitGrowth   Metric = "Prog Profit [%]"
)

// Column headers that are not metrics.
const (
	NameColumn   = "Name"
	SectorColumn = "secteur"
)

// Metrics returns every numeric column in display order.
func Metrics() []Metric {
	return []Metric{
		Capitalisation, Price, DividendYield, PayoutRatio, ROE, ROA,
		GrossMargin, NetMargin, PER, DebtToEquity, ProfitGrowth,
	}
}

// IsMetric reports whether name is one of the numeric columns.
func IsMetric(name string) bool {
	for _, m := range Metrics() {
		if string(m) == name {
			return true
		}
	}
	return false
}

// RawRow is one ingested row: the company name plus untyped cells keyed by
// column header.
type RawRow struct {
	Name  string
	Cells map[string]string
}

// RawTable is the all-text table handed over by the ingestion layer. Columns
// lists headers in source order, excluding the name column.
type RawTable struct {
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the table carries the given header.
func (t RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Record is a normalized company row. Every metric is either numeric or Absent.
type Record struct {
	Name    string
	Sector  string
	Metrics map[Metric]Value
}

// Get returns the value of m, Absent when the record does not carry it.
func (r Record) Get(m Metric) Value {
	if r.Metrics == nil {
		return Absent
	}
	return r.Metrics[m]
}

// Clone returns a deep copy so callers can never alias another view's map.
func (r Record) Clone() Record {
	out := Record{Name: r.Name, Sector: r.Sector, Metrics: make(map[Metric]Value, len(r.Metrics))}
	for k, v := range r.Metrics {
		out.Metrics[k] = v
	}
	return out
}

// InSector returns copies of the records whose sector equals sector, preserving order.
func InSector(records []Record, sector string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Sector == sector {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Sectors returns the distinct sector labels, sorted.
func Sectors(records []Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		seen[r.Sector] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
