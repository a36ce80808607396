// Package normalize turns the all-text table produced by ingestion into typed
// company records, applying the sheet's locale conventions and dropping rows
// that are economically or structurally invalid.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// DefaultSentinel is the token the source sheet uses for unavailable data.
const DefaultSentinel = "TBD"

// MaxMargin is the loosest margin bound a FilterPolicy may use.
const MaxMargin = 100

// Options controls parsing and filtering.
type Options struct {
	// Sentinel marks an unavailable cell. Empty means DefaultSentinel.
	Sentinel string
	// DecimalSeparator is rewritten to '.' before parsing. 0 means ','.
	DecimalSeparator rune
	// Filter is the row-level policy applied after parsing.
	Filter FilterPolicy
}

// FilterPolicy describes which parsed rows survive. Bounds may only tighten
// the base rule PER > 0 and |margin| < 100: a negative MinPER counts as 0 and
// a MaxAbsMargin that is zero or above 100 counts as 100.
type FilterPolicy struct {
	// MinPER is an exclusive lower bound on the price/earnings ratio.
	MinPER float64
	// MaxAbsMargin is an exclusive upper bound on |gross margin| and |net margin|.
	MaxAbsMargin float64
	// RequireGuards drops rows whose PER or margins are absent, since those
	// rows cannot be checked against the bounds above.
	RequireGuards bool
}

// DefaultOptions returns the conventions of the French fundamentals sheet.
func DefaultOptions() Options {
	return Options{
		Sentinel:         DefaultSentinel,
		DecimalSeparator: ',',
		Filter: FilterPolicy{
			MinPER:        0,
			MaxAbsMargin:  MaxMargin,
			RequireGuards: true,
		},
	}
}

// Stats summarizes one normalization pass.
type Stats struct {
	Rows          int
	Kept          int
	NoSector      int
	NonPositivePE int
	MarginRange   int
	MissingGuard  int
}

// Dropped returns how many rows were filtered out.
func (s Stats) Dropped() int { return s.Rows - s.Kept }

// Normalize parses and filters raw. It fails as a whole on the first malformed
// cell; no partial table is ever returned.
func Normalize(raw company.RawTable, opt Options) ([]company.Record, error) {
	recs, _, err := NormalizeWithStats(raw, opt)
	return recs, err
}

// NormalizeWithStats is Normalize plus drop counters.
func NormalizeWithStats(raw company.RawTable, opt Options) ([]company.Record, Stats, error) {
	var st Stats
	if opt.Sentinel == "" {
		opt.Sentinel = DefaultSentinel
	}
	if opt.DecimalSeparator == 0 {
		opt.DecimalSeparator = ','
	}
	opt.Filter = opt.Filter.bounded()
	if !raw.HasColumn(company.SectorColumn) {
		return nil, st, &MissingColumnError{Column: company.SectorColumn}
	}
	for _, m := range company.Metrics() {
		if !raw.HasColumn(string(m)) {
			return nil, st, &MissingColumnError{Column: string(m)}
		}
	}

	// Columns outside the schema must still be numeric; they are checked and
	// then discarded.
	var extra []string
	for _, c := range raw.Columns {
		if c != company.SectorColumn && !company.IsMetric(c) {
			extra = append(extra, c)
		}
	}

	seen := make(map[string]struct{}, len(raw.Rows))
	out := make([]company.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		st.Rows++
		name := strings.TrimSpace(row.Name)
		if _, dup := seen[name]; dup {
			return nil, st, &DuplicateKeyError{Name: name}
		}
		seen[name] = struct{}{}

		rec := company.Record{
			Name:    name,
			Sector:  strings.TrimSpace(row.Cells[company.SectorColumn]),
			Metrics: make(map[company.Metric]company.Value, len(company.Metrics())),
		}
		for _, m := range company.Metrics() {
			cell := row.Cells[string(m)]
			v, ok := parseCell(cell, opt)
			if !ok {
				return nil, st, &MalformedValueError{Column: string(m), Row: name, Value: cell}
			}
			rec.Metrics[m] = v
		}
		for _, c := range extra {
			if _, ok := parseCell(row.Cells[c], opt); !ok {
				return nil, st, &MalformedValueError{Column: c, Row: name, Value: row.Cells[c]}
			}
		}

		if rec.Sector == "" {
			st.NoSector++
			continue
		}
		if reason := opt.Filter.reject(rec); reason != keep {
			switch reason {
			case rejectPER:
				st.NonPositivePE++
			case rejectMargin:
				st.MarginRange++
			case rejectGuard:
				st.MissingGuard++
			}
			continue
		}
		out = append(out, rec)
	}
	st.Kept = len(out)
	return out, st, nil
}

// parseCell converts one metric cell. The bool is false for malformed text.
func parseCell(s string, opt Options) (company.Value, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == opt.Sentinel {
		return company.Absent, true
	}
	if opt.DecimalSeparator != '.' {
		raw = strings.ReplaceAll(raw, string(opt.DecimalSeparator), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return company.Absent, false
	}
	return company.Num(f), true
}

type rejection int

const (
	keep rejection = iota
	rejectPER
	rejectMargin
	rejectGuard
)

// bounded clamps p so it is never looser than PER > 0 and |margin| < 100.
func (p FilterPolicy) bounded() FilterPolicy {
	if !(p.MinPER >= 0) {
		p.MinPER = 0
	}
	if !(p.MaxAbsMargin > 0 && p.MaxAbsMargin <= MaxMargin) {
		p.MaxAbsMargin = MaxMargin
	}
	return p
}

func (p FilterPolicy) reject(r company.Record) rejection {
	per, perOK := r.Get(company.PER).Get()
	gross, grossOK := r.Get(company.GrossMargin).Get()
	net, netOK := r.Get(company.NetMargin).Get()
	if perOK && per <= p.MinPER {
		return rejectPER
	}
	if grossOK && math.Abs(gross) >= p.MaxAbsMargin {
		return rejectMargin
	}
	if netOK && math.Abs(net) >= p.MaxAbsMargin {
		return rejectMargin
	}
	if p.RequireGuards && (!perOK || !grossOK || !netOK) {
		return rejectGuard
	}
	return keep
}

// ToRaw renders clean records back to text with '.' decimals and absent cells
// left empty. Normalizing the result reproduces the records.
func ToRaw(records []company.Record) company.RawTable {
	cols := []string{company.SectorColumn}
	for _, m := range company.Metrics() {
		cols = append(cols, string(m))
	}
	t := company.RawTable{Columns: cols, Rows: make([]company.RawRow, 0, len(records))}
	for _, r := range records {
		cells := make(map[string]string, len(cols))
		cells[company.SectorColumn] = r.Sector
		for _, m := range company.Metrics() {
			cells[string(m)] = r.Get(m).String()
		}
		t.Rows = append(t.Rows, company.RawRow{Name: r.Name, Cells: cells})
	}
	return t
}
