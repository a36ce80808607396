// Package pipeline composes normalization, ranking and aggregation over one
// ingested table. Nothing here holds mutable state: a Dataset is read-only once
// loaded and every query builds a fresh result.
package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/rankedinc-cli/internal/aggregate"
	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/KaramelBytes/rankedinc-cli/internal/normalize"
	"github.com/KaramelBytes/rankedinc-cli/internal/ranking"
)

// Pipeline holds the static engine configuration.
type Pipeline struct {
	ranker *ranking.Ranker
	opt    normalize.Options
}

// New validates specs and returns a Pipeline. Nil specs select the default table.
func New(specs []ranking.MetricSpec, opt normalize.Options) (*Pipeline, error) {
	r, err := ranking.New(specs...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{ranker: r, opt: opt}, nil
}

// Load normalizes raw into a Dataset.
func (p *Pipeline) Load(raw company.RawTable) (*Dataset, error) {
	recs, st, err := normalize.NormalizeWithStats(raw, p.opt)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return &Dataset{records: recs, stats: st, ranker: p.ranker}, nil
}

// Dataset is a normalized, immutable record set.
type Dataset struct {
	records []company.Record
	stats   normalize.Stats
	ranker  *ranking.Ranker
}

// SectorAnalysis bundles the two views of one sector.
type SectorAnalysis struct {
	Sector      string
	Ranking     []ranking.Entry
	SectorMeans aggregate.Vector
	MarketMeans aggregate.Vector
}

// Len returns the number of companies that survived normalization.
func (d *Dataset) Len() int { return len(d.records) }

// Stats returns the normalization counters.
func (d *Dataset) Stats() normalize.Stats { return d.stats }

// Records returns a copy of the normalized records.
func (d *Dataset) Records() []company.Record {
	out := make([]company.Record, len(d.records))
	for i, r := range d.records {
		out[i] = r.Clone()
	}
	return out
}

// Sectors lists the distinct sector labels, sorted.
func (d *Dataset) Sectors() []string { return company.Sectors(d.records) }

// HasSector reports whether any record belongs to sector.
func (d *Dataset) HasSector(sector string) bool {
	for _, r := range d.records {
		if r.Sector == sector {
			return true
		}
	}
	return false
}

// Rank ranks the companies of sector.
func (d *Dataset) Rank(sector string) []ranking.Entry {
	return d.ranker.Rank(d.records, sector)
}

// CompareSector returns the sector and market mean vectors.
func (d *Dataset) CompareSector(sector string) (aggregate.Vector, aggregate.Vector) {
	return aggregate.CompareSector(d.records, sector)
}

// CompareAll returns the cross-sector overview.
func (d *Dataset) CompareAll() aggregate.Overview {
	return aggregate.CompareAllSectors(d.records)
}

// SectorAnalysis ranks sector and compares it with the market.
func (d *Dataset) SectorAnalysis(sector string) SectorAnalysis {
	s, m := d.CompareSector(sector)
	return SectorAnalysis{Sector: sector, Ranking: d.Rank(sector), SectorMeans: s, MarketMeans: m}
}
