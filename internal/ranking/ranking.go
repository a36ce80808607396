// Package ranking computes a weighted multi-criteria rank of the companies of
// one sector.
//
// Each criterion ranks the sector's companies on one metric; a company earns
// its (average, tie-aware) position as points, multiplied by the criterion
// weight. The company with the most points ranks first.
package ranking

import (
	"sort"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// Entry is one company in a sector ranking.
type Entry struct {
	company.Record
	// Score is the weighted sum of per-metric positions.
	Score float64
	// Rank is the final position, 1 for the best company.
	Rank int
}

// Ranker ranks records with a validated metric table.
type Ranker struct {
	specs []MetricSpec
}

// New validates specs and returns a Ranker. With no specs it uses DefaultSpecs.
func New(specs ...MetricSpec) (*Ranker, error) {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}
	cp := make([]MetricSpec, len(specs))
	copy(cp, specs)
	return &Ranker{specs: cp}, nil
}

// Specs returns a copy of the metric table.
func (r *Ranker) Specs() []MetricSpec {
	cp := make([]MetricSpec, len(r.specs))
	copy(cp, r.specs)
	return cp
}

// Rank selects the records of sector and orders them best first. An unknown or
// empty sector yields an empty ranking.
func (r *Ranker) Rank(records []company.Record, sector string) []Entry {
	selected := company.InSector(records, sector)
	if len(selected) == 0 {
		return []Entry{}
	}

	scores := make([]float64, len(selected))
	for _, spec := range r.specs {
		vals := make([]company.Value, len(selected))
		for i, rec := range selected {
			vals[i] = rec.Get(spec.Metric)
		}
		for i, pos := range AverageRanks(vals, spec.Ascending) {
			scores[i] += pos * spec.Weight
		}
	}

	out := make([]Entry, len(selected))
	for i, rec := range selected {
		out[i] = Entry{Record: rec, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// AverageRanks returns the 1-based position of each value when ordered in the
// given direction. Equal values share the mean of the positions they span.
// Absent values come first in either direction, so they always take the
// lowest positions and tie among themselves.
func AverageRanks(vals []company.Value, ascending bool) []float64 {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b company.Value) bool {
		x, okx := a.Get()
		y, oky := b.Get()
		switch {
		case !okx || !oky:
			return !okx && oky
		case ascending:
			return x < y
		default:
			return x > y
		}
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(vals[idx[i]], vals[idx[j]]) })

	ranks := make([]float64, len(vals))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && sameValue(vals[idx[start]], vals[idx[end]]) {
			end++
		}
		// positions start+1 .. end share their mean
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}
	return ranks
}

func sameValue(a, b company.Value) bool {
	x, okx := a.Get()
	y, oky := b.Get()
	if !okx || !oky {
		return okx == oky
	}
	return x == y
}
