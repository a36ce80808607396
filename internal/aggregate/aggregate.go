// Package aggregate compares mean metric values of a sector against the whole
// market and across sectors.
package aggregate

import (
	"sort"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// Vector maps a metric to its mean. An absent entry means no record carried a
// value for that metric (undefined mean, not zero).
type Vector map[company.Metric]company.Value

// Overview is the cross-sector comparison.
type Overview struct {
	// Sectors holds one mean vector per sector label.
	Sectors map[string]Vector
	// GrandMean is computed over every record.
	GrandMean Vector
	// SectorMeanAverage is the unweighted mean of the sector means.
	SectorMeanAverage Vector
}

// SectorNames returns the sector labels of o, sorted.
func (o Overview) SectorNames() []string {
	out := make([]string, 0, len(o.Sectors))
	for s := range o.Sectors {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ComparableMetrics are the metrics averaged by this package. Capitalisation
// and price are scale fields and are left out.
func ComparableMetrics() []company.Metric {
	out := make([]company.Metric, 0, len(company.Metrics()))
	for _, m := range company.Metrics() {
		if m == company.Capitalisation || m == company.Price {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CompareSector returns the means of sector and of the whole record set.
// An empty sector yields a vector of absent means.
func CompareSector(records []company.Record, sector string) (sectorMeans, marketMeans Vector) {
	return Means(company.InSector(records, sector)), Means(records)
}

// CompareAllSectors groups records by sector and averages each group.
func CompareAllSectors(records []company.Record) Overview {
	groups := map[string][]company.Record{}
	for _, r := range records {
		groups[r.Sector] = append(groups[r.Sector], r)
	}
	o := Overview{
		Sectors:   make(map[string]Vector, len(groups)),
		GrandMean: Means(records),
	}
	for s, rs := range groups {
		o.Sectors[s] = Means(rs)
	}
	o.SectorMeanAverage = meanOfVectors(o.Sectors)
	return o
}

// Means averages every comparable metric over the present values of records.
func Means(records []company.Record) Vector {
	out := make(Vector, len(ComparableMetrics()))
	for _, m := range ComparableMetrics() {
		var sum float64
		var n int
		for _, r := range records {
			if x, ok := r.Get(m).Get(); ok {
				sum += x
				n++
			}
		}
		if n == 0 {
			out[m] = company.Absent
			continue
		}
		out[m] = company.Num(sum / float64(n))
	}
	return out
}

func meanOfVectors(vs map[string]Vector) Vector {
	// iterate sectors in sorted order so float sums are reproducible
	names := make([]string, 0, len(vs))
	for s := range vs {
		names = append(names, s)
	}
	sort.Strings(names)
	out := make(Vector, len(ComparableMetrics()))
	for _, m := range ComparableMetrics() {
		var sum float64
		var n int
		for _, s := range names {
			if x, ok := vs[s][m].Get(); ok {
				sum += x
				n++
			}
		}
		if n == 0 {
			out[m] = company.Absent
			continue
		}
		out[m] = company.Num(sum / float64(n))
	}
	return out
}
