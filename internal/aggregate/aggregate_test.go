package aggregate

import (
	"testing"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, sector string, vals map[company.Metric]company.Value) company.Record {
	r := company.Record{Name: name, Sector: sector, Metrics: map[company.Metric]company.Value{}}
	for _, m := range company.Metrics() {
		r.Metrics[m] = company.Absent
	}
	for m, v := range vals {
		r.Metrics[m] = v
	}
	return r
}

func mean(t *testing.T, v Vector, m company.Metric) float64 {
	t.Helper()
	x, ok := v[m].Get()
	require.True(t, ok, "mean of %s should be defined", m)
	return x
}

func TestComparableMetricsExcludeScaleFields(t *testing.T) {
	ms := ComparableMetrics()
	assert.Len(t, ms, 9)
	assert.NotContains(t, ms, company.Capitalisation)
	assert.NotContains(t, ms, company.Price)
	assert.Contains(t, ms, company.PER)
}

func TestCompareSectorAbsentExcludedFromDenominator(t *testing.T) {
	recs := []company.Record{
		rec("a", "Tech", map[company.Metric]company.Value{company.ROE: company.Num(10)}),
		rec("b", "Tech", map[company.Metric]company.Value{company.ROE: company.Num(20)}),
		rec("c", "Tech", map[company.Metric]company.Value{company.ROE: company.Absent}),
		rec("d", "Banque", map[company.Metric]company.Value{company.ROE: company.Num(3), company.Capitalisation: company.Num(1e9)}),
	}
	sector, market := CompareSector(recs, "Tech")
	assert.InDelta(t, 15, mean(t, sector, company.ROE), 1e-9)
	assert.InDelta(t, 11, mean(t, market, company.ROE), 1e-9)
	assert.True(t, sector[company.PER].IsAbsent(), "all-absent metric must have undefined mean")
	_, hasCap := market[company.Capitalisation]
	assert.False(t, hasCap)
	_, hasPrice := market[company.Price]
	assert.False(t, hasPrice)
}

func TestCompareSectorEmptySelection(t *testing.T) {
	recs := []company.Record{rec("a", "Tech", map[company.Metric]company.Value{company.ROE: company.Num(10)})}
	sector, market := CompareSector(recs, "Energie")
	require.Len(t, sector, len(ComparableMetrics()))
	for _, m := range ComparableMetrics() {
		assert.True(t, sector[m].IsAbsent())
	}
	assert.InDelta(t, 10, mean(t, market, company.ROE), 1e-9)
}

func TestCompareAllSectors(t *testing.T) {
	recs := []company.Record{
		rec("a", "Tech", map[company.Metric]company.Value{company.ROE: company.Num(10), company.PER: company.Num(20)}),
		rec("b", "Tech", map[company.Metric]company.Value{company.ROE: company.Num(20), company.PER: company.Num(30)}),
		rec("c", "Banque", map[company.Metric]company.Value{company.ROE: company.Num(6)}),
	}
	o := CompareAllSectors(recs)
	assert.Equal(t, []string{"Banque", "Tech"}, o.SectorNames())
	assert.InDelta(t, 15, mean(t, o.Sectors["Tech"], company.ROE), 1e-9)
	assert.InDelta(t, 6, mean(t, o.Sectors["Banque"], company.ROE), 1e-9)
	assert.True(t, o.Sectors["Banque"][company.PER].IsAbsent())

	// grand mean is over records, not over sectors
	assert.InDelta(t, 12, mean(t, o.GrandMean, company.ROE), 1e-9)
	assert.InDelta(t, 10.5, mean(t, o.SectorMeanAverage, company.ROE), 1e-9)
	assert.InDelta(t, 25, mean(t, o.SectorMeanAverage, company.PER), 1e-9)
	assert.True(t, o.GrandMean[company.NetMargin].IsAbsent())
}

func TestCompareAllSectorsDeterministic(t *testing.T) {
	recs := []company.Record{
		rec("a", "Tech", map[company.Metric]company.Value{company.ROA: company.Num(0.1)}),
		rec("b", "Santé", map[company.Metric]company.Value{company.ROA: company.Num(0.2)}),
		rec("c", "Banque", map[company.Metric]company.Value{company.ROA: company.Num(0.3)}),
	}
	first := CompareAllSectors(recs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, CompareAllSectors(recs))
	}
}
