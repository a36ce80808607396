package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/KaramelBytes/rankedinc-cli/internal/normalize"
	"github.com/KaramelBytes/rankedinc-cli/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheet(rows ...[]string) company.RawTable {
	cols := []string{company.SectorColumn}
	for _, m := range company.Metrics() {
		cols = append(cols, string(m))
	}
	t := company.RawTable{Columns: cols}
	for _, r := range rows {
		cells := map[string]string{}
		for i, c := range cols {
			cells[c] = r[i+1]
		}
		t.Rows = append(t.Rows, company.RawRow{Name: r[0], Cells: cells})
	}
	return t
}

// columns: name, sector, cap, price, div, payout, ROE, ROA, gross, net, PER, D/E, growth
var fixture = sheet(
	[]string{"A", "Tech", "100", "10", "2", "30", "15", "8", "60", "20", "12", "40", "5"},
	[]string{"B", "Tech", "50", "10", "1", "50", "10", "5", "50", "15", "20", "60", "2"},
	[]string{"Neg", "Tech", "500", "10", "9", "1", "90", "90", "90", "90", "-5", "1", "90"},
	[]string{"Bank", "Banque", "800,5", "33,1", "5,5", "60", "9", "1,2", "TBD", "25", "8,5", "300", "TBD"},
)

func TestPipelineSectorAnalysis(t *testing.T) {
	p, err := New(nil, normalize.DefaultOptions())
	require.NoError(t, err)

	ds, err := p.Load(fixture)
	require.NoError(t, err)
	// Bank has an absent gross margin and fails the guard filter; Neg has PER -5
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.Stats().Dropped())
	assert.Equal(t, []string{"Tech"}, ds.Sectors())
	assert.True(t, ds.HasSector("Tech"))
	assert.False(t, ds.HasSector("Banque"))

	sa := ds.SectorAnalysis("Tech")
	require.Len(t, sa.Ranking, 2)
	assert.Equal(t, "A", sa.Ranking[0].Name)
	assert.Equal(t, 1, sa.Ranking[0].Rank)
	assert.Equal(t, "B", sa.Ranking[1].Name)
	for _, e := range sa.Ranking {
		assert.NotEqual(t, "Neg", e.Name, "a PER of -5 must never reach the ranking")
	}
	roe, ok := sa.SectorMeans[company.ROE].Get()
	require.True(t, ok)
	assert.InDelta(t, 12.5, roe, 1e-9)
	roe, ok = sa.MarketMeans[company.ROE].Get()
	require.True(t, ok)
	assert.InDelta(t, 12.5, roe, 1e-9)
}

func TestPipelineRelaxedFilterKeepsBank(t *testing.T) {
	opt := normalize.DefaultOptions()
	opt.Filter.RequireGuards = false
	p, err := New(nil, opt)
	require.NoError(t, err)
	ds, err := p.Load(fixture)
	require.NoError(t, err)
	assert.Equal(t, []string{"Banque", "Tech"}, ds.Sectors())

	o := ds.CompareAll()
	require.Contains(t, o.Sectors, "Banque")
	assert.True(t, o.Sectors["Banque"][company.GrossMargin].IsAbsent())
	g, ok := o.GrandMean[company.GrossMargin].Get()
	require.True(t, ok)
	assert.InDelta(t, 55, g, 1e-9)
}

func TestPipelineEmptySectorIsNoData(t *testing.T) {
	p, err := New(nil, normalize.DefaultOptions())
	require.NoError(t, err)
	ds, err := p.Load(fixture)
	require.NoError(t, err)

	sa := ds.SectorAnalysis("Energie")
	assert.Empty(t, sa.Ranking)
	for _, v := range sa.SectorMeans {
		assert.True(t, v.IsAbsent())
	}
}

func TestPipelineMalformedInputFails(t *testing.T) {
	bad := sheet([]string{"X", "Tech", "1", "1", "1", "1", "oops", "1", "1", "1", "1", "1", "1"})
	p, err := New(nil, normalize.DefaultOptions())
	require.NoError(t, err)
	ds, err := p.Load(bad)
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, normalize.ErrMalformedValue))
}

func TestPipelineRejectsInvalidSpecs(t *testing.T) {
	specs := ranking.DefaultSpecs()
	specs[0].Weight = 0
	_, err := New(specs, normalize.DefaultOptions())
	assert.ErrorIs(t, err, ranking.ErrInvalidConfig)
}

func TestDatasetConcurrentReaders(t *testing.T) {
	p, err := New(nil, normalize.DefaultOptions())
	require.NoError(t, err)
	ds, err := p.Load(fixture)
	require.NoError(t, err)
	want := ds.Rank("Tech")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := ds.Rank("Tech")
			assert.Equal(t, want, got)
			_ = ds.CompareAll()
			recs := ds.Records()
			recs[0].Metrics[company.ROE] = company.Num(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, want, ds.Rank("Tech"))
}
