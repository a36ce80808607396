package ranking

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, sector string, vals map[company.Metric]float64) company.Record {
	r := company.Record{Name: name, Sector: sector, Metrics: map[company.Metric]company.Value{}}
	for _, m := range company.Metrics() {
		r.Metrics[m] = company.Absent
	}
	for m, v := range vals {
		r.Metrics[m] = company.Num(v)
	}
	return r
}

func techPair() []company.Record {
	a := rec("A", "Tech", map[company.Metric]float64{
		company.Capitalisation: 100, company.DividendYield: 2, company.PayoutRatio: 30,
		company.ROE: 15, company.ROA: 8, company.GrossMargin: 60, company.NetMargin: 20,
		company.PER: 12, company.DebtToEquity: 40, company.ProfitGrowth: 5,
	})
	b := rec("B", "Tech", map[company.Metric]float64{
		company.Capitalisation: 50, company.DividendYield: 1, company.PayoutRatio: 50,
		company.ROE: 10, company.ROA: 5, company.GrossMargin: 50, company.NetMargin: 15,
		company.PER: 20, company.DebtToEquity: 60, company.ProfitGrowth: 2,
	})
	return []company.Record{b, a}
}

func TestRankDominatingCompanyFirst(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	got := r.Rank(techPair(), "Tech")
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "B", got[1].Name)
	assert.Equal(t, 2, got[1].Rank)
	// A takes position 2 on every criterion, B position 1.
	assert.InDelta(t, 2*44.5, got[0].Score, 1e-9)
	assert.InDelta(t, 44.5, got[1].Score, 1e-9)
	assert.Equal(t, "Tech", got[0].Sector)
	v, _ := got[0].Get(company.ROE).Get()
	assert.Equal(t, 15.0, v)
}

func TestRankUnknownSectorIsEmptyNotError(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	got := r.Rank(techPair(), "Energie")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, r.Rank(nil, "Tech"))
}

func TestAverageRanksTiesAndDirection(t *testing.T) {
	vals := []company.Value{company.Num(10), company.Num(30), company.Num(10), company.Num(20)}
	assert.Equal(t, []float64{1.5, 4, 1.5, 3}, AverageRanks(vals, true))
	assert.Equal(t, []float64{3.5, 1, 3.5, 2}, AverageRanks(vals, false))
}

func TestAverageRanksAbsentTakesWorstPositions(t *testing.T) {
	vals := []company.Value{company.Num(5), company.Absent, company.Num(1), company.Absent}
	// absent pair shares positions 1 and 2 in both directions
	assert.Equal(t, []float64{4, 1.5, 3, 1.5}, AverageRanks(vals, true))
	assert.Equal(t, []float64{3, 1.5, 4, 1.5}, AverageRanks(vals, false))

	all := []company.Value{company.Absent, company.Absent, company.Absent}
	assert.Equal(t, []float64{2, 2, 2}, AverageRanks(all, true))
}

func TestRankIdenticalRecordsTieBrokenByName(t *testing.T) {
	base := techPair()[1]
	x := base.Clone()
	x.Name = "Zeta"
	y := base.Clone()
	y.Name = "Alpha"
	r, err := New()
	require.NoError(t, err)

	got := r.Rank([]company.Record{x, y}, "Tech")
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Score, got[1].Score)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Zeta", got[1].Name)
	assert.Equal(t, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
}

func randomSector(rng *rand.Rand, sector string, n int) []company.Record {
	out := make([]company.Record, 0, n)
	for i := 0; i < n; i++ {
		vals := map[company.Metric]float64{}
		for _, m := range RankedMetrics() {
			if rng.Intn(6) == 0 {
				continue // absent
			}
			// small domain to force ties
			vals[m] = float64(rng.Intn(5))
		}
		out = append(out, rec(fmt.Sprintf("%s-%02d", sector, i), sector, vals))
	}
	return out
}

func TestRankIsPermutationOfOneToN(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r, err := New()
	require.NoError(t, err)
	for n := 1; n <= 25; n++ {
		recs := append(randomSector(rng, "S", n), randomSector(rng, "Other", 3)...)
		got := r.Rank(recs, "S")
		require.Len(t, got, n)
		ranks := make([]int, n)
		for i, e := range got {
			ranks[i] = e.Rank
			assert.Equal(t, i+1, e.Rank, "output must be sorted by rank")
			assert.Equal(t, "S", e.Sector)
		}
		sort.Ints(ranks)
		for i, rk := range ranks {
			assert.Equal(t, i+1, rk)
		}
	}
}

func TestRankDeterministicUnderInputOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	recs := randomSector(rng, "S", 15)
	r, err := New()
	require.NoError(t, err)
	want := r.Rank(recs, "S")

	shuffled := make([]company.Record, len(recs))
	copy(shuffled, recs)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	got := r.Rank(shuffled, "S")
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Rank, got[i].Rank)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-9)
	}
}

// better reports whether a is at least as good as b on m given the direction.
func better(spec MetricSpec, a, b float64) int {
	switch {
	case a == b:
		return 0
	case (a > b) == spec.Ascending:
		return 1
	default:
		return -1
	}
}

func TestRankMonotonicUnderDomination(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	r, err := New()
	require.NoError(t, err)
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(8)
		recs := make([]company.Record, 0, n)
		for i := 0; i < n; i++ {
			vals := map[company.Metric]float64{}
			for _, m := range RankedMetrics() {
				vals[m] = float64(rng.Intn(4))
			}
			recs = append(recs, rec(fmt.Sprintf("c%d", i), "S", vals))
		}
		got := r.Rank(recs, "S")
		byName := map[string]Entry{}
		for _, e := range got {
			byName[e.Name] = e
		}
		for _, a := range recs {
			for _, b := range recs {
				if a.Name == b.Name {
					continue
				}
				dominates, strict := true, false
				for _, spec := range r.Specs() {
					av, _ := a.Get(spec.Metric).Get()
					bv, _ := b.Get(spec.Metric).Get()
					switch better(spec, av, bv) {
					case -1:
						dominates = false
					case 1:
						strict = true
					}
				}
				if dominates && strict {
					ea, eb := byName[a.Name], byName[b.Name]
					assert.GreaterOrEqual(t, ea.Score, eb.Score)
					assert.LessOrEqual(t, ea.Rank, eb.Rank)
				}
			}
		}
	}
}

func TestRankAllAbsentMetricContributesEqually(t *testing.T) {
	a := techPair()[1]
	b := techPair()[0]
	a.Metrics[company.ProfitGrowth] = company.Absent
	b.Metrics[company.ProfitGrowth] = company.Absent
	r, err := New()
	require.NoError(t, err)
	got := r.Rank([]company.Record{a, b}, "Tech")
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	// 1.5 * 5 for the all-absent criterion on both sides
	assert.InDelta(t, 2*(44.5-5)+7.5, got[0].Score, 1e-9)
	assert.InDelta(t, (44.5-5)+7.5, got[1].Score, 1e-9)
}

func TestValidateSpecs(t *testing.T) {
	require.NoError(t, ValidateSpecs(DefaultSpecs()))

	cases := map[string]func([]MetricSpec) []MetricSpec{
		"zero weight":     func(s []MetricSpec) []MetricSpec { s[0].Weight = 0; return s },
		"negative weight": func(s []MetricSpec) []MetricSpec { s[3].Weight = -1; return s },
		"infinite weight": func(s []MetricSpec) []MetricSpec { s[5].Weight = math.Inf(1); return s },
		"NaN weight":      func(s []MetricSpec) []MetricSpec { s[6].Weight = math.NaN(); return s },
		"unknown metric":  func(s []MetricSpec) []MetricSpec { s[2].Metric = "EBITDA"; return s },
		"price is not ranked": func(s []MetricSpec) []MetricSpec {
			s[2].Metric = company.Price
			return s
		},
		"duplicate": func(s []MetricSpec) []MetricSpec { s[1].Metric = s[0].Metric; return s },
		"missing":   func(s []MetricSpec) []MetricSpec { return s[:9] },
		"empty name": func(s []MetricSpec) []MetricSpec {
			s[4].Metric = ""
			return s
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateSpecs(mutate(DefaultSpecs()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Problems)
		})
	}

	_, err := New(DefaultSpecs()[:3]...)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewCopiesSpecs(t *testing.T) {
	specs := DefaultSpecs()
	r, err := New(specs...)
	require.NoError(t, err)
	specs[0].Weight = 1000
	assert.Equal(t, 0.5, r.Specs()[0].Weight)
}
