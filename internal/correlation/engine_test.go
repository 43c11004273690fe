package correlation

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

var asOf = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

// series builds a return series over consecutive days ending at asOf-1 with changes f(i)
func series(symbol string, n int, f func(i int) float64) contracts.ReturnSeries {
	start := asOf.AddDate(0, 0, -n)
	rs := contracts.ReturnSeries{Symbol: symbol}
	px := 100.0
	for i := 0; i < n; i++ {
		c := f(i)
		px *= 1 + c
		rs.Points = append(rs.Points, contracts.ReturnPoint{Date: start.AddDate(0, 0, i), Close: px, Change: c})
	}
	return rs
}

func wave(k float64) func(int) float64 {
	return func(i int) float64 { return 0.02 * math.Sin(float64(i)*k) }
}

func asset(symbol string, mcap float64) contracts.Asset {
	return contracts.Asset{Symbol: symbol, MarketCap: mcap}
}

func find(t *testing.T, results []contracts.PairResult, a, b string) contracts.PairResult {
	t.Helper()
	key := contracts.NewPairKey(a, b)
	for _, r := range results {
		if r.Pair == key {
			return r
		}
	}
	t.Fatalf("pair %s missing", key)
	return contracts.PairResult{}
}

var tf30 = contracts.Timeframe{Label: "30d", WindowDays: 30, MinCoverageFraction: 0.85}

func TestCorrelate_CompletenessAndBound(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"BTC": series("BTC", 30, wave(0.7)),
		"ETH": series("ETH", 30, wave(0.9)),
		"SOL": series("SOL", 10, wave(1.1)),
	}
	assets := []contracts.Asset{asset("BTC", 3), asset("ETH", 2), asset("SOL", 1), asset("GONE", 1)}

	results := NewEngine(logger.NewNop()).Correlate(rets, assets, tf30, asOf)
	require.Len(t, results, 6)

	seen := make(map[contracts.PairKey]int)
	for _, r := range results {
		seen[r.Pair]++
		assert.Less(t, r.Pair.A, r.Pair.B)
		if r.IsNumeric() {
			assert.GreaterOrEqual(t, r.Correlation, 0.0)
			assert.LessOrEqual(t, r.Correlation, 1.0)
		} else {
			assert.NotEmpty(t, r.Tag)
			assert.False(t, r.CombinedChangePct.Valid)
		}
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, key.String())
	}

	// 데이터 전혀 없는 자산도 모든 조합에 등장
	assert.Equal(t, "insufficient_data(0/25)", find(t, results, "GONE", "BTC").Tag)
	assert.Equal(t, 2.0, find(t, results, "GONE", "SOL").CombinedMarketCap)
}

func TestCorrelate_CoverageGating(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA":  series("AAA", 30, wave(0.7)),
		"BBB": series("BBB", 30, wave(0.3)),
		"CCC": series("CCC", 20, wave(0.5)),
	}
	assets := []contracts.Asset{asset("AAA", 1), asset("BBB", 1), asset("CCC", 1)}

	results := NewEngine(logger.NewNop()).Correlate(rets, assets, tf30, asOf)

	for _, other := range []string{"AAA", "BBB"} {
		r := find(t, results, "CCC", other)
		assert.Equal(t, contracts.KindIneligible, r.Kind)
		assert.Equal(t, "insufficient_data(20/25)", r.Tag)
	}
	assert.True(t, find(t, results, "AAA", "BBB").IsNumeric())
}

func TestCorrelate_IneligibleTagFromFirstSymbol(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA": series("AAA", 5, wave(0.7)),
		"ZZZ": series("ZZZ", 10, wave(0.3)),
	}
	results := NewEngine(logger.NewNop()).Correlate(rets, []contracts.Asset{asset("ZZZ", 1), asset("AAA", 1)}, tf30, asOf)

	require.Len(t, results, 1)
	assert.Equal(t, "insufficient_data(5/25)", results[0].Tag)
}

func TestCorrelate_WindowRestriction(t *testing.T) {
	// 90개 중 최근 30일만 사용
	rets := map[string]contracts.ReturnSeries{
		"AAA": series("AAA", 90, wave(0.7)),
		"BBB": series("BBB", 90, wave(0.7)),
	}
	results := NewEngine(logger.NewNop()).Correlate(rets, []contracts.Asset{asset("AAA", 1), asset("BBB", 1)}, tf30, asOf)

	require.True(t, results[0].IsNumeric())
	assert.Equal(t, 30, results[0].Points)
	assert.InDelta(t, 1.0, results[0].Correlation, 1e-9)
}

func TestCorrelate_Overlap(t *testing.T) {
	tf := contracts.Timeframe{Label: "30d", WindowDays: 30, MinCoverageFraction: 0.5}
	full := series("AAA", 30, wave(0.7))

	// 각자 15개 이상이지만 날짜가 1일만 겹침
	early := contracts.ReturnSeries{Symbol: "AAA", Points: full.Points[:16]}
	late := contracts.ReturnSeries{Symbol: "BBB", Points: series("BBB", 30, wave(0.3)).Points[15:]}

	rets := map[string]contracts.ReturnSeries{"AAA": early, "BBB": late}
	results := NewEngine(logger.NewNop()).Correlate(rets, []contracts.Asset{asset("AAA", 1), asset("BBB", 1)}, tf, asOf)

	require.Len(t, results, 1)
	assert.Equal(t, contracts.KindOverlap, results[0].Kind)
	assert.Equal(t, "overlap(1/15)", results[0].Tag)
}

func TestCorrelate_CalcZeroVariance(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA":  series("AAA", 30, wave(0.7)),
		"FLAT": series("FLAT", 30, func(int) float64 { return 0 }),
	}
	results := NewEngine(logger.NewNop()).Correlate(rets, []contracts.Asset{asset("AAA", 1), asset("FLAT", 1)}, tf30, asOf)

	require.Len(t, results, 1)
	assert.Equal(t, contracts.KindCalc, results[0].Kind)
	assert.Equal(t, "calc(zero variance in FLAT returns)", results[0].Tag)
	assert.Equal(t, "calc", results[0].TagPrefix())
}

func TestCorrelate_AbsoluteValueAndChange(t *testing.T) {
	up := series("UP", 30, wave(0.7))
	down := series("DOWN", 30, func(i int) float64 { return -wave(0.7)(i) })

	rets := map[string]contracts.ReturnSeries{"UP": up, "DOWN": down}
	results := NewEngine(logger.NewNop()).Correlate(rets, []contracts.Asset{asset("UP", 10), asset("DOWN", 5)}, tf30, asOf)

	r := results[0]
	require.True(t, r.IsNumeric())
	assert.InDelta(t, 1.0, r.Correlation, 1e-9)
	assert.Equal(t, 15.0, r.CombinedMarketCap)

	first, last := up.Points[0].Close, up.Points[29].Close
	upChange := (last - first) / first * 100
	first, last = down.Points[0].Close, down.Points[29].Close
	downChange := (last - first) / first * 100

	require.True(t, r.CombinedChangePct.Valid)
	assert.InDelta(t, (upChange+downChange)/2, r.CombinedChangePct.Float64, 1e-9)
}

func TestCorrelate_Idempotence(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA":  series("AAA", 30, wave(0.7)),
		"BBB": series("BBB", 30, wave(0.3)),
		"CCC": series("CCC", 30, wave(1.3)),
		"DDD": series("DDD", 12, wave(0.2)),
	}
	assets := []contracts.Asset{asset("AAA", 4), asset("BBB", 3), asset("CCC", 2), asset("DDD", 1)}
	engine := NewEngine(logger.NewNop())

	first, err := json.Marshal(ranking.Rank(engine.Correlate(rets, assets, tf30, asOf)))
	require.NoError(t, err)
	second, err := json.Marshal(ranking.Rank(engine.Correlate(rets, assets, tf30, asOf)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCorrelate_PartialFailureIsolation(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA":  series("AAA", 30, wave(0.7)),
		"BBB": series("BBB", 30, wave(0.3)),
		"DDD": series("DDD", 30, wave(1.9)),
	}
	engine := NewEngine(logger.NewNop())

	with := engine.Correlate(rets, []contracts.Asset{asset("AAA", 3), asset("BBB", 2), asset("CCC", 2), asset("DDD", 1)}, tf30, asOf)
	without := engine.Correlate(rets, []contracts.Asset{asset("AAA", 3), asset("BBB", 2), asset("DDD", 1)}, tf30, asOf)

	require.Len(t, with, 6)
	require.Len(t, without, 3)
	for _, r := range without {
		assert.Equal(t, r, find(t, with, r.Pair.A, r.Pair.B))
	}
}

func TestPearson_RoundOff(t *testing.T) {
	key := contracts.NewPairKey("A", "B")

	r, err := pearson(key, []float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.LessOrEqual(t, r, 1.0)
	assert.InDelta(t, 1.0, r, 1e-12)

	_, err = pearson(key, []float64{1}, []float64{1})
	assert.Error(t, err)

	_, err = pearson(key, []float64{1, math.NaN()}, []float64{1, 2})
	assert.Error(t, err)
}

func TestCorrelateAll(t *testing.T) {
	rets := map[string]contracts.ReturnSeries{
		"AAA": series("AAA", 90, wave(0.7)),
		"BBB": series("BBB", 90, wave(0.3)),
	}
	assets := []contracts.Asset{asset("AAA", 1), asset("BBB", 1)}
	tfs := []contracts.Timeframe{
		tf30,
		{Label: "180d", WindowDays: 180, MinCoverageFraction: 0.8},
	}

	out, err := NewEngine(logger.NewNop()).CorrelateAll(context.Background(), rets, assets, tfs, asOf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "30d", out[0].Timeframe.Label)
	assert.True(t, out[0].Results[0].IsNumeric())
	assert.Equal(t, "180d", out[1].Timeframe.Label)
	assert.Equal(t, "insufficient_data(90/144)", out[1].Results[0].Tag)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEngine(logger.NewNop()).CorrelateAll(ctx, rets, assets, tfs, asOf)
	assert.ErrorIs(t, err, context.Canceled)
}
