package acquisition

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

func TestAcquirer_ReferenceInversion(t *testing.T) {
	primary := &fakePrimary{series: map[string][]contracts.Sample{
		"USDCUSDT": daily(day0, 2.0, 4.0),
	}}
	a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

	series, attempts := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "USDT"}, day0, day0.AddDate(0, 0, 1))
	require.NotNil(t, series)
	assert.Empty(t, attempts)

	assert.Equal(t, []float64{0.5, 0.25}, series.Closes())
	assert.Equal(t, "reference:1/USDCUSDT", series.Query)
	assert.Equal(t, []string{"USDCUSDT"}, primary.called())
}

func TestAcquirer_DirectAndInverse(t *testing.T) {
	primary := &fakePrimary{series: map[string][]contracts.Sample{
		"BTCUSDT": daily(day0, 100, 110),
		"USDTFOO": daily(day0, 4, 5),
	}}
	a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

	btc, _ := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "BTC"}, day0, day0.AddDate(0, 0, 1))
	require.NotNil(t, btc)
	assert.Equal(t, []float64{100, 110}, btc.Closes())

	foo, attempts := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "FOO"}, day0, day0.AddDate(0, 0, 1))
	require.NotNil(t, foo)
	assert.Equal(t, []float64{0.25, 0.2}, foo.Closes())
	assert.Nil(t, attempts)
}

func TestAcquirer_CrossQuote(t *testing.T) {
	primary := &fakePrimary{series: map[string][]contracts.Sample{
		"ETHBTC":  daily(day0, 0.05, 0.06),
		"BTCUSDT": daily(day0, 40000, 50000),
	}}
	a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

	series, attempts := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "ETH"}, day0, day0.AddDate(0, 0, 1))
	require.NotNil(t, series)
	assert.Nil(t, attempts)
	assert.InDelta(t, 2000, series.Points[0].Close, 1e-9)
	assert.InDelta(t, 3000, series.Points[1].Close, 1e-9)
	assert.Equal(t, []string{"ETHUSDT", "USDTETH", "ETHBTC", "BTCUSDT"}, primary.called())
}

func TestAcquirer_NullFractionGate(t *testing.T) {
	nan := math.NaN()

	t.Run("exactly ten percent is accepted and filled", func(t *testing.T) {
		primary := &fakePrimary{series: map[string][]contracts.Sample{
			"ABCUSDT": daily(day0, 1, 2, 3, nan, 5, 6, 7, 8, 9, 10),
		}}
		a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

		series, _ := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "ABC"}, day0, day0.AddDate(0, 0, 9))
		require.NotNil(t, series)
		assert.Equal(t, []float64{1, 2, 3, 3, 5, 6, 7, 8, 9, 10}, series.Closes())
	})

	t.Run("above ten percent rejects the candidate", func(t *testing.T) {
		primary := &fakePrimary{series: map[string][]contracts.Sample{
			"ABCUSDT": daily(day0, 1, nan, 3, nan, 5, 6, 7, 8, 9, 10),
		}}
		a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

		series, attempts := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "ABC"}, day0, day0.AddDate(0, 0, 9))
		assert.Nil(t, series)
		require.Len(t, attempts, 3)
		assert.ErrorIs(t, attempts[0].Err, contracts.ErrTooManyNulls)
		assert.ErrorIs(t, attempts[1].Err, contracts.ErrSymbolNotFound)
	})

	t.Run("days missing from the response count as nulls", func(t *testing.T) {
		full := daily(day0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
		sparse := append(append(append([]contracts.Sample{}, full[:3]...), full[4:6]...), full[7:]...)
		primary := &fakePrimary{series: map[string][]contracts.Sample{"ABCUSDT": sparse}}
		a := NewAcquirer(primary, nil, testConfig(), logger.NewNop())

		series, attempts := a.AcquirePrimary(context.Background(), contracts.Asset{Symbol: "ABC"}, day0, day0.AddDate(0, 0, 9))
		assert.Nil(t, series)
		require.NotEmpty(t, attempts)
		assert.ErrorIs(t, attempts[0].Err, contracts.ErrTooManyNulls)
	})
}

func TestAcquirer_FallbackCorrectness(t *testing.T) {
	nan := math.NaN()
	primary := &fakePrimary{series: map[string][]contracts.Sample{
		// 3/10 null → 거부
		"XYZUSDT": daily(day0, 1, nan, nan, nan, 5, 6, 7, 8, 9, 10),
	}}

	raw := []contracts.Sample{
		{Time: day0.Add(1 * time.Hour), Close: null.FloatFrom(1.00)},
		{Time: day0.Add(23 * time.Hour), Close: null.FloatFrom(1.10)},
		{Time: day0.AddDate(0, 0, 1).Add(2 * time.Hour), Close: null.FloatFrom(1.20)},
		{Time: day0.AddDate(0, 0, 1).Add(20 * time.Hour), Close: null.FloatFrom(1.30)},
		{Time: day0.AddDate(0, 0, 2).Add(12 * time.Hour), Close: null.FloatFrom(1.40)},
	}
	fallback := &fakeFallback{
		ids:     map[string]string{"XYZ": "xyz-token"},
		samples: map[string][]contracts.Sample{"xyz-token": raw},
	}
	a := NewAcquirer(primary, fallback, testConfig(), logger.NewNop())

	series, err := a.Acquire(context.Background(), contracts.Asset{Symbol: "XYZ"}, day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, "fallback", series.Source)
	assert.Equal(t, "id:xyz-token", series.Query)
	assert.Equal(t, []float64{1.10, 1.30, 1.40}, series.Closes())
	assert.Equal(t, []string{"XYZUSDT", "USDTXYZ", "XYZBTC"}, primary.called())
	assert.Equal(t, []string{"XYZ"}, fallback.calls)
}

func TestAcquirer_NoDataAvailable(t *testing.T) {
	primary := &fakePrimary{errs: map[string]error{"BADUSDT": errors.New("HTTP 500")}}
	fallback := &fakeFallback{}
	a := NewAcquirer(primary, fallback, testConfig(), logger.NewNop())

	_, err := a.Acquire(context.Background(), contracts.Asset{Symbol: "BAD"}, day0, day0.AddDate(0, 0, 2))
	require.Error(t, err)

	var noData *contracts.NoDataAvailableError
	require.True(t, errors.As(err, &noData))
	assert.Equal(t, "BAD", noData.Symbol)
	require.Len(t, noData.Attempts, 4)
	assert.Equal(t, "direct:BADUSDT", noData.Attempts[0].Query)
	assert.Equal(t, "fallback", noData.Attempts[3].Source)
	assert.ErrorIs(t, err, contracts.ErrSymbolNotFound)
}

func TestAcquirer_UsesCanonicalHint(t *testing.T) {
	primary := &fakePrimary{}
	fallback := &fakeFallback{samples: map[string][]contracts.Sample{"tether": daily(day0, 1, 1)}}
	a := NewAcquirer(primary, fallback, testConfig(), logger.NewNop())

	series, err := a.Acquire(context.Background(), contracts.Asset{Symbol: "USDT", CanonicalID: "tether"}, day0, day0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "id:tether", series.Query)
}
