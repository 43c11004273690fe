package returns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(symbol string, closes ...float64) *contracts.TimeSeries {
	s := &contracts.TimeSeries{Symbol: symbol}
	for i, c := range closes {
		s.Points = append(s.Points, contracts.Point{Date: day0.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestCompute(t *testing.T) {
	rs := Compute(series("BTC", 100, 110, 99))

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "BTC", rs.Symbol)
	assert.Equal(t, day0.AddDate(0, 0, 1), rs.Points[0].Date)
	assert.InDelta(t, 0.10, rs.Points[0].Change, 1e-12)
	assert.InDelta(t, -0.10, rs.Points[1].Change, 1e-12)
	assert.Equal(t, 99.0, rs.Points[1].Close)
}

func TestCompute_ShortSeries(t *testing.T) {
	assert.Equal(t, 0, Compute(series("ONE", 5)).Len())
	assert.Equal(t, 0, Compute(series("NONE")).Len())
	assert.Equal(t, 0, Compute(nil).Len())
}

func TestComputeAll(t *testing.T) {
	all := ComputeAll(map[string]*contracts.TimeSeries{
		"BTC": series("BTC", 1, 2, 3),
		"ETH": series("ETH", 1),
	})

	assert.Equal(t, 2, all["BTC"].Len())
	assert.Equal(t, 0, all["ETH"].Len())
}

func TestTotalChangePct(t *testing.T) {
	rs := Compute(series("BTC", 100, 120, 90, 150))

	pct, ok := TotalChangePct(rs.Points)
	require.True(t, ok)
	// 첫 수익률 지점(120) → 마지막(150)
	assert.InDelta(t, 25.0, pct, 1e-9)

	_, ok = TotalChangePct(nil)
	assert.False(t, ok)
}
