package returns

import (
	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// Compute derives period-over-period changes; the first point has no return.
// Fewer than two points yields an empty series, never an error.
func Compute(series *contracts.TimeSeries) contracts.ReturnSeries {
	out := contracts.ReturnSeries{}
	if series == nil {
		return out
	}
	out.Symbol = series.Symbol
	if len(series.Points) < 2 {
		return out
	}

	out.Points = make([]contracts.ReturnPoint, 0, len(series.Points)-1)
	for i := 1; i < len(series.Points); i++ {
		prev, cur := series.Points[i-1], series.Points[i]
		out.Points = append(out.Points, contracts.ReturnPoint{
			Date:   cur.Date,
			Close:  cur.Close,
			Change: (cur.Close - prev.Close) / prev.Close,
		})
	}
	return out
}

// ComputeAll derives returns for every acquired series
func ComputeAll(series map[string]*contracts.TimeSeries) map[string]contracts.ReturnSeries {
	out := make(map[string]contracts.ReturnSeries, len(series))
	for symbol, s := range series {
		out[symbol] = Compute(s)
	}
	return out
}

// TotalChangePct returns the percentage change between the closes of the first and last points.
// It is not compounded from the individual returns.
func TotalChangePct(points []contracts.ReturnPoint) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	first, last := points[0].Close, points[len(points)-1].Close
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}
