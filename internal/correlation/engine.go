package correlation

import (
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/metrics"
	"github.com/dev-bhaskar8/lp-data/internal/returns"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// roundOff is how far |r| may exceed 1 before it is treated as a computation error
const roundOff = 1e-12

// Engine computes pairwise return correlations for one timeframe
// ⭐ SSOT: 상관계수 계산은 여기서만 (순수 계산, I/O 없음)
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new correlation engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log.Module("correlation")}
}

// window is one symbol's restricted return series and eligibility
type window struct {
	points []contracts.ReturnPoint
	tag    string // 비어 있으면 eligible
}

// Correlate emits exactly one PairResult for every unordered pair of assets.
// Pairs with an ineligible member carry that member's tag; asOf anchors the window.
func (e *Engine) Correlate(rets map[string]contracts.ReturnSeries, assets []contracts.Asset, tf contracts.Timeframe, asOf time.Time) []contracts.PairResult {
	cutoff := contracts.TruncateDay(asOf).AddDate(0, 0, -tf.WindowDays)
	required := tf.RequiredPoints()

	// 1~3. 기간 제한 + 적격 분류
	windows := make(map[string]window, len(assets))
	eligible := 0
	for _, asset := range assets {
		points := rets[asset.Symbol].Since(cutoff)
		w := window{points: points}
		if len(points) < required {
			w.tag = contracts.InsufficientDataTag(len(points), required)
		} else {
			eligible++
		}
		windows[asset.Symbol] = w
	}

	// 4~5. 전체 자산 조합
	results := make([]contracts.PairResult, 0, len(assets)*(len(assets)-1)/2)
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			results = append(results, e.pair(assets[i], assets[j], windows, required))
		}
	}

	counts := make(map[contracts.ResultKind]int)
	for _, r := range results {
		counts[r.Kind]++
	}
	for kind, n := range counts {
		metrics.PairResults.WithLabelValues(tf.Label, string(kind)).Add(float64(n))
	}

	e.logger.WithFields(map[string]interface{}{
		"timeframe":  tf.Label,
		"required":   required,
		"eligible":   eligible,
		"ineligible": len(assets) - eligible,
		"pairs":      len(results),
		"numeric":    counts[contracts.KindNumeric],
	}).Info("Timeframe correlated")

	return results
}

func (e *Engine) pair(x, y contracts.Asset, windows map[string]window, required int) contracts.PairResult {
	key := contracts.NewPairKey(x.Symbol, y.Symbol)
	result := contracts.PairResult{
		Pair:              key,
		CombinedMarketCap: x.MarketCap + y.MarketCap,
	}

	a, b := windows[key.A], windows[key.B]

	// 자산 단위 부족: 사전순 앞 심볼의 태그 우선
	switch {
	case a.tag != "":
		result.Kind, result.Tag = contracts.KindIneligible, a.tag
		return result
	case b.tag != "":
		result.Kind, result.Tag = contracts.KindIneligible, b.tag
		return result
	}

	xs, ys := align(a.points, b.points)
	result.Points = len(xs)
	if len(xs) < required {
		result.Kind, result.Tag = contracts.KindOverlap, contracts.OverlapTag(len(xs), required)
		e.logger.WithFields(map[string]interface{}{"pair": key.String(), "tag": result.Tag}).Debug("Pair tagged")
		return result
	}

	r, err := pearson(key, xs, ys)
	if err != nil {
		result.Kind, result.Tag = contracts.KindCalc, contracts.CalcTag(err.Error())
		e.logger.WithFields(map[string]interface{}{"pair": key.String(), "tag": result.Tag}).Debug("Pair tagged")
		return result
	}

	result.Kind = contracts.KindNumeric
	result.Correlation = r

	changeA, okA := returns.TotalChangePct(a.points)
	changeB, okB := returns.TotalChangePct(b.points)
	if okA && okB {
		result.CombinedChangePct = null.FloatFrom((changeA + changeB) / 2)
	}

	return result
}

// align intersects two restricted series by date, in date order
func align(a, b []contracts.ReturnPoint) ([]float64, []float64) {
	byDate := make(map[time.Time]float64, len(b))
	for _, p := range b {
		byDate[p.Date] = p.Change
	}

	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(a))
	for _, p := range a {
		if v, ok := byDate[p.Date]; ok {
			xs = append(xs, p.Change)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// pearson returns |r| in [0, 1]; any arithmetic failure becomes an error
func pearson(key contracts.PairKey, xs, ys []float64) (r float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	if len(xs) < 2 {
		return 0, fmt.Errorf("need at least 2 aligned points, have %d", len(xs))
	}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			return 0, fmt.Errorf("non-finite return on aligned point %d", i)
		}
	}
	if stat.Variance(xs, nil) == 0 {
		return 0, fmt.Errorf("zero variance in %s returns", key.A)
	}
	if stat.Variance(ys, nil) == 0 {
		return 0, fmt.Errorf("zero variance in %s returns", key.B)
	}

	r = stat.Correlation(xs, ys, nil)
	if !finite(r) {
		return 0, fmt.Errorf("correlation is %v", r)
	}

	abs := math.Abs(r)
	if abs > 1+roundOff {
		return 0, fmt.Errorf("correlation %v outside [-1, 1]", r)
	}
	if abs > 1 {
		abs = 1
	}
	return abs, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
