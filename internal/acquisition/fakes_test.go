package acquisition

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guregu/null/v6"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// daily builds one sample per day starting at start; NaN marks a null close
func daily(start time.Time, closes ...float64) []contracts.Sample {
	out := make([]contracts.Sample, len(closes))
	for i, c := range closes {
		s := contracts.Sample{Time: start.AddDate(0, 0, i)}
		if !math.IsNaN(c) {
			s.Close = null.FloatFrom(c)
		}
		out[i] = s
	}
	return out
}

func closes(points []contracts.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

type fakePrimary struct {
	mu        sync.Mutex
	series    map[string][]contracts.Sample
	errs      map[string]error
	block     map[string]bool // 컨텍스트 종료까지 대기
	calls     []string
	completed int32
}

func (f *fakePrimary) Name() string { return "primary" }

func (f *fakePrimary) FetchDaily(ctx context.Context, pair string, _, _ time.Time) ([]contracts.Sample, error) {
	defer atomic.AddInt32(&f.completed, 1)

	f.mu.Lock()
	f.calls = append(f.calls, pair)
	f.mu.Unlock()

	if f.block[pair] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := f.errs[pair]; ok {
		return nil, err
	}
	if s, ok := f.series[pair]; ok {
		return s, nil
	}
	return nil, contracts.ErrSymbolNotFound
}

func (f *fakePrimary) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

type fakeFallback struct {
	mu      sync.Mutex
	ids     map[string]string
	samples map[string][]contracts.Sample
	onCall  func()
	calls   []string
}

func (f *fakeFallback) Name() string { return "fallback" }

func (f *fakeFallback) ResolveID(_ context.Context, symbol, hint string) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()

	if hint != "" {
		return hint, nil
	}
	if id, ok := f.ids[symbol]; ok {
		return id, nil
	}
	return "", contracts.ErrSymbolNotFound
}

func (f *fakeFallback) FetchRange(_ context.Context, id string, _, _ time.Time) ([]contracts.Sample, error) {
	if s, ok := f.samples[id]; ok {
		return s, nil
	}
	return nil, contracts.ErrNoData
}

func testMarket() Market {
	return Market{Quote: "USDT", Cross: "BTC", ReferenceSymbol: "USDT", ReferencePair: "USDCUSDT"}
}

func testConfig() Config {
	return Config{Market: testMarket(), MaxNullFraction: 0.10, MaxFillGapDays: 3}
}
