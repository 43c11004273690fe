package acquisition

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/metrics"
	"github.com/dev-bhaskar8/lp-data/pkg/config"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
	"github.com/dev-bhaskar8/lp-data/pkg/redis"
)

// PoolConfig sizes and paces the two worker pools
type PoolConfig struct {
	PrimaryWorkers  int
	FallbackWorkers int
	PrimaryDelay    time.Duration // 작업 1건 완료 후 대기 (best-effort pacing)
	FallbackDelay   time.Duration
	Deadline        time.Duration // 전체 수집 마감, 0 이면 없음
}

// PoolConfigFrom builds pool settings from the process config
func PoolConfigFrom(cfg *config.Config) PoolConfig {
	return PoolConfig{
		PrimaryWorkers:  cfg.Acquisition.PrimaryWorkers,
		FallbackWorkers: cfg.Acquisition.FallbackWorkers,
		PrimaryDelay:    cfg.Acquisition.PrimaryDelay,
		FallbackDelay:   cfg.Acquisition.FallbackDelay,
		Deadline:        cfg.Acquisition.Deadline,
	}
}

// Result partitions the universe by how each symbol was resolved
type Result struct {
	Series      map[string]*contracts.TimeSeries `json:"-"`
	Errors      map[string]error                 `json:"-"`
	ViaPrimary  []string                         `json:"via_primary"`
	ViaFallback []string                         `json:"via_fallback"`
	ViaCache    []string                         `json:"via_cache"`
	Failed      []string                         `json:"failed"`
	Duration    time.Duration                    `json:"duration"`
}

// Orchestrator fetches the whole universe: primary pool first, then the fallback pool for what is left
// ⭐ SSOT: 병렬 수집 오케스트레이션은 이 파일에서만
type Orchestrator struct {
	acquirer *Acquirer
	config   PoolConfig
	cache    *redis.Cache // nil 이면 캐시 없음
	logger   *logger.Logger
}

// NewOrchestrator creates a new acquisition orchestrator
func NewOrchestrator(acquirer *Acquirer, cfg PoolConfig, log *logger.Logger) *Orchestrator {
	if cfg.PrimaryWorkers <= 0 {
		cfg.PrimaryWorkers = 1
	}
	if cfg.FallbackWorkers <= 0 {
		cfg.FallbackWorkers = 1
	}
	return &Orchestrator{
		acquirer: acquirer,
		config:   cfg,
		logger:   log.Module("orchestrator"),
	}
}

// WithCache reuses series acquired by earlier runs for the same date range
func (o *Orchestrator) WithCache(cache *redis.Cache) *Orchestrator {
	o.cache = cache
	return o
}

// fetchResult is one unit of work's outcome
type fetchResult struct {
	Symbol   string
	Series   *contracts.TimeSeries
	Attempts []contracts.Attempt
}

type fetchFunc func(ctx context.Context, asset contracts.Asset) fetchResult

// AcquireAll resolves every asset. A symbol's failure never aborts the batch; it lands in Result.Errors.
// Phase 2 starts only after phase 1 has fully drained.
func (o *Orchestrator) AcquireAll(ctx context.Context, assets []contracts.Asset, start, end time.Time) *Result {
	started := time.Now()
	result := &Result{
		Series: make(map[string]*contracts.TimeSeries, len(assets)),
		Errors: make(map[string]error),
	}

	runCtx := ctx
	if o.config.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.config.Deadline)
		defer cancel()
	}

	o.logger.WithFields(map[string]interface{}{
		"symbols":          len(assets),
		"from":             start.Format("2006-01-02"),
		"to":               end.Format("2006-01-02"),
		"primary_workers":  o.config.PrimaryWorkers,
		"fallback_workers": o.config.FallbackWorkers,
	}).Info("Starting acquisition")

	// 0. 캐시
	pending := make([]contracts.Asset, 0, len(assets))
	for _, asset := range assets {
		if series := o.cached(runCtx, asset.Symbol, start, end); series != nil {
			result.Series[asset.Symbol] = series
			result.ViaCache = append(result.ViaCache, asset.Symbol)
			continue
		}
		pending = append(pending, asset)
	}

	// 1. Primary pool
	primaryAttempts := make(map[string][]contracts.Attempt)
	needFallback := make([]contracts.Asset, 0)

	primary := func(ctx context.Context, asset contracts.Asset) fetchResult {
		series, attempts := o.acquirer.AcquirePrimary(ctx, asset, start, end)
		return fetchResult{Symbol: asset.Symbol, Series: series, Attempts: attempts}
	}
	byPrimary := o.dispatch(runCtx, "primary", pending, o.config.PrimaryWorkers, o.config.PrimaryDelay, primary)

	for _, asset := range pending {
		r := byPrimary[asset.Symbol]
		if r.Series != nil {
			result.Series[asset.Symbol] = r.Series
			result.ViaPrimary = append(result.ViaPrimary, asset.Symbol)
			continue
		}
		primaryAttempts[asset.Symbol] = r.Attempts
		needFallback = append(needFallback, asset)
	}

	o.logger.WithFields(map[string]interface{}{
		"succeeded":     len(result.ViaPrimary),
		"need_fallback": len(needFallback),
	}).Info("Primary phase completed")

	// 2. Fallback pool (phase 1 완료 후에만)
	if len(needFallback) > 0 && o.acquirer.HasFallback() {
		fallback := func(ctx context.Context, asset contracts.Asset) fetchResult {
			series, attempt := o.acquirer.AcquireFallback(ctx, asset, start, end)
			return fetchResult{Symbol: asset.Symbol, Series: series, Attempts: []contracts.Attempt{attempt}}
		}
		byFallback := o.dispatch(runCtx, "fallback", needFallback, o.config.FallbackWorkers, o.config.FallbackDelay, fallback)

		for _, asset := range needFallback {
			r := byFallback[asset.Symbol]
			if r.Series != nil {
				result.Series[asset.Symbol] = r.Series
				result.ViaFallback = append(result.ViaFallback, asset.Symbol)
				continue
			}
			primaryAttempts[asset.Symbol] = append(primaryAttempts[asset.Symbol], r.Attempts...)
		}
	}

	for _, asset := range needFallback {
		if _, ok := result.Series[asset.Symbol]; ok {
			continue
		}
		err := &contracts.NoDataAvailableError{Symbol: asset.Symbol, Attempts: primaryAttempts[asset.Symbol]}
		result.Errors[asset.Symbol] = err
		result.Failed = append(result.Failed, asset.Symbol)

		o.logger.WithError(err).WithField("symbol", asset.Symbol).Warn("Symbol excluded: no data available")
	}

	// 캐시 저장은 마감과 무관하게 호출자 컨텍스트로
	for _, symbol := range append(append([]string{}, result.ViaPrimary...), result.ViaFallback...) {
		o.store(ctx, result.Series[symbol], start, end)
	}

	sort.Strings(result.ViaPrimary)
	sort.Strings(result.ViaFallback)
	sort.Strings(result.ViaCache)
	sort.Strings(result.Failed)
	result.Duration = time.Since(started)

	metrics.SymbolsAcquired.WithLabelValues("cache").Add(float64(len(result.ViaCache)))
	metrics.SymbolsAcquired.WithLabelValues("primary").Add(float64(len(result.ViaPrimary)))
	metrics.SymbolsAcquired.WithLabelValues("fallback").Add(float64(len(result.ViaFallback)))
	metrics.SymbolsFailed.Add(float64(len(result.Failed)))
	metrics.PhaseDuration.WithLabelValues("acquisition").Observe(result.Duration.Seconds())

	o.logger.WithFields(map[string]interface{}{
		"cache":    len(result.ViaCache),
		"primary":  len(result.ViaPrimary),
		"fallback": len(result.ViaFallback),
		"failed":   len(result.Failed),
		"duration": result.Duration.String(),
	}).Info("Acquisition completed")

	return result
}

// dispatch runs fn over assets on a bounded worker pool and blocks until every worker exits
func (o *Orchestrator) dispatch(ctx context.Context, phase string, assets []contracts.Asset, workers int, delay time.Duration, fn fetchFunc) map[string]fetchResult {
	results := make(map[string]fetchResult, len(assets))
	if len(assets) == 0 {
		return results
	}

	resultCh := make(chan fetchResult, len(assets))
	assetCh := make(chan contracts.Asset, len(assets))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			o.worker(ctx, phase, workerID, delay, assetCh, resultCh, fn)
		}(i)
	}

	for _, asset := range assets {
		assetCh <- asset
	}
	close(assetCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		results[r.Symbol] = r
	}
	return results
}

// worker processes assets until the channel closes; after the deadline every remaining asset fails fast
func (o *Orchestrator) worker(ctx context.Context, phase string, workerID int, delay time.Duration, assetCh <-chan contracts.Asset, resultCh chan<- fetchResult, fn fetchFunc) {
	for asset := range assetCh {
		select {
		case <-ctx.Done():
			resultCh <- fetchResult{
				Symbol:   asset.Symbol,
				Attempts: []contracts.Attempt{{Source: phase, Query: "deadline", Err: fmt.Errorf("%s phase: %w", phase, ctx.Err())}},
			}
			continue
		default:
		}

		r := fn(ctx, asset)
		resultCh <- r

		o.logger.WithFields(map[string]interface{}{
			"phase":  phase,
			"worker": workerID,
			"symbol": asset.Symbol,
			"ok":     r.Series != nil,
		}).Debug("Unit of work completed")

		pace(ctx, delay)
	}
}

// pace sleeps for d unless ctx ends first
func pace(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) cached(ctx context.Context, symbol string, start, end time.Time) *contracts.TimeSeries {
	if o.cache == nil {
		return nil
	}

	var series contracts.TimeSeries
	hit, err := o.cache.Get(ctx, redis.SeriesKey(symbol, start, end), &series)
	if err != nil {
		o.logger.WithError(err).WithField("symbol", symbol).Warn("Series cache read failed")
		return nil
	}
	if !hit || series.Len() == 0 {
		return nil
	}

	metrics.AcquisitionAttempts.WithLabelValues("cache", "series", metrics.OutcomeCacheHit).Inc()
	return &series
}

func (o *Orchestrator) store(ctx context.Context, series *contracts.TimeSeries, start, end time.Time) {
	if o.cache == nil || series == nil {
		return
	}
	if err := o.cache.Set(ctx, redis.SeriesKey(series.Symbol, start, end), series, redis.TTLSeries); err != nil {
		o.logger.WithError(err).WithField("symbol", series.Symbol).Warn("Series cache write failed")
	}
}
