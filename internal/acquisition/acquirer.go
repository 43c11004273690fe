package acquisition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/metrics"
	"github.com/dev-bhaskar8/lp-data/pkg/config"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// Config holds per-symbol acquisition rules
type Config struct {
	Market          Market
	MaxNullFraction float64 // 후보 거부 기준 (0.10)
	MaxFillGapDays  int     // forward-fill 허용 공백 일수 (3)
}

// ConfigFrom builds acquisition rules from the process config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Market:          MarketFrom(cfg),
		MaxNullFraction: cfg.Acquisition.MaxNullFraction,
		MaxFillGapDays:  cfg.Acquisition.MaxFillGapDays,
	}
}

// Acquirer resolves one symbol's daily series through the primary candidates and the fallback source
// ⭐ SSOT: 심볼별 시계열 확보 + 단위 정규화는 여기서만
type Acquirer struct {
	primary  contracts.PrimarySource
	fallback contracts.FallbackSource // nil 이면 fallback 없음
	config   Config
	logger   *logger.Logger
}

// NewAcquirer creates a new series acquirer
func NewAcquirer(primary contracts.PrimarySource, fallback contracts.FallbackSource, cfg Config, log *logger.Logger) *Acquirer {
	return &Acquirer{
		primary:  primary,
		fallback: fallback,
		config:   cfg,
		logger:   log.Module("acquirer"),
	}
}

// HasFallback reports whether a fallback source is configured
func (a *Acquirer) HasFallback() bool {
	return a.fallback != nil
}

// Acquire runs every primary candidate and then the fallback, in order.
// Fails with *contracts.NoDataAvailableError once all of them are exhausted.
func (a *Acquirer) Acquire(ctx context.Context, asset contracts.Asset, start, end time.Time) (*contracts.TimeSeries, error) {
	series, attempts := a.AcquirePrimary(ctx, asset, start, end)
	if series != nil {
		return series, nil
	}

	if a.fallback != nil && ctx.Err() == nil {
		var attempt contracts.Attempt
		series, attempt = a.AcquireFallback(ctx, asset, start, end)
		if series != nil {
			return series, nil
		}
		attempts = append(attempts, attempt)
	}

	return nil, &contracts.NoDataAvailableError{Symbol: asset.Symbol, Attempts: attempts}
}

// AcquirePrimary evaluates the primary candidates in order and returns the first accepted series,
// or nil together with one failed attempt per candidate tried.
func (a *Acquirer) AcquirePrimary(ctx context.Context, asset contracts.Asset, start, end time.Time) (*contracts.TimeSeries, []contracts.Attempt) {
	candidates := a.config.Market.Plan(asset.Symbol)
	attempts := make([]contracts.Attempt, 0, len(candidates))

	for _, candidate := range candidates {
		points, err := a.runCandidate(ctx, candidate, start, end)
		if err == nil {
			metrics.AcquisitionAttempts.WithLabelValues(a.primary.Name(), string(candidate.Kind), metrics.OutcomeSuccess).Inc()
			return &contracts.TimeSeries{
				Symbol: asset.Symbol,
				Source: a.primary.Name(),
				Query:  candidate.Label(),
				Points: points,
			}, nil
		}

		outcome := metrics.OutcomeFailed
		if isRejection(err) {
			outcome = metrics.OutcomeRejected
		}
		metrics.AcquisitionAttempts.WithLabelValues(a.primary.Name(), string(candidate.Kind), outcome).Inc()

		a.logger.WithFields(map[string]interface{}{
			"symbol":    asset.Symbol,
			"candidate": candidate.Label(),
			"error":     err.Error(),
		}).Debug("Primary candidate failed")

		attempts = append(attempts, contracts.Attempt{Source: a.primary.Name(), Query: candidate.Label(), Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return nil, attempts
}

// runCandidate fetches and normalizes every leg; inversion happens here, once
func (a *Acquirer) runCandidate(ctx context.Context, candidate Candidate, start, end time.Time) ([]contracts.Point, error) {
	legs := make([][]contracts.Point, 0, len(candidate.Legs))

	for _, leg := range candidate.Legs {
		samples, err := a.primary.FetchDaily(ctx, leg.Pair, start, end)
		if err != nil {
			return nil, err
		}

		// 데이터 품질 게이트 (누락된 날짜 포함)
		days := DailyLast(samples)
		if frac := NullFraction(days); frac > a.config.MaxNullFraction {
			return nil, fmt.Errorf("%s: %.1f%% null closes: %w", leg.Pair, frac*100, contracts.ErrTooManyNulls)
		}

		points := FillGaps(days, a.config.MaxFillGapDays)
		if len(points) == 0 {
			return nil, fmt.Errorf("%s: %w", leg.Pair, contracts.ErrNoData)
		}

		if leg.Invert {
			if points, err = Invert(points); err != nil {
				return nil, fmt.Errorf("%s: %w", leg.Pair, err)
			}
		}
		legs = append(legs, points)
	}

	points := legs[0]
	for _, next := range legs[1:] {
		points = Multiply(points, next)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: legs share no dates: %w", candidate.Label(), contracts.ErrNoData)
	}

	return points, nil
}

// AcquireFallback resolves the canonical id and resamples the raw range to the last observation per day
func (a *Acquirer) AcquireFallback(ctx context.Context, asset contracts.Asset, start, end time.Time) (*contracts.TimeSeries, contracts.Attempt) {
	source := a.fallback.Name()
	attempt := contracts.Attempt{Source: source, Query: "symbol:" + asset.Symbol}

	id, err := a.fallback.ResolveID(ctx, asset.Symbol, asset.CanonicalID)
	if err != nil {
		metrics.AcquisitionAttempts.WithLabelValues(source, string(KindFallback), metrics.OutcomeFailed).Inc()
		attempt.Err = err
		return nil, attempt
	}
	attempt.Query = "id:" + id

	samples, err := a.fallback.FetchRange(ctx, id, start, end)
	if err == nil {
		points := FillGaps(DailyLast(samples), a.config.MaxFillGapDays)
		if len(points) > 0 {
			metrics.AcquisitionAttempts.WithLabelValues(source, string(KindFallback), metrics.OutcomeSuccess).Inc()
			return &contracts.TimeSeries{
				Symbol: asset.Symbol,
				Source: source,
				Query:  attempt.Query,
				Points: points,
			}, attempt
		}
		err = fmt.Errorf("%s: %w", id, contracts.ErrNoData)
	}

	metrics.AcquisitionAttempts.WithLabelValues(source, string(KindFallback), metrics.OutcomeFailed).Inc()
	attempt.Err = err
	return nil, attempt
}

func isRejection(err error) bool {
	return err != nil && errors.Is(err, contracts.ErrTooManyNulls)
}
