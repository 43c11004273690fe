package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dev-bhaskar8/lp-data/internal/acquisition"
	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/correlation"
	"github.com/dev-bhaskar8/lp-data/internal/export"
	"github.com/dev-bhaskar8/lp-data/internal/metrics"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
	"github.com/dev-bhaskar8/lp-data/internal/returns"
	"github.com/dev-bhaskar8/lp-data/internal/storage"
	"github.com/dev-bhaskar8/lp-data/internal/timeframes"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// UniverseBuilder produces the run's working set
type UniverseBuilder interface {
	Build(ctx context.Context) (*contracts.Universe, error)
}

// SeriesAcquirer fetches history for the whole universe
type SeriesAcquirer interface {
	AcquireAll(ctx context.Context, assets []contracts.Asset, start, end time.Time) *acquisition.Result
}

// ResultStore persists finished runs
type ResultStore interface {
	SaveRun(ctx context.Context, run *storage.Run) (uuid.UUID, error)
}

// Options controls a run
type Options struct {
	LookbackDays int
	TopN         int
	ExportDir    string // empty 이면 CSV 저장 생략
	Timeframes   *timeframes.Set
}

// Runner executes universe → acquisition → returns → correlation → ranking → export
// ⭐ SSOT: 전체 실행 흐름은 여기서만
type Runner struct {
	universe UniverseBuilder
	acquirer SeriesAcquirer
	engine   *correlation.Engine
	store    ResultStore // nil 이면 저장 생략
	options  Options
	logger   *logger.Logger
	now      func() time.Time
}

// NewRunner creates a new pipeline runner
func NewRunner(u UniverseBuilder, a SeriesAcquirer, engine *correlation.Engine, opts Options, log *logger.Logger) *Runner {
	if opts.Timeframes == nil {
		opts.Timeframes = timeframes.Default()
	}
	return &Runner{
		universe: u,
		acquirer: a,
		engine:   engine,
		options:  opts,
		logger:   log.Module("pipeline"),
		now:      time.Now,
	}
}

// WithStore persists every successful run
func (r *Runner) WithStore(store ResultStore) *Runner {
	r.store = store
	return r
}

// WithClock overrides the run clock
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run performs one full run. Per-symbol and per-pair failures are reported, not returned;
// only an empty universe or an export/persist failure is an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report, err := r.run(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues("success").Inc()
	metrics.LastRunTimestamp.Set(float64(r.now().Unix()))
	return report, nil
}

func (r *Runner) run(ctx context.Context) (*Report, error) {
	started := r.now()
	asOf := contracts.TruncateDay(started)

	hash, err := timeframes.Hash(r.options.Timeframes)
	if err != nil {
		return nil, fmt.Errorf("hash timeframes: %w", err)
	}

	report := &Report{
		RunID:          uuid.New(),
		AsOf:           asOf,
		StartedAt:      started,
		TimeframesHash: hash,
	}

	log := r.logger.WithField("run_id", report.RunID.String())
	log.WithFields(map[string]interface{}{
		"as_of":      asOf.Format("2006-01-02"),
		"timeframes": len(r.options.Timeframes.Timeframes),
	}).Info("Run started")

	// 1. Universe
	phase := time.Now()
	universe, err := r.universe.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}
	report.Universe = universe
	metrics.PhaseDuration.WithLabelValues("universe").Observe(time.Since(phase).Seconds())

	// 2. Acquisition
	start := asOf.AddDate(0, 0, -r.options.LookbackDays)
	report.Acquisition = r.acquirer.AcquireAll(ctx, universe.Assets, start, asOf)

	// 3. Returns
	rets := returns.ComputeAll(report.Acquisition.Series)

	// 4. Correlation (실패 심볼도 insufficient_data 태그로 참여)
	phase = time.Now()
	perTimeframe, err := r.engine.CorrelateAll(ctx, rets, universe.Assets, r.options.Timeframes.Timeframes, asOf)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	metrics.PhaseDuration.WithLabelValues("correlation").Observe(time.Since(phase).Seconds())

	// 5. Ranking
	for _, tr := range perTimeframe {
		ranked := ranking.Rank(tr.Results)
		report.Timeframes = append(report.Timeframes, TimeframeReport{
			Timeframe: tr.Timeframe,
			Ranked:    ranked,
			Top:       ranking.TopN(ranked, r.options.TopN),
			Errors:    ranking.ErrorSummary(ranked),
			Numeric:   ranking.NumericCount(ranked),
		})
	}

	// 6. Export / persist
	if r.options.ExportDir != "" {
		for _, tf := range report.Timeframes {
			path, err := export.WriteTimeframe(r.options.ExportDir, tf.Timeframe.Label, tf.Ranked)
			if err != nil {
				return nil, fmt.Errorf("export %s: %w", tf.Timeframe.Label, err)
			}
			report.Exported = append(report.Exported, path)
		}
	}

	report.Duration = r.now().Sub(started)

	if r.store != nil {
		if _, err := r.store.SaveRun(ctx, report.toRun()); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	log.WithFields(map[string]interface{}{
		"universe": universe.Count(),
		"failed":   len(report.Acquisition.Failed),
		"exported": len(report.Exported),
		"duration": report.Duration.String(),
	}).Info("Run completed")

	return report, nil
}
