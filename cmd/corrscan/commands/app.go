package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dev-bhaskar8/lp-data/internal/acquisition"
	"github.com/dev-bhaskar8/lp-data/internal/correlation"
	"github.com/dev-bhaskar8/lp-data/internal/external/binance"
	"github.com/dev-bhaskar8/lp-data/internal/external/coingecko"
	"github.com/dev-bhaskar8/lp-data/internal/pipeline"
	"github.com/dev-bhaskar8/lp-data/internal/storage"
	"github.com/dev-bhaskar8/lp-data/internal/timeframes"
	"github.com/dev-bhaskar8/lp-data/internal/universe"
	"github.com/dev-bhaskar8/lp-data/pkg/config"
	"github.com/dev-bhaskar8/lp-data/pkg/database"
	"github.com/dev-bhaskar8/lp-data/pkg/httputil"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
	"github.com/dev-bhaskar8/lp-data/pkg/redis"
)

// keyPrefix namespaces every Redis key written by this process
const keyPrefix = "lpdata"

// app is the wired component graph shared by all commands
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	redis        *redis.Client
	db           *database.DB
	binance      *binance.Client
	coingecko    *coingecko.Client
	builder      *universe.Builder
	acquirer     *acquisition.Acquirer
	orchestrator *acquisition.Orchestrator
	engine       *correlation.Engine
	store        pipeline.ResultStore // nil 이면 저장 생략
	timeframes   *timeframes.Set
	options      pipeline.Options
}

// newApp loads config and wires every component; close must be called when done
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if timeframesFile != "" {
		cfg.Correlation.TimeframesFile = timeframesFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// 3. Timeframes
	a.timeframes, err = timeframes.Load(cfg.Correlation.TimeframesFile, cfg.Acquisition.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("load timeframes: %w", err)
	}

	// 4. Redis (비활성 시 no-op)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(a.redis, keyPrefix)
	limiter := redis.NewRateLimiter(a.redis, keyPrefix)

	// 5. Upstream clients, one HTTP client (and token bucket) per upstream
	binanceHTTP := httputil.New(log).
		WithTokenBucket(cfg.Binance.RPS, 1).
		WithRateLimiter(limiter, redis.BinanceRateLimit)
	a.binance = binance.NewClient(binanceHTTP, log, cfg.Binance.BaseURL)

	coingeckoHTTP := httputil.New(log).
		WithTokenBucket(cfg.CoinGecko.RPS, 1).
		WithRateLimiter(limiter, redis.CoinGeckoRateLimit)
	a.coingecko = coingecko.NewClient(coingeckoHTTP, log, cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey).
		WithCache(cache)

	// 6. Pipeline components
	a.builder = universe.NewBuilder(a.coingecko, a.binance, universe.ConfigFrom(cfg), log)
	a.acquirer = acquisition.NewAcquirer(a.binance, a.coingecko, acquisition.ConfigFrom(cfg), log)
	a.orchestrator = acquisition.NewOrchestrator(a.acquirer, acquisition.PoolConfigFrom(cfg), log).
		WithCache(cache)

	a.engine = correlation.NewEngine(log)
	a.options = pipeline.Options{
		LookbackDays: cfg.Acquisition.LookbackDays,
		TopN:         cfg.Correlation.TopN,
		ExportDir:    cfg.Output.ExportDir,
		Timeframes:   a.timeframes,
	}

	// 7. Persistence (PERSIST_RESULTS=true 일 때만)
	if cfg.Output.PersistResults {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		repo := storage.NewRepository(a.db.Pool, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.store = repo
		log.Info("Connected to database")
	}

	return a, nil
}

// newRunner builds a pipeline runner over the shared components
func (a *app) newRunner(opts pipeline.Options) *pipeline.Runner {
	runner := pipeline.NewRunner(a.builder, a.orchestrator, a.engine, opts, a.log)
	if a.store != nil {
		runner.WithStore(a.store)
	}
	return runner
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// timeframeLabels renders the configured windows as "7d, 30d, ..."
func timeframeLabels(a *app) string {
	labels := make([]string, len(a.timeframes.Timeframes))
	for i, tf := range a.timeframes.Timeframes {
		labels[i] = tf.Label
	}
	return strings.Join(labels, ", ")
}
