package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// Pool is the subset of pgxpool.Pool the repository needs
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TimeframeRanking is one timeframe's ranked results
type TimeframeRanking struct {
	Label   string
	Results []contracts.PairResult
}

// Run is one completed pipeline run
type Run struct {
	ID             uuid.UUID
	AsOf           time.Time
	StartedAt      time.Time
	Duration       time.Duration
	TimeframesHash string
	Symbols        []string
	Failed         []string
	Timeframes     []TimeframeRanking
}

// RunSummary is a stored run without its results
type RunSummary struct {
	ID             uuid.UUID     `json:"id"`
	AsOf           time.Time     `json:"as_of"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	TimeframesHash string        `json:"timeframes_hash"`
	Symbols        []string      `json:"symbols"`
	Failed         []string      `json:"failed"`
}

// Repository persists runs and their pair results
// ⭐ SSOT: 상관관계 결과 저장/조회는 여기서만
type Repository struct {
	pool   Pool
	logger *logger.Logger
}

// NewRepository creates a new result repository
func NewRepository(pool Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log.Module("storage")}
}

// EnsureSchema creates the tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores a run and all of its results in one transaction.
// A zero ID is replaced with a new UUID, which is returned.
func (r *Repository) SaveRun(ctx context.Context, run *Run) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	symbolsJSON, err := json.Marshal(nonNil(run.Symbols))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal symbols: %w", err)
	}
	failedJSON, err := json.Marshal(nonNil(run.Failed))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal failed symbols: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO corr.runs (
			id, as_of, started_at, duration_ms, timeframes_hash, symbols, failed
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.AsOf, run.StartedAt, run.Duration.Milliseconds(), run.TimeframesHash, symbolsJSON, failedJSON)
	if err != nil {
		_ = tx.Rollback(ctx)
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	count := 0
	for _, tf := range run.Timeframes {
		for rank, res := range tf.Results {
			if err := r.insertResult(ctx, tx, run.ID, tf.Label, rank+1, res); err != nil {
				_ = tx.Rollback(ctx)
				return uuid.Nil, err
			}
			count++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":  run.ID.String(),
		"results": count,
	}).Info("Run saved")

	return run.ID, nil
}

func (r *Repository) insertResult(ctx context.Context, tx pgx.Tx, runID uuid.UUID, timeframe string, rank int, res contracts.PairResult) error {
	var correlation null.Float
	var tag null.String
	if res.IsNumeric() {
		correlation = null.FloatFrom(res.Correlation)
	} else {
		tag = null.StringFrom(res.Tag)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO corr.pair_results (
			run_id, timeframe, rank, pair, kind, correlation, tag,
			combined_market_cap, combined_change_pct, points
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, runID, timeframe, rank, res.Pair.String(), string(res.Kind), correlation, tag,
		res.CombinedMarketCap, res.CombinedChangePct, res.Points)
	if err != nil {
		return fmt.Errorf("failed to insert result %s/%s: %w", timeframe, res.Pair, err)
	}
	return nil
}

// LatestRun returns the most recent run, or nil when none is stored
func (r *Repository) LatestRun(ctx context.Context) (*RunSummary, error) {
	query := `
		SELECT id, as_of, started_at, duration_ms, timeframes_hash, symbols, failed
		FROM corr.runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run RunSummary
	var durationMs int64
	var symbolsJSON, failedJSON []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&run.ID, &run.AsOf, &run.StartedAt, &durationMs, &run.TimeframesHash, &symbolsJSON, &failedJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond
	if err := json.Unmarshal(symbolsJSON, &run.Symbols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symbols: %w", err)
	}
	if err := json.Unmarshal(failedJSON, &run.Failed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failed symbols: %w", err)
	}

	return &run, nil
}

// Results returns a run's ranked results for one timeframe
func (r *Repository) Results(ctx context.Context, runID uuid.UUID, timeframe string) ([]contracts.PairResult, error) {
	query := `
		SELECT pair, kind, correlation, tag, combined_market_cap, combined_change_pct, points
		FROM corr.pair_results
		WHERE run_id = $1 AND timeframe = $2
		ORDER BY rank
	`

	rows, err := r.pool.Query(ctx, query, runID, timeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.PairResult, 0)
	for rows.Next() {
		var res contracts.PairResult
		var pair, kind string
		var correlation null.Float
		var tag null.String

		if err := rows.Scan(&pair, &kind, &correlation, &tag, &res.CombinedMarketCap, &res.CombinedChangePct, &res.Points); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		a, b, ok := strings.Cut(pair, "-")
		if !ok {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		res.Pair = contracts.NewPairKey(a, b)
		res.Kind = contracts.ResultKind(kind)
		res.Correlation = correlation.Float64
		res.Tag = tag.String

		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	return results, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
