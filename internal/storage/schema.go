package storage

// schema is applied by EnsureSchema; every statement is idempotent
const schema = `
CREATE SCHEMA IF NOT EXISTS corr;

CREATE TABLE IF NOT EXISTS corr.runs (
	id              UUID PRIMARY KEY,
	as_of           DATE NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	duration_ms     BIGINT NOT NULL,
	timeframes_hash TEXT NOT NULL,
	symbols         JSONB NOT NULL,
	failed          JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_started_at_idx ON corr.runs (started_at DESC);

CREATE TABLE IF NOT EXISTS corr.pair_results (
	run_id              UUID NOT NULL REFERENCES corr.runs (id) ON DELETE CASCADE,
	timeframe           TEXT NOT NULL,
	rank                INT NOT NULL,
	pair                TEXT NOT NULL,
	kind                TEXT NOT NULL,
	correlation         DOUBLE PRECISION,
	tag                 TEXT,
	combined_market_cap DOUBLE PRECISION NOT NULL,
	combined_change_pct DOUBLE PRECISION,
	points              INT NOT NULL,
	PRIMARY KEY (run_id, timeframe, pair)
);
`
