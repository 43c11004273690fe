package contracts

import (
	"context"
	"time"

	"github.com/guregu/null/v6"
)

// MarketEntry is one row of the ranking source
type MarketEntry struct {
	ID        string     `json:"id"`
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	MarketCap null.Float `json:"market_cap"` // null = unknown
}

// RankingSource pages candidates by descending market cap
// ⭐ SSOT: 랭킹 소스 인터페이스
type RankingSource interface {
	MarketsPage(ctx context.Context, page, perPage int) ([]MarketEntry, error)
}

// ListingChecker reports whether the primary market lists a trading pair
type ListingChecker interface {
	IsListed(ctx context.Context, pair string) (bool, error)
}

// PrimarySource fetches daily candles for a trading pair (e.g. "BTCUSDT")
// ⭐ SSOT: 1차 가격 소스 인터페이스
type PrimarySource interface {
	Name() string
	FetchDaily(ctx context.Context, pair string, start, end time.Time) ([]Sample, error)
}

// FallbackSource resolves a canonical id and fetches raw range samples
// ⭐ SSOT: 2차 가격 소스 인터페이스
type FallbackSource interface {
	Name() string
	ResolveID(ctx context.Context, symbol, hint string) (string, error)
	FetchRange(ctx context.Context, id string, start, end time.Time) ([]Sample, error)
}
