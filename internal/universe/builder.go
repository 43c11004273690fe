package universe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/config"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// Builder ranks and filters candidate assets into the working universe
type Builder struct {
	ranking contracts.RankingSource
	listing contracts.ListingChecker // nil 이면 상장 확인 생략
	config  Config
	logger  *logger.Logger
	now     func() time.Time
}

// Config holds universe selection criteria
type Config struct {
	MaxSize        int      `yaml:"max_size"`
	MinMarketCap   float64  `yaml:"min_market_cap"` // USD
	PageSize       int      `yaml:"page_size"`
	MaxPages       int      `yaml:"max_pages"`
	RequireListing bool     `yaml:"require_listing"`
	ListingExempt  []string `yaml:"listing_exempt"` // 상장 확인 생략 심볼
	QuoteAsset     string   `yaml:"quote_asset"`    // 상장 확인용 페어 접미사
}

// ConfigFrom builds the universe criteria from the process config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxSize:        cfg.Universe.MaxSize,
		MinMarketCap:   cfg.Universe.MinMarketCap,
		PageSize:       cfg.Universe.PageSize,
		MaxPages:       cfg.Universe.MaxPages,
		RequireListing: cfg.Universe.RequireListing,
		ListingExempt:  append(append([]string{}, cfg.Universe.ListingExempt...), cfg.Market.ReferenceSymbol),
		QuoteAsset:     cfg.Market.QuoteAsset,
	}
}

// NewBuilder creates a new universe builder
func NewBuilder(ranking contracts.RankingSource, listing contracts.ListingChecker, cfg Config, log *logger.Logger) *Builder {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Builder{
		ranking: ranking,
		listing: listing,
		config:  cfg,
		logger:  log.Module("universe"),
		now:     time.Now,
	}
}

// WithClock overrides the clock used to date the universe
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build pages the ranking source until MaxSize assets qualify or the source is exhausted.
// Returns contracts.ErrEmptyUniverse when nothing qualifies.
// ⭐ SSOT: 유니버스 생성은 여기서만
func (b *Builder) Build(ctx context.Context) (*contracts.Universe, error) {
	universe := &contracts.Universe{
		Date:     contracts.TruncateDay(b.now()),
		Assets:   make([]contracts.Asset, 0, b.config.MaxSize),
		Excluded: make(map[string]string),
	}
	seen := make(map[string]bool)

	for page := 1; page <= b.config.MaxPages && len(universe.Assets) < b.config.MaxSize; page++ {
		entries, err := b.ranking.MarketsPage(ctx, page, b.config.PageSize)
		if err != nil {
			if page == 1 || ctx.Err() != nil {
				return nil, fmt.Errorf("fetch ranking page %d: %w", page, err)
			}
			// 이미 수집된 후보로 진행
			b.logger.WithError(err).WithField("page", page).Warn("Ranking page failed, stopping pagination")
			break
		}

		for _, entry := range entries {
			if len(universe.Assets) >= b.config.MaxSize {
				break
			}
			universe.Scanned++

			if seen[entry.Symbol] {
				continue
			}
			seen[entry.Symbol] = true

			reason, err := b.checkExclusion(ctx, entry)
			if err != nil {
				return nil, err
			}
			if reason != "" {
				universe.Excluded[entry.Symbol] = reason
				b.logger.WithFields(map[string]interface{}{
					"symbol": entry.Symbol,
					"reason": reason,
				}).Debug("Candidate excluded")
				continue
			}

			universe.Assets = append(universe.Assets, contracts.Asset{
				Symbol:      entry.Symbol,
				MarketCap:   entry.MarketCap.Float64,
				CanonicalID: entry.ID,
				Name:        entry.Name,
			})
		}

		// 마지막 페이지
		if len(entries) < b.config.PageSize {
			break
		}
	}

	if len(universe.Assets) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}

	sort.SliceStable(universe.Assets, func(i, j int) bool {
		return universe.Assets[i].MarketCap > universe.Assets[j].MarketCap
	})

	b.logger.WithFields(map[string]interface{}{
		"assets":   len(universe.Assets),
		"excluded": len(universe.Excluded),
		"scanned":  universe.Scanned,
	}).Info("Universe built")

	return universe, nil
}

// checkExclusion returns the reason a candidate is excluded, or "" if it qualifies.
// Only context cancellation is returned as an error.
func (b *Builder) checkExclusion(ctx context.Context, entry contracts.MarketEntry) (string, error) {
	// 1. 심볼 누락
	if entry.Symbol == "" {
		return "missing symbol", nil
	}

	// 2. 시가총액 미상
	if !entry.MarketCap.Valid || entry.MarketCap.Float64 <= 0 {
		return "unknown market cap", nil
	}

	// 3. 시가총액 미달
	if entry.MarketCap.Float64 < b.config.MinMarketCap {
		return fmt.Sprintf("market cap below minimum (%.0f < %.0f)", entry.MarketCap.Float64, b.config.MinMarketCap), nil
	}

	// 4. 상장 여부
	if !b.config.RequireListing || b.listing == nil || b.isExempt(entry.Symbol) {
		return "", nil
	}

	pair := entry.Symbol + b.config.QuoteAsset
	listed, err := b.listing.IsListed(ctx, pair)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("listing check %s: %w", pair, err)
		}
		b.logger.WithError(err).WithField("pair", pair).Warn("Listing check failed")
		return fmt.Sprintf("listing check failed (%s)", pair), nil
	}
	if !listed {
		return fmt.Sprintf("not listed (%s)", pair), nil
	}

	return "", nil
}

func (b *Builder) isExempt(symbol string) bool {
	for _, s := range b.config.ListingExempt {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}
