package coingecko

import (
	"context"
	"fmt"
	"strings"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/redis"
)

const listPath = "/coins/list"

// CoinRef is one entry of the id ↔ symbol directory
type CoinRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// resolvePage is how many top coins the ranking lookup covers
const resolvePage = 250

// derivativeMarkers flag bridged, pegged and wrapped copies of a coin
var derivativeMarkers = []string{"bridge", "wrapped", "peg", "wormhole"}

// ResolveID maps a ticker to a canonical coin id.
// Order: the hint, the top of the market-cap ranking, then the directory.
func (c *Client) ResolveID(ctx context.Context, symbol, hint string) (string, error) {
	if hint != "" {
		return hint, nil
	}

	want := strings.ToLower(symbol)
	if id, ok := c.rankedID(ctx, want); ok {
		return id, nil
	}

	dir, err := c.Directory(ctx)
	if err != nil {
		return "", err
	}

	if id := pickCanonical(want, dir); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("resolve %s: %w", symbol, contracts.ErrSymbolNotFound)
}

// pickCanonical chooses among directory entries sharing a ticker. Bridged, wrapped and pegged
// entries are dropped unless nothing else matches; then id == symbol, id == slug(name), first entry.
func pickCanonical(want string, dir []CoinRef) string {
	var matches, natives []CoinRef
	for _, ref := range dir {
		if strings.ToLower(ref.Symbol) != want {
			continue
		}
		matches = append(matches, ref)
		if !isDerivative(ref) {
			natives = append(natives, ref)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	if len(natives) > 0 {
		matches = natives
	}

	for _, ref := range matches {
		if ref.ID == want {
			return ref.ID
		}
	}
	for _, ref := range matches {
		if ref.ID == slug(ref.Name) {
			return ref.ID
		}
	}
	return matches[0].ID
}

func isDerivative(ref CoinRef) bool {
	id, name := strings.ToLower(ref.ID), strings.ToLower(ref.Name)
	for _, m := range derivativeMarkers {
		if strings.Contains(id, m) || strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// slug lower-cases name and joins its words with "-"
func slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

// rankedID looks the ticker up in the first markets page, which carries canonical ids.
// The page is loaded once per process; after a failed load only the directory is used.
func (c *Client) rankedID(ctx context.Context, want string) (string, bool) {
	c.rankMu.Lock()
	defer c.rankMu.Unlock()

	if c.ranked == nil {
		entries, err := c.MarketsPage(ctx, 1, resolvePage)
		if err != nil {
			c.logger.WithError(err).Warn("Ranking lookup unavailable, using directory")
			c.ranked = map[string]string{}
			return "", false
		}
		c.ranked = make(map[string]string, len(entries))
		for _, e := range entries {
			sym := strings.ToLower(e.Symbol)
			if _, seen := c.ranked[sym]; !seen {
				c.ranked[sym] = e.ID
			}
		}
	}

	id, ok := c.ranked[want]
	return id, ok
}

// Directory returns the full coin list, loading it once per process
func (c *Client) Directory(ctx context.Context) ([]CoinRef, error) {
	c.dirMu.Lock()
	defer c.dirMu.Unlock()

	if c.directory != nil {
		return c.directory, nil
	}

	key := redis.DirectoryKey(SourceName)

	var cached []CoinRef
	if hit, err := c.cache.Get(ctx, key, &cached); err != nil {
		c.logger.WithError(err).Warn("Directory cache read failed")
	} else if hit && len(cached) > 0 {
		c.directory = cached
		return c.directory, nil
	}

	var refs []CoinRef
	if err := c.getJSON(ctx, listPath, nil, &refs); err != nil {
		return nil, fmt.Errorf("fetch coin list: %w", err)
	}

	if err := c.cache.Set(ctx, key, refs, redis.TTLDirectory); err != nil {
		c.logger.WithError(err).Warn("Directory cache write failed")
	}

	c.logger.WithField("count", len(refs)).Info("Loaded coin directory")
	c.directory = refs
	return c.directory, nil
}
