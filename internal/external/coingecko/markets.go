package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

const marketsPath = "/coins/markets"

type marketRow struct {
	ID        string     `json:"id"`
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	MarketCap null.Float `json:"market_cap"`
}

// MarketsPage fetches one page of coins ranked by descending USD market cap
func (c *Client) MarketsPage(ctx context.Context, page, perPage int) ([]contracts.MarketEntry, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")

	var rows []marketRow
	if err := c.getJSON(ctx, marketsPath, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch markets page %d: %w", page, err)
	}

	entries := make([]contracts.MarketEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, contracts.MarketEntry{
			ID:        row.ID,
			Symbol:    strings.ToUpper(row.Symbol),
			Name:      row.Name,
			MarketCap: row.MarketCap,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"page":  page,
		"count": len(entries),
	}).Debug("Fetched markets page")

	return entries, nil
}
