package binance

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

const tickerPath = "/api/v3/ticker/price"

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// IsListed reports whether pair trades on the spot market
func (c *Client) IsListed(ctx context.Context, pair string) (bool, error) {
	params := url.Values{}
	params.Set("symbol", pair)

	var out tickerPrice
	err := c.getJSON(ctx, tickerPath, params, &out)
	if errors.Is(err, contracts.ErrSymbolNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ticker %s: %w", pair, err)
	}

	return out.Symbol == pair, nil
}
