package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

type marketChart struct {
	Prices [][]null.Float `json:"prices"` // [ms, price]
}

// FetchRange fetches raw USD price samples for a coin id between start and end
// ⭐ SSOT: CoinGecko 가격 범위 조회는 이 함수에서만
func (c *Client) FetchRange(ctx context.Context, id string, start, end time.Time) ([]contracts.Sample, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("from", strconv.FormatInt(start.UTC().Unix(), 10))
	params.Set("to", strconv.FormatInt(end.UTC().Unix(), 10))

	var chart marketChart
	path := fmt.Sprintf("/coins/%s/market_chart/range", url.PathEscape(id))
	if err := c.getJSON(ctx, path, params, &chart); err != nil {
		return nil, fmt.Errorf("fetch range %s: %w", id, err)
	}

	samples := make([]contracts.Sample, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if len(pair) < 2 || !pair[0].Valid {
			continue
		}
		price := pair[1]
		if price.Valid && price.Float64 <= 0 {
			price = null.Float{}
		}
		samples = append(samples, contracts.Sample{
			Time:  time.UnixMilli(int64(pair[0].Float64)).UTC(),
			Close: price,
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("range %s: %w", id, contracts.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"id":    id,
		"count": len(samples),
	}).Debug("Fetched price range")

	return samples, nil
}
