package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

const (
	klinesPath  = "/api/v3/klines"
	klinesLimit = 1000
	dayMillis   = int64(24 * time.Hour / time.Millisecond)
)

// FetchDaily fetches 1d candles for pair between start and end, paging past the 1000 row limit
// ⭐ SSOT: Binance 일봉 조회는 이 함수에서만
func (c *Client) FetchDaily(ctx context.Context, pair string, start, end time.Time) ([]contracts.Sample, error) {
	startMs := start.UTC().UnixMilli()
	endMs := end.UTC().UnixMilli()

	var samples []contracts.Sample
	for page := 0; startMs <= endMs; page++ {
		params := url.Values{}
		params.Set("symbol", pair)
		params.Set("interval", "1d")
		params.Set("startTime", strconv.FormatInt(startMs, 10))
		params.Set("endTime", strconv.FormatInt(endMs, 10))
		params.Set("limit", strconv.Itoa(klinesLimit))

		var rows [][]json.RawMessage
		if err := c.getJSON(ctx, klinesPath, params, &rows); err != nil {
			return nil, fmt.Errorf("fetch klines %s page %d: %w", pair, page, err)
		}

		batch, lastOpen := parseKlines(rows)
		samples = append(samples, batch...)

		if len(rows) < klinesLimit || lastOpen < startMs {
			break
		}
		startMs = lastOpen + dayMillis
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("klines %s: %w", pair, contracts.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"pair":  pair,
		"count": len(samples),
	}).Debug("Fetched klines")

	return samples, nil
}

// parseKlines converts kline rows into samples; an unparseable close stays null
func parseKlines(rows [][]json.RawMessage) ([]contracts.Sample, int64) {
	samples := make([]contracts.Sample, 0, len(rows))
	lastOpen := int64(-1)

	for _, row := range rows {
		if len(row) < 5 {
			continue
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}
		if openTime > lastOpen {
			lastOpen = openTime
		}

		samples = append(samples, contracts.Sample{
			Time:  time.UnixMilli(openTime).UTC(),
			Close: parseClose(row[4]),
		})
	}

	return samples, lastOpen
}

// parseClose accepts the quoted-decimal form Binance uses, or a bare number
func parseClose(raw json.RawMessage) null.Float {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return null.Float{}
		}
		return null.FloatFrom(v)
	}

	var f null.Float
	if err := json.Unmarshal(raw, &f); err != nil || (f.Valid && f.Float64 <= 0) {
		return null.Float{}
	}
	return f
}
