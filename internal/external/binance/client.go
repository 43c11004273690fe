package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/httputil"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// SourceName identifies this upstream in attempts, metrics and stored series
const SourceName = "binance"

// Binance error code for an unknown trading pair
const codeInvalidSymbol = -1121

// Client handles communication with the Binance spot market data API
// ⭐ SSOT: Binance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Binance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("binance"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the source name
func (c *Client) Name() string {
	return SourceName
}

// getJSON calls an /api/v3 endpoint and maps unknown-symbol answers to ErrSymbolNotFound
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, c.baseURL+path, params, dest)
	if err == nil {
		return nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(statusErr.Body, fmt.Sprintf("%d", codeInvalidSymbol)) {
		return fmt.Errorf("%s %s: %w", path, params.Get("symbol"), contracts.ErrSymbolNotFound)
	}
	return err
}

var (
	_ contracts.PrimarySource  = (*Client)(nil)
	_ contracts.ListingChecker = (*Client)(nil)
)
