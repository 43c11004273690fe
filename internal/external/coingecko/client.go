package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/pkg/httputil"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
	"github.com/dev-bhaskar8/lp-data/pkg/redis"
)

// SourceName identifies this upstream in attempts, metrics and stored series
const SourceName = "coingecko"

// Client handles communication with the CoinGecko public API
// ⭐ SSOT: CoinGecko API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cache      *redis.Cache

	dirMu     sync.Mutex
	directory []CoinRef // id ↔ symbol, 프로세스당 1회 로드

	rankMu sync.Mutex
	ranked map[string]string // 시가총액 상위 심볼 → id
}

// NewClient creates a new CoinGecko client. The API key, if any, is sent as the demo key header.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	if apiKey != "" {
		httpClient.WithHeader("x-cg-demo-api-key", apiKey)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("coingecko"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithCache stores the id directory in Redis across processes
func (c *Client) WithCache(cache *redis.Cache) *Client {
	c.cache = cache
	return c
}

// Name returns the source name
func (c *Client) Name() string {
	return SourceName
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, c.baseURL+path, params, dest)
	if err == nil {
		return nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, contracts.ErrSymbolNotFound)
	}
	return err
}

var (
	_ contracts.RankingSource  = (*Client)(nil)
	_ contracts.FallbackSource = (*Client)(nil)
)
