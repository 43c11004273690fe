package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Binance   BinanceConfig
	CoinGecko CoinGeckoConfig

	// Pipeline
	Universe    UniverseConfig
	Acquisition AcquisitionConfig
	Market      MarketConfig
	Correlation CorrelationConfig
	Output      OutputConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// BinanceConfig holds the primary price source configuration
type BinanceConfig struct {
	BaseURL string
	RPS     float64 // token bucket refill rate, requests per second
}

// CoinGeckoConfig holds the ranking/fallback source configuration
type CoinGeckoConfig struct {
	BaseURL string
	APIKey  string
	RPS     float64
}

// UniverseConfig holds symbol universe selection criteria
type UniverseConfig struct {
	MaxSize        int
	MinMarketCap   float64
	PageSize       int
	MaxPages       int
	RequireListing bool     // primary source must list <SYMBOL><QUOTE>
	ListingExempt  []string // 상장 확인 생략 (스테이블코인)
}

// AcquisitionConfig holds historical data retrieval settings
type AcquisitionConfig struct {
	LookbackDays    int
	PrimaryWorkers  int
	FallbackWorkers int
	PrimaryDelay    time.Duration // pause after each unit of work on the primary pool
	FallbackDelay   time.Duration // pause after each unit of work on the fallback pool
	Deadline        time.Duration
	MaxNullFraction float64
	MaxFillGapDays  int
}

// MarketConfig describes the quote currency conventions of the primary market
type MarketConfig struct {
	QuoteAsset      string // USDT
	CrossQuoteAsset string // BTC
	ReferenceSymbol string // quote-currency asset with no series against itself
	ReferencePair   string // pair whose inverted close yields the reference series
}

// CorrelationConfig holds correlation engine settings
type CorrelationConfig struct {
	TimeframesFile string // empty means built-in set
	TopN           int
}

// OutputConfig holds export/persistence settings
type OutputConfig struct {
	ExportDir      string
	PersistResults bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Binance: BinanceConfig{
			BaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
			RPS:     getEnvAsFloat("BINANCE_RPS", 10),
		},
		CoinGecko: CoinGeckoConfig{
			BaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			APIKey:  getEnv("COINGECKO_API_KEY", ""),
			RPS:     getEnvAsFloat("COINGECKO_RPS", 0.5),
		},

		Universe: UniverseConfig{
			MaxSize:        getEnvAsInt("UNIVERSE_MAX_SIZE", 10),
			MinMarketCap:   getEnvAsFloat("UNIVERSE_MIN_MARKET_CAP", 0),
			PageSize:       getEnvAsInt("UNIVERSE_PAGE_SIZE", 100),
			MaxPages:       getEnvAsInt("UNIVERSE_MAX_PAGES", 20),
			RequireListing: getEnvAsBool("UNIVERSE_REQUIRE_LISTING", true),
			ListingExempt:  getEnvAsList("UNIVERSE_LISTING_EXEMPT", "USDT,USDC"),
		},

		Acquisition: AcquisitionConfig{
			LookbackDays:    getEnvAsInt("LOOKBACK_DAYS", 365),
			PrimaryWorkers:  getEnvAsInt("PRIMARY_WORKERS", 5),
			FallbackWorkers: getEnvAsInt("FALLBACK_WORKERS", 2),
			PrimaryDelay:    getEnvAsDuration("PRIMARY_DELAY", "200ms"),
			FallbackDelay:   getEnvAsDuration("FALLBACK_DELAY", "1500ms"),
			Deadline:        getEnvAsDuration("ACQUISITION_DEADLINE", "5m"),
			MaxNullFraction: getEnvAsFloat("MAX_NULL_FRACTION", 0.10),
			MaxFillGapDays:  getEnvAsInt("MAX_FILL_GAP_DAYS", 3),
		},

		Market: MarketConfig{
			QuoteAsset:      strings.ToUpper(getEnv("QUOTE_ASSET", "USDT")),
			CrossQuoteAsset: strings.ToUpper(getEnv("CROSS_QUOTE_ASSET", "BTC")),
			ReferenceSymbol: strings.ToUpper(getEnv("REFERENCE_SYMBOL", "USDT")),
			ReferencePair:   strings.ToUpper(getEnv("REFERENCE_PAIR", "USDCUSDT")),
		},

		Correlation: CorrelationConfig{
			TimeframesFile: getEnv("TIMEFRAMES_FILE", ""),
			TopN:           getEnvAsInt("TOP_N", 5),
		},

		Output: OutputConfig{
			ExportDir:      getEnv("EXPORT_DIR", "."),
			PersistResults: getEnvAsBool("PERSIST_RESULTS", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Universe.MaxSize <= 0 {
		return fmt.Errorf("UNIVERSE_MAX_SIZE must be > 0")
	}
	if c.Universe.PageSize <= 0 || c.Universe.MaxPages <= 0 {
		return fmt.Errorf("UNIVERSE_PAGE_SIZE and UNIVERSE_MAX_PAGES must be > 0")
	}

	a := c.Acquisition
	if a.LookbackDays <= 0 {
		return fmt.Errorf("LOOKBACK_DAYS must be > 0")
	}
	if a.PrimaryWorkers <= 0 || a.FallbackWorkers <= 0 {
		return fmt.Errorf("PRIMARY_WORKERS and FALLBACK_WORKERS must be > 0")
	}
	if a.MaxNullFraction <= 0 || a.MaxNullFraction > 1 {
		return fmt.Errorf("MAX_NULL_FRACTION must be in (0, 1]")
	}
	if a.MaxFillGapDays < 0 {
		return fmt.Errorf("MAX_FILL_GAP_DAYS must be >= 0")
	}

	if c.Market.QuoteAsset == "" || c.Market.ReferenceSymbol == "" {
		return fmt.Errorf("QUOTE_ASSET and REFERENCE_SYMBOL are required")
	}

	// Persisting results needs a database
	if c.Output.PersistResults && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when PERSIST_RESULTS=true")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value into upper-cased items
func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
