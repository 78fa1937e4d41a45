// Package config loads and validates the application configuration
// from a YAML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/arbitrage"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// Default values for optional configuration fields.
const (
	DefaultAPIBaseURL     = goonmetrics.DefaultBaseURL
	DefaultUserAgent      = "eve-market-arbitrage/0.1.0"
	DefaultBatchLimit     = goonmetrics.MaxIDsPerRequest
	DefaultMaxConcurrency = 8
	DefaultTimeoutSeconds = 15
	DefaultTTLSeconds     = 300
	DefaultLogLevel       = "info"
)

// Config is the root application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	API     APIConfig     `yaml:"api"`
	Redis   RedisConfig   `yaml:"redis"`
	Catalog CatalogConfig `yaml:"catalog"`
	Markets MarketsConfig `yaml:"markets"`
	Trade   TradeConfig   `yaml:"trade"`
	Items   []string      `yaml:"items"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Pretty     bool   `yaml:"pretty"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// APIConfig controls the goonmetrics client and batch fetcher.
// Timeout is in seconds; yaml.v3 has no duration-string decoding.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	BatchLimit     int    `yaml:"batch_limit"`
	MaxConcurrency int    `yaml:"max_concurrency"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RedisConfig enables the optional quote cache. An empty address
// disables caching.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the quote cache entry lifetime.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// CatalogConfig locates the EVE static data export.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// MarketsConfig identifies the two compared markets.
type MarketsConfig struct {
	ReferenceStationID   string `yaml:"reference_station_id"`
	DestinationStationID string `yaml:"destination_station_id"`
}

// TradeConfig carries the metric-chain constants and policies.
type TradeConfig struct {
	DeliveryPricePerVolume float64 `yaml:"delivery_price_per_volume"`
	ReferenceTaxRate       float64 `yaml:"reference_tax_rate"`
	DestinationTaxRate     float64 `yaml:"destination_tax_rate"`
	OnMissingQuote         string  `yaml:"on_missing_quote"` // "fail" or "skip"

	// Opportunity filter for the rendered table.
	MinProfitDaily float64 `yaml:"min_profit_daily"`
	MinFreezeRate  float64 `yaml:"min_freeze_rate"`
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.API.BatchLimit == 0 {
		c.API.BatchLimit = DefaultBatchLimit
	}
	if c.API.MaxConcurrency == 0 {
		c.API.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = DefaultTTLSeconds
	}
	if c.Trade.DeliveryPricePerVolume == 0 {
		c.Trade.DeliveryPricePerVolume = arbitrage.DefaultDeliveryPricePerVolume
	}
	if c.Trade.ReferenceTaxRate == 0 {
		c.Trade.ReferenceTaxRate = arbitrage.DefaultReferenceTaxRate
	}
	if c.Trade.DestinationTaxRate == 0 {
		c.Trade.DestinationTaxRate = arbitrage.DefaultDestinationTaxRate
	}
	if c.Trade.OnMissingQuote == "" {
		c.Trade.OnMissingQuote = string(arbitrage.MissingQuoteFail)
	}
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return errors.New("catalog.path is required")
	}
	if c.Markets.ReferenceStationID == "" {
		return errors.New("markets.reference_station_id is required")
	}
	if c.Markets.DestinationStationID == "" {
		return errors.New("markets.destination_station_id is required")
	}
	if len(c.Items) == 0 {
		return errors.New("items must list at least one tracked item")
	}

	if c.API.BatchLimit < 1 || c.API.BatchLimit > goonmetrics.MaxIDsPerRequest {
		return fmt.Errorf("api.batch_limit must be between 1 and %d, got %d",
			goonmetrics.MaxIDsPerRequest, c.API.BatchLimit)
	}
	if c.API.MaxConcurrency < 1 {
		return errors.New("api.max_concurrency must be >= 1")
	}

	if c.Trade.ReferenceTaxRate < 0 || c.Trade.ReferenceTaxRate >= 1 {
		return fmt.Errorf("trade.reference_tax_rate must be in [0, 1), got %v", c.Trade.ReferenceTaxRate)
	}
	if c.Trade.DestinationTaxRate < 0 || c.Trade.DestinationTaxRate >= 1 {
		return fmt.Errorf("trade.destination_tax_rate must be in [0, 1), got %v", c.Trade.DestinationTaxRate)
	}
	if c.Trade.DeliveryPricePerVolume < 0 {
		return errors.New("trade.delivery_price_per_volume must be >= 0")
	}

	switch arbitrage.MissingQuotePolicy(c.Trade.OnMissingQuote) {
	case arbitrage.MissingQuoteFail, arbitrage.MissingQuoteSkip:
	default:
		return fmt.Errorf("trade.on_missing_quote must be %q or %q, got %q",
			arbitrage.MissingQuoteFail, arbitrage.MissingQuoteSkip, c.Trade.OnMissingQuote)
	}

	return nil
}

// MissingQuotePolicy returns the configured merge policy.
func (c *Config) MissingQuotePolicy() arbitrage.MissingQuotePolicy {
	return arbitrage.MissingQuotePolicy(c.Trade.OnMissingQuote)
}
