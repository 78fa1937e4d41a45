// Package goonmetrics provides the price quote client for the
// goonmetrics market data API, including the concurrent batch fetcher
// that assembles one market's full quote set.
package goonmetrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production goonmetrics endpoint.
const DefaultBaseURL = "https://goonmetrics.apps.goonswarm.org"

// Prometheus metrics for goonmetrics requests.
var (
	gmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goonmetrics_requests_total",
		Help: "Total goonmetrics requests by station and status",
	}, []string{"station", "status"})

	gmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goonmetrics_request_duration_seconds",
		Help:    "Goonmetrics request duration in seconds by station",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"station"})

	gmErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goonmetrics_errors_total",
		Help: "Total goonmetrics errors by class",
	}, []string{"class"})
)

// QuoteCache is an optional read-through cache for per-batch quote
// lists. Implementations must treat backend failures as misses; a cache
// problem never fails a fetch.
type QuoteCache interface {
	Get(ctx context.Context, stationID string, itemIDs []int32) ([]ItemQuote, bool)
	Set(ctx context.Context, stationID string, itemIDs []int32, quotes []ItemQuote)
}

// ClientConfig holds the HTTP client configuration.
type ClientConfig struct {
	// BaseURL of the goonmetrics API (default: DefaultBaseURL).
	BaseURL string

	// UserAgent sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Cache is an optional per-batch quote cache.
	Cache QuoteCache
}

// DefaultClientConfig returns a safe default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   DefaultBaseURL,
		UserAgent: "eve-market-arbitrage/0.1.0",
		Timeout:   15 * time.Second,
	}
}

// Client issues price_data requests for one batch of item ids.
type Client struct {
	httpClient *http.Client
	config     ClientConfig
	cache      QuoteCache
	logger     zerolog.Logger
}

// NewClient creates a goonmetrics API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		cache:  cfg.Cache,
		logger: log.With().Str("component", "goonmetrics-client").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// FetchBatch requests quotes for one batch of item ids at one station
// and parses the response body. The batch must already honor the API's
// id-per-request limit; callers go through Fetcher for that.
func (c *Client) FetchBatch(ctx context.Context, stationID string, itemIDs []int32) ([]ItemQuote, error) {
	if c.cache != nil {
		if quotes, ok := c.cache.Get(ctx, stationID, itemIDs); ok {
			c.logger.Debug().
				Str("station", stationID).
				Int("items", len(quotes)).
				Msg("Batch served from cache")
			return quotes, nil
		}
	}

	requestURL := c.batchURL(stationID, itemIDs)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	gmRequestDuration.WithLabelValues(stationID).Observe(time.Since(startTime).Seconds())

	if err != nil {
		gmErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		gmRequestsTotal.WithLabelValues(stationID, "network_error").Inc()
		c.logger.Error().Err(err).Str("station", stationID).Msg("HTTP request failed")
		return nil, &APIError{
			StationID: stationID,
			Class:     ErrorClassNetwork,
			Message:   "request failed",
			Err:       err,
		}
	}
	defer resp.Body.Close()

	gmRequestsTotal.WithLabelValues(stationID, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		class := classifyStatus(resp.StatusCode)
		gmErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("station", stationID).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Goonmetrics request error")
		return nil, &APIError{
			StationID:  stationID,
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		gmErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StationID:  stationID,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	quotes, err := parsePriceData(body)
	if err != nil {
		gmErrorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
		c.logger.Error().Err(err).Str("station", stationID).Msg("Response parse failed")
		return nil, &APIError{
			StationID:  stationID,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassParse,
			Message:    "parse response body",
			Err:        err,
		}
	}

	if c.cache != nil {
		c.cache.Set(ctx, stationID, itemIDs, quotes)
	}

	c.logger.Debug().
		Str("station", stationID).
		Int("requested", len(itemIDs)).
		Int("returned", len(quotes)).
		Msg("Batch fetched")

	return quotes, nil
}

// batchURL builds the price_data request URL. The API tolerates the
// trailing comma in the type_id list.
func (c *Client) batchURL(stationID string, itemIDs []int32) string {
	var idList strings.Builder
	for _, id := range itemIDs {
		idList.WriteString(strconv.FormatInt(int64(id), 10))
		idList.WriteByte(',')
	}
	return fmt.Sprintf("%s/api/price_data/?station_id=%s&type_id=%s",
		c.config.BaseURL, stationID, idList.String())
}

// classifyStatus categorizes a non-200 HTTP status for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassServer
	}
}
