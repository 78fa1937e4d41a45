package goonmetrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/batch"
)

// MaxIDsPerRequest is the largest type_id list the goonmetrics API
// accepts in a single price_data request.
const MaxIDsPerRequest = 99

// FetcherConfig holds batch fetcher configuration.
type FetcherConfig struct {
	// BatchLimit is the maximum number of item ids per request.
	BatchLimit int

	// MaxConcurrency is the maximum number of parallel batch requests.
	MaxConcurrency int

	// Timeout per batch fetch.
	Timeout time.Duration
}

// DefaultFetcherConfig returns safe defaults for the goonmetrics API.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		BatchLimit:     MaxIDsPerRequest,
		MaxConcurrency: 8,
		Timeout:        15 * time.Second,
	}
}

// batchResult is the outcome of fetching a single batch.
type batchResult struct {
	batchIndex int
	quotes     []ItemQuote
	err        error
}

// Fetcher retrieves one market's full quote set by splitting the item
// id list into API-sized batches and fetching them in parallel.
//
// A fetch is all-or-nothing: if any batch fails, the whole fetch for
// that market fails and partial results are discarded. The first
// failure cancels the context shared by the remaining batch requests.
type Fetcher struct {
	client *Client
	config FetcherConfig
	logger zerolog.Logger
}

// NewFetcher creates a batch fetcher on top of a goonmetrics client.
func NewFetcher(client *Client, config FetcherConfig) *Fetcher {
	if config.BatchLimit <= 0 || config.BatchLimit > MaxIDsPerRequest {
		config.BatchLimit = MaxIDsPerRequest
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Fetcher{
		client: client,
		config: config,
		logger: log.With().Str("component", "goonmetrics-fetcher").Logger(),
	}
}

// Fetch retrieves quotes for all itemIDs at one station. The returned
// QuoteSet maps each item id to exactly one quote; duplicate ids in the
// API responses are a data-integrity error.
func (f *Fetcher) Fetch(ctx context.Context, stationID string, itemIDs []int32) (QuoteSet, error) {
	start := time.Now()

	batches := batch.Split(itemIDs, f.config.BatchLimit)
	if len(batches) == 0 {
		return QuoteSet{}, nil
	}

	f.logger.Info().
		Str("station", stationID).
		Int("items", len(itemIDs)).
		Int("batches", len(batches)).
		Msg("Starting parallel quote fetch")

	// First failure cancels the remaining batch requests.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batchQueue := make(chan int, len(batches))
	results := make(chan batchResult, len(batches))

	for i := range batches {
		batchQueue <- i
	}
	close(batchQueue)

	workers := f.config.MaxConcurrency
	if workers > len(batches) {
		workers = len(batches)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go f.worker(ctx, stationID, batches, batchQueue, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Fan-in: a single collector owns the growing quote set, so no
	// locking is needed and each id is written exactly once.
	quotes := make(QuoteSet, len(itemIDs))
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("station %s batch %d: %w", stationID, result.batchIndex, result.err)
				cancel()
			}
			continue
		}
		if firstErr != nil {
			// Results after a failure will be discarded anyway.
			continue
		}
		for _, iq := range result.quotes {
			if _, exists := quotes[iq.ID]; exists {
				firstErr = fmt.Errorf("station %s: %w: %d", stationID, ErrDuplicateQuote, iq.ID)
				cancel()
				break
			}
			quotes[iq.ID] = iq.Quote
		}
	}

	if firstErr != nil {
		f.logger.Error().
			Err(firstErr).
			Str("station", stationID).
			Msg("Quote fetch failed, discarding partial results")
		return nil, firstErr
	}

	f.logger.Info().
		Str("station", stationID).
		Int("quotes", len(quotes)).
		Int("batches", len(batches)).
		Dur("duration", time.Since(start)).
		Msg("Quote fetch complete")

	return quotes, nil
}

// worker processes batch indexes from the queue.
func (f *Fetcher) worker(ctx context.Context, stationID string, batches [][]int32, batchQueue <-chan int, results chan<- batchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for batchIndex := range batchQueue {
		select {
		case <-ctx.Done():
			results <- batchResult{batchIndex: batchIndex, err: ctx.Err()}
			return
		default:
		}

		batchCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
		quotes, err := f.client.FetchBatch(batchCtx, stationID, batches[batchIndex])
		cancel()

		if err != nil {
			f.logger.Warn().
				Err(err).
				Str("station", stationID).
				Int("batch", batchIndex).
				Msg("Batch fetch failed")
			results <- batchResult{batchIndex: batchIndex, err: err}
			return
		}

		results <- batchResult{batchIndex: batchIndex, quotes: quotes}
	}
}
