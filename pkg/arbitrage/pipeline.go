package arbitrage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// QuoteFetcher retrieves one market's full quote set. Implemented by
// goonmetrics.Fetcher; faked in tests.
type QuoteFetcher interface {
	Fetch(ctx context.Context, stationID string, itemIDs []int32) (goonmetrics.QuoteSet, error)
}

// PipelineConfig identifies the two compared markets and carries the
// trade constants.
type PipelineConfig struct {
	// ReferenceStationID is the market where items are bought.
	ReferenceStationID string

	// DestinationStationID is the market where items are sold.
	DestinationStationID string

	// Trade holds the metric-chain constants and policies.
	Trade Config
}

// Pipeline runs the fetch / merge / enrich chain for a catalog of items.
type Pipeline struct {
	fetcher QuoteFetcher
	config  PipelineConfig
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline over a quote fetcher.
func NewPipeline(fetcher QuoteFetcher, config PipelineConfig) (*Pipeline, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("quote fetcher is required")
	}
	if config.ReferenceStationID == "" {
		return nil, fmt.Errorf("reference station id is required")
	}
	if config.DestinationStationID == "" {
		return nil, fmt.Errorf("destination station id is required")
	}

	return &Pipeline{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// marketResult is one market fetch's outcome, tagged with the market
// name for error reporting.
type marketResult struct {
	market string
	quotes goonmetrics.QuoteSet
	err    error
}

// Run fetches quotes for all items from both markets concurrently,
// joins them onto the catalog and computes the metric chain. The
// returned slice preserves the catalog order of items.
func (p *Pipeline) Run(ctx context.Context, items []Item) ([]EnrichedItem, error) {
	start := time.Now()

	itemIDs := make([]int32, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	p.logger.Info().
		Int("items", len(items)).
		Str("reference_station", p.config.ReferenceStationID).
		Str("destination_station", p.config.DestinationStationID).
		Msg("Starting pipeline run")

	// The two market fetches are fully independent; run them
	// concurrently and join on the results channel.
	results := make(chan marketResult, 2)
	fetchMarket := func(market, stationID string) {
		quotes, err := p.fetcher.Fetch(ctx, stationID, itemIDs)
		if err != nil {
			err = fmt.Errorf("%s market (station %s): %w", market, stationID, err)
		}
		results <- marketResult{market: market, quotes: quotes, err: err}
	}
	go fetchMarket(MarketReference, p.config.ReferenceStationID)
	go fetchMarket(MarketDestination, p.config.DestinationStationID)

	var referenceQuotes, destinationQuotes goonmetrics.QuoteSet
	var fetchErr error
	for i := 0; i < 2; i++ {
		result := <-results
		if result.err != nil {
			if fetchErr == nil {
				fetchErr = result.err
			}
			continue
		}
		switch result.market {
		case MarketReference:
			referenceQuotes = result.quotes
		case MarketDestination:
			destinationQuotes = result.quotes
		}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	merged, err := Merge(items, referenceQuotes, destinationQuotes, p.config.Trade.MissingQuotePolicy)
	if err != nil {
		return nil, fmt.Errorf("merge quotes: %w", err)
	}

	enriched := EnrichAll(p.config.Trade, merged)

	p.logger.Info().
		Int("items", len(items)).
		Int("enriched", len(enriched)).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")

	return enriched, nil
}
