package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/eve-market-arbitrage/internal/config"
	"github.com/Sternrassler/eve-market-arbitrage/internal/display"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/arbitrage"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/cache"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/catalog"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/logging"
)

func main() {
	configPath := flag.String("config", "configs/arbitrage.yaml", "path to YAML configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "arbitrage: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(logging.Config{
		Level:          logging.LogLevel(cfg.Log.Level),
		Pretty:         cfg.Log.Pretty,
		File:           cfg.Log.File,
		FileMaxSizeMB:  cfg.Log.MaxSizeMB,
		FileMaxBackups: cfg.Log.MaxBackups,
	})
	logger := logging.NewLogger("arbitrage")

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	items, err := cat.ItemsByNames(cfg.Items)
	if err != nil {
		return fmt.Errorf("resolve items: %w", err)
	}
	logger.Info().Int("items", len(items)).Msg("resolved tracked items from catalog")

	clientCfg := goonmetrics.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout(),
	}
	if quoteCache := openQuoteCache(cfg, logger); quoteCache != nil {
		clientCfg.Cache = quoteCache
	}

	client := goonmetrics.NewClient(clientCfg)
	fetcher := goonmetrics.NewFetcher(client, goonmetrics.FetcherConfig{
		BatchLimit:     cfg.API.BatchLimit,
		MaxConcurrency: cfg.API.MaxConcurrency,
		Timeout:        cfg.API.Timeout(),
	})

	pipeline, err := arbitrage.NewPipeline(fetcher, arbitrage.PipelineConfig{
		ReferenceStationID:   cfg.Markets.ReferenceStationID,
		DestinationStationID: cfg.Markets.DestinationStationID,
		Trade: arbitrage.Config{
			DeliveryPricePerVolume: cfg.Trade.DeliveryPricePerVolume,
			ReferenceTaxRate:       cfg.Trade.ReferenceTaxRate,
			DestinationTaxRate:     cfg.Trade.DestinationTaxRate,
			MissingQuotePolicy:     cfg.MissingQuotePolicy(),
		},
	})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	enriched, err := pipeline.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	return display.Render(os.Stdout, enriched, display.Options{
		MinProfitDaily: cfg.Trade.MinProfitDaily,
		MinFreezeRate:  cfg.Trade.MinFreezeRate,
	})
}

// openQuoteCache connects to Redis when an address is configured. A
// cache that cannot be reached degrades to direct fetching rather than
// failing the run.
func openQuoteCache(cfg *config.Config, logger zerolog.Logger) goonmetrics.QuoteCache {
	if cfg.Redis.Addr == "" {
		logger.Debug().Msg("no redis address configured, quote caching disabled")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).
			Msg("redis unreachable, continuing without quote cache")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis quote cache")
	return cache.NewManager(redisClient, cfg.Redis.TTL())
}
