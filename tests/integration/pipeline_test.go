package integration

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/eve-market-arbitrage/internal/testutil"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/arbitrage"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/cache"
	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

const (
	referenceStation   = "60003760"
	destinationStation = "1030049082711"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// buildPipeline wires a real client and fetcher against the mock server.
func buildPipeline(t *testing.T, mock *testutil.MockGoonmetrics, quoteCache goonmetrics.QuoteCache) *arbitrage.Pipeline {
	t.Helper()

	client := goonmetrics.NewClient(goonmetrics.ClientConfig{
		BaseURL:   mock.URL(),
		UserAgent: "TestApp/1.0.0 (integration@test.com)",
		Timeout:   10 * time.Second,
		Cache:     quoteCache,
	})
	fetcher := goonmetrics.NewFetcher(client, goonmetrics.FetcherConfig{
		BatchLimit:     10,
		MaxConcurrency: 4,
		Timeout:        10 * time.Second,
	})

	pipeline, err := arbitrage.NewPipeline(fetcher, arbitrage.PipelineConfig{
		ReferenceStationID:   referenceStation,
		DestinationStationID: destinationStation,
		Trade:                arbitrage.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}
	return pipeline
}

// TestFullPipelineFlow exercises the complete flow: batched fetch from
// both markets, merge, and metric derivation, against known quote data.
func TestFullPipelineFlow(t *testing.T) {
	mock := testutil.NewMockGoonmetrics()
	defer mock.Close()

	reference := testutil.NewHealthyQuote(11192)
	reference.BuyMax = "10000000"
	destination := testutil.NewHealthyQuote(11192)
	destination.SellMin = "15000000"
	destination.SellListed = "95"
	destination.WeeklyMovement = "62.5"

	mock.SetStation(referenceStation, []testutil.QuoteFixture{reference})
	mock.SetStation(destinationStation, []testutil.QuoteFixture{destination})

	pipeline := buildPipeline(t, mock, nil)

	items := []arbitrage.Item{{ID: 11192, Name: "Buzzard", Volume: 2500}}

	enriched, err := pipeline.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("Enriched items = %d, want 1", len(enriched))
	}

	got := enriched[0]
	if got.ShippingPrice != 2125000 {
		t.Errorf("ShippingPrice = %v, want 2125000", got.ShippingPrice)
	}
	if got.ReferenceBuyWithTax != 10108000 {
		t.Errorf("ReferenceBuyWithTax = %v, want 10108000", got.ReferenceBuyWithTax)
	}
	if got.ProfitPerUnit != 1927000 {
		t.Errorf("ProfitPerUnit = %v, want 1927000", got.ProfitPerUnit)
	}
	if math.Abs(got.DestinationAvgDaily-7.242) > 0.005 {
		t.Errorf("DestinationAvgDaily = %v, want ~7.242", got.DestinationAvgDaily)
	}
	if !got.Rankable {
		t.Error("Item should be rankable")
	}

	// One batch per market.
	if count := mock.GetRequestCount(); count != 2 {
		t.Errorf("Upstream requests = %d, want 2", count)
	}
}

// TestPipelineBatchesLargeItemSets verifies the fetcher splits tracked
// items into batches per market.
func TestPipelineBatchesLargeItemSets(t *testing.T) {
	mock := testutil.NewMockGoonmetrics()
	defer mock.Close()

	items := make([]arbitrage.Item, 25)
	fixtures := make([]testutil.QuoteFixture, 25)
	for i := range items {
		id := int32(1000 + i)
		items[i] = arbitrage.Item{ID: id, Name: "Item", Volume: 10}
		fixtures[i] = testutil.NewHealthyQuote(id)
	}
	mock.SetStation(referenceStation, fixtures)
	mock.SetStation(destinationStation, fixtures)

	pipeline := buildPipeline(t, mock, nil)

	enriched, err := pipeline.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}
	if len(enriched) != 25 {
		t.Fatalf("Enriched items = %d, want 25", len(enriched))
	}

	// 25 ids at batch limit 10 is 3 batches per market.
	if count := mock.GetRequestCount(); count != 6 {
		t.Errorf("Upstream requests = %d, want 6", count)
	}
	for _, size := range mock.GetBatchSizes() {
		if size > 10 {
			t.Errorf("Batch size %d exceeds limit 10", size)
		}
	}
}

// TestPipelineFailsWhenOneMarketFails verifies a single failing market
// discards the whole run instead of producing partial output.
func TestPipelineFailsWhenOneMarketFails(t *testing.T) {
	mock := testutil.NewMockGoonmetrics()
	defer mock.Close()

	mock.SetStation(referenceStation, []testutil.QuoteFixture{testutil.NewHealthyQuote(34)})
	mock.SetBehavior(destinationStation, testutil.StationBehavior{StatusCode: 500})

	pipeline := buildPipeline(t, mock, nil)

	_, err := pipeline.Run(context.Background(), []arbitrage.Item{{ID: 34, Name: "Tritanium", Volume: 0.01}})
	if err == nil {
		t.Fatal("Expected error when destination market fails")
	}
}

// TestPipelineUsesQuoteCache verifies a second run with a warm Redis
// cache skips the upstream API entirely.
func TestPipelineUsesQuoteCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockGoonmetrics()
	defer mock.Close()

	mock.SetStation(referenceStation, []testutil.QuoteFixture{testutil.NewHealthyQuote(34)})
	mock.SetStation(destinationStation, []testutil.QuoteFixture{testutil.NewHealthyQuote(34)})

	quoteCache := cache.NewManager(redisClient, 5*time.Minute)
	pipeline := buildPipeline(t, mock, quoteCache)

	items := []arbitrage.Item{{ID: 34, Name: "Tritanium", Volume: 0.01}}
	ctx := context.Background()

	first, err := pipeline.Run(ctx, items)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if count := mock.GetRequestCount(); count != 2 {
		t.Fatalf("After first run: upstream requests = %d, want 2", count)
	}

	second, err := pipeline.Run(ctx, items)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if count := mock.GetRequestCount(); count != 2 {
		t.Errorf("After second run: upstream requests = %d, want 2 (cache hit)", count)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Run sizes = %d/%d, want 1/1", len(first), len(second))
	}
	if first[0].ProfitPerUnit != second[0].ProfitPerUnit {
		t.Errorf("Cached run diverged: ProfitPerUnit %v vs %v",
			first[0].ProfitPerUnit, second[0].ProfitPerUnit)
	}
}
