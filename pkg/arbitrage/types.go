// Package arbitrage computes cross-market trade metrics: it joins the
// item catalog with price quotes from a reference and a destination
// market and derives the indicator chain used to rank hauling
// opportunities.
package arbitrage

import (
	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// Item is one tradable item from the catalog. Volume is cubic meters
// per unit and drives the shipping cost.
type Item struct {
	ID     int32
	Name   string
	Volume float64
}

// MergedItem is an item joined with its quote from both markets. Both
// quotes are always present; Merge never constructs a MergedItem with
// either one missing.
type MergedItem struct {
	Item
	Reference   goonmetrics.Quote
	Destination goonmetrics.Quote
}

// EnrichedItem is a merged item plus the derived metric chain. Rankable
// is false when the destination market's liquidity makes the
// daily-throughput metrics undefined; those metrics are NaN then.
type EnrichedItem struct {
	MergedItem

	ShippingPrice           float64
	ReferenceBuyWithTax     float64
	DestinationStockedRatio float64
	DestinationSellTaxed    float64
	DestinationAvgDaily     float64
	ProfitPerUnit           float64
	ProfitDaily             float64
	MarginRatio             float64
	MoneyFreeze             float64
	FreezeRate              float64

	Rankable bool
}
