package arbitrage

import (
	"math"
)

// Enrich computes the derived metric chain for one merged item. It is a
// pure function of its input and the config constants; each metric
// depends only on earlier metrics or raw quote fields, so they are
// computed strictly in chain order.
//
// When the destination market has no weekly movement, or its stocked
// ratio is not positive, the throughput-dependent metrics (stocked
// ratio onward through freeze rate) are undefined. They are set to NaN
// and the item is marked not rankable instead of aborting the run; the
// display layer lists such items unranked.
func Enrich(cfg Config, m MergedItem) EnrichedItem {
	e := EnrichedItem{MergedItem: m}

	e.ShippingPrice = m.Volume * cfg.DeliveryPricePerVolume
	e.ReferenceBuyWithTax = m.Reference.BuyMax * (1 + cfg.ReferenceTaxRate)
	e.DestinationSellTaxed = m.Destination.SellMin * (1 - cfg.DestinationTaxRate)
	e.ProfitPerUnit = e.DestinationSellTaxed - e.ReferenceBuyWithTax - e.ShippingPrice
	e.MarginRatio = e.ProfitPerUnit / (e.ReferenceBuyWithTax + e.ShippingPrice)

	if m.Destination.WeeklyMovement <= 0 {
		e.DestinationStockedRatio = math.NaN()
	} else {
		e.DestinationStockedRatio = float64(m.Destination.SellListed) / m.Destination.WeeklyMovement
	}

	if !(e.DestinationStockedRatio > 0) {
		// Covers NaN and a zero ratio: sqrt of either is unusable.
		e.DestinationAvgDaily = math.NaN()
		e.ProfitDaily = math.NaN()
		e.MoneyFreeze = math.NaN()
		e.FreezeRate = math.NaN()
		return e
	}

	e.DestinationAvgDaily = m.Destination.WeeklyMovement / 7 / math.Sqrt(e.DestinationStockedRatio)
	e.ProfitDaily = e.DestinationAvgDaily * e.ProfitPerUnit
	e.MoneyFreeze = e.DestinationAvgDaily * e.ReferenceBuyWithTax

	if e.MoneyFreeze > 0 {
		e.FreezeRate = e.ProfitDaily / e.MoneyFreeze
		e.Rankable = true
	} else {
		// A free acquisition ties up no capital; the rate is undefined.
		e.FreezeRate = math.NaN()
	}

	return e
}

// EnrichAll applies Enrich to every merged item, preserving order.
func EnrichAll(cfg Config, merged []MergedItem) []EnrichedItem {
	enriched := make([]EnrichedItem, 0, len(merged))
	for _, m := range merged {
		enriched = append(enriched, Enrich(cfg, m))
	}
	return enriched
}
