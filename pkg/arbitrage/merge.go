package arbitrage

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// Market names used in merge errors and logs.
const (
	MarketReference   = "reference"
	MarketDestination = "destination"
)

// MissingQuotePolicy decides how Merge treats an item that is absent
// from one of the quote sets.
type MissingQuotePolicy string

const (
	// MissingQuoteFail aborts the whole merge on the first missing
	// quote. This is the default: with a small fixed catalog a hole in
	// the data is worth stopping for.
	MissingQuoteFail MissingQuotePolicy = "fail"

	// MissingQuoteSkip drops the affected item, logs a warning and
	// continues with the rest of the catalog.
	MissingQuoteSkip MissingQuotePolicy = "skip"
)

// MissingQuoteError reports an item that has no quote in one market.
type MissingQuoteError struct {
	ItemID int32
	Market string
}

// Error implements the error interface.
func (e *MissingQuoteError) Error() string {
	return fmt.Sprintf("no %s market quote for item %d", e.Market, e.ItemID)
}

// Merge joins the catalog items with both markets' quote sets by item
// id. Output preserves the order of items. Under MissingQuoteFail a
// single missing quote fails the merge as a whole; under
// MissingQuoteSkip the affected item is dropped. An item is never
// emitted with only one quote.
func Merge(items []Item, referenceQuotes, destinationQuotes goonmetrics.QuoteSet, policy MissingQuotePolicy) ([]MergedItem, error) {
	merged := make([]MergedItem, 0, len(items))

	for _, item := range items {
		referenceQuote, ok := referenceQuotes[item.ID]
		if !ok {
			if err := handleMissing(item, MarketReference, policy); err != nil {
				return nil, err
			}
			continue
		}

		destinationQuote, ok := destinationQuotes[item.ID]
		if !ok {
			if err := handleMissing(item, MarketDestination, policy); err != nil {
				return nil, err
			}
			continue
		}

		merged = append(merged, MergedItem{
			Item:        item,
			Reference:   referenceQuote,
			Destination: destinationQuote,
		})
	}

	return merged, nil
}

func handleMissing(item Item, market string, policy MissingQuotePolicy) error {
	err := &MissingQuoteError{ItemID: item.ID, Market: market}
	if policy == MissingQuoteSkip {
		log.Warn().
			Int32("item_id", item.ID).
			Str("item", item.Name).
			Str("market", market).
			Msg("Skipping item with missing quote")
		return nil
	}
	return err
}
