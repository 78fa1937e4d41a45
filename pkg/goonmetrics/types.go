package goonmetrics

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Quote is one market's price snapshot for a single item.
// All numeric fields arrive as strings on the wire and are parsed by
// the client; a Quote always carries fully parsed values.
type Quote struct {
	Updated        string  `json:"updated"`
	WeeklyMovement float64 `json:"weekly_movement"`
	BuyMax         float64 `json:"buy_max"`
	BuyListed      int64   `json:"buy_listed"`
	SellMin        float64 `json:"sell_min"`
	SellListed     int64   `json:"sell_listed"`
}

// ItemQuote pairs a quote with the item id it belongs to, as returned
// by a single price_data request.
type ItemQuote struct {
	ID    int32 `json:"id"`
	Quote Quote `json:"quote"`
}

// QuoteSet maps item id to exactly one quote within one market.
type QuoteSet map[int32]Quote

// Wire schema of the goonmetrics price_data response:
//
//	<goonmetrics>
//	  <price_data>
//	    <type id="34" updated="...">
//	      <all><weekly_movement>...</weekly_movement></all>
//	      <buy><listed>...</listed><max>...</max></buy>
//	      <sell><listed>...</listed><min>...</min></sell>
//	    </type>
//	  </price_data>
//	</goonmetrics>
type priceDocument struct {
	XMLName   xml.Name  `xml:"goonmetrics"`
	PriceData priceData `xml:"price_data"`
}

type priceData struct {
	Types []typeEntry `xml:"type"`
}

type typeEntry struct {
	ID      int32  `xml:"id,attr"`
	Updated string `xml:"updated,attr"`
	All     struct {
		WeeklyMovement string `xml:"weekly_movement"`
	} `xml:"all"`
	Buy struct {
		Listed string `xml:"listed"`
		Max    string `xml:"max"`
	} `xml:"buy"`
	Sell struct {
		Listed string `xml:"listed"`
		Min    string `xml:"min"`
	} `xml:"sell"`
}

// parsePriceData decodes a price_data response body into item quotes.
// Any malformed document or unparsable numeric field is an error; a
// quote is never built from partially parsed values.
func parsePriceData(body []byte) ([]ItemQuote, error) {
	var doc priceDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode price_data: %w", err)
	}

	quotes := make([]ItemQuote, 0, len(doc.PriceData.Types))
	for _, entry := range doc.PriceData.Types {
		quote, err := entry.toQuote()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", entry.ID, err)
		}
		quotes = append(quotes, ItemQuote{ID: entry.ID, Quote: quote})
	}
	return quotes, nil
}

func (e typeEntry) toQuote() (Quote, error) {
	weeklyMovement, err := parseFloat("all.weekly_movement", e.All.WeeklyMovement)
	if err != nil {
		return Quote{}, err
	}
	buyMax, err := parseFloat("buy.max", e.Buy.Max)
	if err != nil {
		return Quote{}, err
	}
	buyListed, err := parseInt("buy.listed", e.Buy.Listed)
	if err != nil {
		return Quote{}, err
	}
	sellMin, err := parseFloat("sell.min", e.Sell.Min)
	if err != nil {
		return Quote{}, err
	}
	sellListed, err := parseInt("sell.listed", e.Sell.Listed)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Updated:        e.Updated,
		WeeklyMovement: weeklyMovement,
		BuyMax:         buyMax,
		BuyListed:      buyListed,
		SellMin:        sellMin,
		SellListed:     sellListed,
	}, nil
}

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return f, nil
}

func parseInt(field, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return n, nil
}
