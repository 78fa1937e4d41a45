// Package display renders enriched trade records as a text table for
// the terminal, ranked by daily profit.
package display

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/arbitrage"
)

// Options controls ranking and filtering of the rendered table.
type Options struct {
	// MinProfitDaily hides rankable items below this daily profit.
	// Zero disables the filter.
	MinProfitDaily float64

	// MinFreezeRate hides rankable items below this capital-efficiency
	// rate. Zero disables the filter.
	MinFreezeRate float64
}

var headers = []string{
	"ITEM",
	"VOLUME",
	"REF BUY+TAX",
	"DEST SELL-TAX",
	"SHIPPING",
	"PROFIT/UNIT",
	"AVG DAILY",
	"PROFIT DAILY",
	"MARGIN",
	"FREEZE RATE",
}

// Render writes the enriched items as a table. Rankable items come
// first, sorted by daily profit descending and filtered per opts;
// unrankable items (no destination liquidity) follow unranked so a
// stale tracked item stays visible instead of silently vanishing.
func Render(w io.Writer, items []arbitrage.EnrichedItem, opts Options) error {
	ranked := make([]arbitrage.EnrichedItem, 0, len(items))
	unranked := make([]arbitrage.EnrichedItem, 0)

	for _, item := range items {
		if !item.Rankable {
			unranked = append(unranked, item)
			continue
		}
		if opts.MinProfitDaily > 0 && item.ProfitDaily < opts.MinProfitDaily {
			continue
		}
		if opts.MinFreezeRate > 0 && item.FreezeRate < opts.MinFreezeRate {
			continue
		}
		ranked = append(ranked, item)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ProfitDaily > ranked[j].ProfitDaily
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, item := range append(ranked, unranked...) {
		row := []string{
			item.Name,
			FormatAmount(item.Volume),
			FormatAmount(item.ReferenceBuyWithTax),
			FormatAmount(item.DestinationSellTaxed),
			FormatAmount(item.ShippingPrice),
			FormatAmount(item.ProfitPerUnit),
			FormatAmount(item.DestinationAvgDaily),
			FormatAmount(item.ProfitDaily),
			FormatPercent(item.MarginRatio),
			FormatPercent(item.FreezeRate),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// FormatAmount renders a value with thousands separators and two
// decimals. NaN renders as a dash: the metric is undefined, not zero.
func FormatAmount(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if math.IsInf(v, 0) {
		return "inf"
	}

	negative := v < 0
	formatted := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)

	parts := strings.SplitN(formatted, ".", 2)
	whole := parts[0]

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String() + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPercent renders a ratio as a percentage with two decimals.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
