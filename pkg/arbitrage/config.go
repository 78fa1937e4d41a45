package arbitrage

// Default trade constants, matching the Jita-to-staging haul the tool
// was built around. Tests and deployments override them through Config.
const (
	// DefaultDeliveryPricePerVolume is ISK per cubic meter shipped.
	DefaultDeliveryPricePerVolume = 850.0

	// DefaultReferenceTaxRate is the broker/transaction tax applied on
	// reference-market buy orders.
	DefaultReferenceTaxRate = 0.0108

	// DefaultDestinationTaxRate is the transaction tax applied on
	// destination-market sell orders.
	DefaultDestinationTaxRate = 0.056
)

// Config carries the trade constants of the metric chain. It is passed
// explicitly so tests can vary every constant.
type Config struct {
	// DeliveryPricePerVolume is the shipping cost per cubic meter.
	DeliveryPricePerVolume float64

	// ReferenceTaxRate applies on top of reference-market buy prices.
	ReferenceTaxRate float64

	// DestinationTaxRate is deducted from destination-market sell prices.
	DestinationTaxRate float64

	// MissingQuotePolicy decides whether a missing quote aborts the run
	// or drops the affected item.
	MissingQuotePolicy MissingQuotePolicy
}

// DefaultConfig returns the default trade constants.
func DefaultConfig() Config {
	return Config{
		DeliveryPricePerVolume: DefaultDeliveryPricePerVolume,
		ReferenceTaxRate:       DefaultReferenceTaxRate,
		DestinationTaxRate:     DefaultDestinationTaxRate,
		MissingQuotePolicy:     MissingQuoteFail,
	}
}
