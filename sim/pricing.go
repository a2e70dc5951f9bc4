package sim

import (
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// PricingEngine turns the raw event price into the price an order actually
// fills at, modelling spread and slippage. Implementations are pure: no state
// beyond construction-time parameters, so a single instance may be shared.
type PricingEngine interface {
	// Adjust returns the fill price for an order of the given signed size.
	// The adjustment always goes against the trader: buys pay up, sells
	// receive less.
	Adjust(asset market.Asset, price float64, size money.Size) float64
}

// NoCostPricing fills at the raw event price.
type NoCostPricing struct{}

func (NoCostPricing) Adjust(asset market.Asset, price float64, size money.Size) float64 {
	return price
}

// SpreadPricing widens the price by half the configured spread against the
// order side, on entry and on exit alike.
type SpreadPricing struct {
	Bips float64
}

func (s SpreadPricing) Adjust(asset market.Asset, price float64, size money.Size) float64 {
	half := s.Bips / 2.0 / 10_000.0
	return price * (1.0 + float64(size.Sign())*half)
}
