// Package market defines the instrument and market-event types consumed by
// the simulator: Asset, PriceAction and Event.
package market

import (
	"fmt"

	"github.com/quantlab/backsim/money"
)

// Asset identifies a tradable instrument. Asset is a small comparable value
// type so it can key maps directly.
type Asset struct {
	Symbol   string
	Currency money.Currency

	// Multiplier scales quantity into notional value, e.g. contract size for
	// futures. Zero means 1.
	Multiplier float64
}

// NewAsset returns an asset with multiplier 1.
func NewAsset(symbol string, currency money.Currency) Asset {
	return Asset{Symbol: symbol, Currency: currency, Multiplier: 1}
}

// ContractMultiplier returns the effective multiplier, treating the zero
// value as 1 so a bare Asset literal behaves sensibly.
func (a Asset) ContractMultiplier() float64 {
	if a.Multiplier == 0 {
		return 1
	}
	return a.Multiplier
}

// Value returns the notional value of the given quantity at a price.
func (a Asset) Value(size money.Size, price float64) money.Amount {
	return money.NewAmount(a.Currency, size.Float64()*price*a.ContractMultiplier())
}

func (a Asset) String() string {
	return fmt.Sprintf("%s/%s", a.Symbol, a.Currency)
}
