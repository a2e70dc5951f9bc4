package broker

import (
	"fmt"
	"time"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// Execution records a single all-or-nothing fill of an order against one
// event. The design has no multi-level partial fills: an order produces at
// most one execution per event, for its full size.
type Execution struct {
	Order Order
	Time  time.Time
	Price float64
}

// Size returns the filled quantity, sign encoding the side.
func (e Execution) Size() money.Size { return e.Order.Size() }

// Asset returns the filled asset.
func (e Execution) Asset() market.Asset { return e.Order.Asset() }

// Value returns the signed notional value of the fill in the asset currency.
func (e Execution) Value() money.Amount {
	return e.Asset().Value(e.Size(), e.Price)
}

// Trade is the immutable historical record of a fill. Trades are appended to
// an ordered log that is never re-ordered; the one sanctioned exception is
// amending Fee and PnL by order identity when a commission report arrives
// later (live adapters).
type Trade struct {
	Time    time.Time
	Asset   market.Asset
	Size    money.Size
	Price   float64
	Fee     float64 // asset currency
	PnL     float64 // realized, asset currency
	OrderID string
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s @%g fee=%g pnl=%g", t.Time.Format(time.RFC3339), t.Size, t.Asset, t.Price, t.Fee, t.PnL)
}

// Position is the holding in a single asset. Zero-size positions are never
// retained; closing a position removes it.
type Position struct {
	Asset      market.Asset
	Size       money.Size
	AvgPrice   float64
	SpotPrice  float64
	LastUpdate time.Time
}

// IsLong reports whether the position size is positive.
func (p Position) IsLong() bool { return p.Size.IsPositive() }

// IsShort reports whether the position size is negative.
func (p Position) IsShort() bool { return p.Size.IsNegative() }

// MarketValue returns the current notional value of the position.
func (p Position) MarketValue() money.Amount {
	return p.Asset.Value(p.Size, p.SpotPrice)
}

// Exposure returns the absolute notional value of the position.
func (p Position) Exposure() money.Amount {
	v := p.MarketValue()
	if v.Value < 0 {
		v.Value = -v.Value
	}
	return v
}

// UnrealizedPnL returns (spot - avg) * size * multiplier in the asset
// currency.
func (p Position) UnrealizedPnL() money.Amount {
	return p.Asset.Value(p.Size, p.SpotPrice-p.AvgPrice)
}
