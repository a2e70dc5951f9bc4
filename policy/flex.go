package policy

import (
	"math"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/strategy"
)

// FlexPolicy is the default sizing policy: each bullish signal opens a long
// worth OrderPct of current buying power, each bearish signal closes the
// existing long (or, with Shorting, opens a short). It never pyramids into an
// existing position in the same direction.
type FlexPolicy struct {
	// OrderPct is the fraction of buying power committed per new position,
	// e.g. 0.05. Zero means 1%.
	OrderPct float64

	// Shorting enables opening short positions on sell signals.
	Shorting bool

	// WholeSizes rounds order quantities down to whole units, the right
	// behavior for stocks. Off, quantities keep their fractional precision
	// (crypto, FX).
	WholeSizes bool
}

// Act implements Policy.
func (p *FlexPolicy) Act(signals []strategy.Signal, acct broker.Account, event market.Event) []broker.Order {
	var orders []broker.Order

	orderPct := p.OrderPct
	if orderPct <= 0 {
		orderPct = 0.01
	}

	for _, sig := range signals {
		price, ok := event.Price(sig.Asset)
		if !ok || price <= 0 {
			continue
		}

		pos := acct.Position(sig.Asset)

		switch {
		case sig.Rating > 0:
			if pos.IsLong() {
				continue
			}
			if pos.IsShort() {
				// Close the short first; a new long may follow on the next
				// signal once the book is flat.
				orders = append(orders, broker.NewMarketOrder(sig.Asset, pos.Size.Neg()))
				continue
			}
			if size := p.size(sig.Asset, acct, price, orderPct); !size.IsZero() {
				orders = append(orders, broker.NewMarketOrder(sig.Asset, size))
			}

		case sig.Rating < 0:
			if pos.IsLong() {
				orders = append(orders, broker.NewMarketOrder(sig.Asset, pos.Size.Neg()))
				continue
			}
			if p.Shorting && pos.Size.IsZero() {
				if size := p.size(sig.Asset, acct, price, orderPct); !size.IsZero() {
					orders = append(orders, broker.NewMarketOrder(sig.Asset, size.Neg()))
				}
			}
		}
	}

	return orders
}

func (p *FlexPolicy) size(asset market.Asset, acct broker.Account, price, orderPct float64) money.Size {
	budget := acct.BuyingPower.Value * orderPct
	if budget <= 0 {
		return money.Size{}
	}
	qty := budget / (price * asset.ContractMultiplier())
	if p.WholeSizes {
		qty = math.Floor(qty)
	}
	return money.NewSize(qty)
}
