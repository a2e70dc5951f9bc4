package broker

import (
	"time"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// Account is the immutable snapshot of an account at a point in simulated
// time. It is a structurally independent value copy: holding on to one
// snapshot while the engine advances is always safe, and mutating a snapshot
// never reaches the live account.
type Account struct {
	BaseCurrency money.Currency
	Cash         money.Wallet
	Positions    map[market.Asset]Position

	// OpenOrders holds the order states tracked at snapshot time, in
	// submission order. It includes orders that reached a terminal state
	// during the step the snapshot was taken, so callers can observe
	// rejections and completions before the engine prunes them.
	OpenOrders []OrderState

	Trades      []Trade
	BuyingPower money.Amount
	LastUpdate  time.Time
}

// Position returns the position for an asset, a zero-size position if none.
func (a Account) Position(asset market.Asset) Position {
	if p, ok := a.Positions[asset]; ok {
		return p
	}
	return Position{Asset: asset}
}

// OrderState returns the tracked state for an order ID, if present.
func (a Account) OrderState(orderID string) (OrderState, bool) {
	for _, s := range a.OpenOrders {
		if s.Order.ID() == orderID {
			return s, true
		}
	}
	return OrderState{}, false
}

// MarketValue returns the summed notional value of all positions as a wallet
// keyed by asset currency.
func (a Account) MarketValue() money.Wallet {
	w := money.NewWallet()
	for _, p := range a.Positions {
		w.Deposit(p.MarketValue())
	}
	return w
}

// UnrealizedPnL returns the summed unrealized PnL of all positions as a
// wallet keyed by asset currency.
func (a Account) UnrealizedPnL() money.Wallet {
	w := money.NewWallet()
	for _, p := range a.Positions {
		w.Deposit(p.UnrealizedPnL())
	}
	return w
}

// Equity returns cash plus position market value as a wallet.
func (a Account) Equity() money.Wallet {
	return a.Cash.Add(a.MarketValue())
}

// EquityAmount collapses Equity into the base currency using the supplied
// rates at the snapshot time.
func (a Account) EquityAmount(rates money.ExchangeRates) (money.Amount, error) {
	return a.Equity().Convert(a.BaseCurrency, rates, a.LastUpdate)
}

// Broker is the capability this core exposes to the orchestrator and that
// live-trading adapters implement against a real exchange.
type Broker interface {
	// Place registers the given orders, matches everything open against the
	// event and returns the resulting account snapshot. One call per
	// simulated time step; orders are only ever matched against the prices
	// in this event.
	Place(orders []Order, event market.Event) (Account, error)

	// Account returns the latest snapshot without advancing time.
	Account() Account
}
