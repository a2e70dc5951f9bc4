// Package sim implements the simulated brokerage: the order-matching engine,
// the mutable account aggregate it owns, and the pluggable pricing, fee and
// account-model strategies.
package sim

import (
	"fmt"
	"time"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// orderEntry is the engine-side bookkeeping for one order. The order itself
// never changes; only the status does. Entries keep their submission order in
// the entries slice so matching is deterministic across runs.
type orderEntry struct {
	order    broker.Order
	status   broker.OrderStatus
	placedAt time.Time
}

// InternalAccount is the single-owner mutable account aggregate. It is owned
// exclusively by one Engine, which is in turn owned by exactly one simulation
// run; this ownership partition is why no locking happens here. Everything
// downstream of the engine sees only immutable snapshots.
type InternalAccount struct {
	baseCurrency money.Currency
	rates        money.ExchangeRates
	cash         money.Wallet
	positions    map[market.Asset]broker.Position
	entries      []*orderEntry
	byID         map[string]*orderEntry
	trades       []broker.Trade
	buyingPower  money.Amount
	lastUpdate   time.Time
}

// NewInternalAccount returns an empty account in the given base currency.
func NewInternalAccount(base money.Currency, rates money.ExchangeRates) *InternalAccount {
	if rates == nil {
		rates = money.SingleCurrencyRates{}
	}
	return &InternalAccount{
		baseCurrency: base,
		rates:        rates,
		cash:         money.NewWallet(),
		positions:    make(map[market.Asset]broker.Position),
		byID:         make(map[string]*orderEntry),
		buyingPower:  money.Amount{Currency: base},
	}
}

// Deposit adds cash to the account. Used for the initial funding and by
// tests; fills go through applyFill.
func (a *InternalAccount) Deposit(amount money.Amount) {
	a.cash.Deposit(amount)
}

// register adds a new order in Accepted state. Registration is idempotent:
// an ID that is already tracked is left untouched and false is returned.
func (a *InternalAccount) register(o broker.Order, at time.Time) bool {
	if _, ok := a.byID[o.ID()]; ok {
		return false
	}
	e := &orderEntry{order: o, status: broker.Accepted, placedAt: at}
	a.entries = append(a.entries, e)
	a.byID[o.ID()] = e
	return true
}

// applyFill mutates cash, position and the trade log for one execution and
// returns the realized PnL in the asset currency.
//
// Position bookkeeping uses weighted-average cost: increasing a position
// blends the fill into the average price; reducing one realizes
// (price - avg) * closedQuantity * sign(oldPosition) * multiplier. A fill
// that crosses through zero opens the remainder at the fill price.
func (a *InternalAccount) applyFill(exec broker.Execution, fee float64) float64 {
	asset := exec.Asset()
	fill := exec.Size()
	price := exec.Price
	mult := asset.ContractMultiplier()

	pos := a.positions[asset]
	pos.Asset = asset
	realized := 0.0

	oldSize := pos.Size
	newSize := oldSize.Add(fill)

	switch {
	case oldSize.IsZero() || oldSize.Sign() == fill.Sign():
		// Opening or increasing: blend into the weighted average.
		pos.AvgPrice = (oldSize.Float64()*pos.AvgPrice + fill.Float64()*price) / newSize.Float64()
	case newSize.Sign() == oldSize.Sign():
		// Partial close: average price unchanged.
		closed := fill.Abs()
		realized = (price - pos.AvgPrice) * closed.Float64() * float64(oldSize.Sign()) * mult
	case newSize.IsZero():
		// Full close.
		realized = (price - pos.AvgPrice) * oldSize.Float64() * mult
		pos.AvgPrice = 0
	default:
		// Close and flip: realize on the full old position, open the
		// remainder at the fill price.
		realized = (price - pos.AvgPrice) * oldSize.Float64() * mult
		pos.AvgPrice = price
	}

	pos.Size = newSize
	pos.SpotPrice = price
	pos.LastUpdate = exec.Time

	if newSize.IsZero() {
		delete(a.positions, asset)
	} else {
		a.positions[asset] = pos
	}

	a.cash.Deposit(money.NewAmount(asset.Currency, -(fill.Float64()*price*mult)-fee))

	a.trades = append(a.trades, broker.Trade{
		Time:    exec.Time,
		Asset:   asset,
		Size:    fill,
		Price:   price,
		Fee:     fee,
		PnL:     realized,
		OrderID: exec.Order.ID(),
	})

	return realized
}

// AmendTrade patches the fee and pnl of the trade created by the given order,
// identified by order ID. This is the one sanctioned mutation of the trade
// log, for commission reports arriving after the fill (live adapters).
func (a *InternalAccount) AmendTrade(orderID string, fee, pnl float64) error {
	for i := range a.trades {
		if a.trades[i].OrderID == orderID {
			a.trades[i].Fee = fee
			a.trades[i].PnL = pnl
			return nil
		}
	}
	return fmt.Errorf("sim: amend trade: no trade for order %s", orderID)
}

// markSpot refreshes the spot price of any position present in the event so
// unrealized PnL and market value reflect the latest prices.
func (a *InternalAccount) markSpot(event market.Event) {
	for asset, pos := range a.positions {
		if price, ok := event.Price(asset); ok {
			pos.SpotPrice = price
			pos.LastUpdate = event.Time
			a.positions[asset] = pos
		}
	}
}

// equity returns cash plus position market value as a wallet.
func (a *InternalAccount) equity() money.Wallet {
	w := a.cash.Clone()
	for _, p := range a.positions {
		w.Deposit(p.MarketValue())
	}
	return w
}

// Snapshot produces an immutable, structurally independent Account. Maps and
// slices are copied by value; nothing in the returned snapshot aliases the
// live aggregate.
func (a *InternalAccount) Snapshot() broker.Account {
	positions := make(map[market.Asset]broker.Position, len(a.positions))
	for asset, p := range a.positions {
		positions[asset] = p
	}

	orders := make([]broker.OrderState, 0, len(a.entries))
	for _, e := range a.entries {
		orders = append(orders, broker.OrderState{Order: e.order, Status: e.status, PlacedAt: e.placedAt})
	}

	trades := make([]broker.Trade, len(a.trades))
	copy(trades, a.trades)

	return broker.Account{
		BaseCurrency: a.baseCurrency,
		Cash:         a.cash.Clone(),
		Positions:    positions,
		OpenOrders:   orders,
		Trades:       trades,
		BuyingPower:  a.buyingPower,
		LastUpdate:   a.lastUpdate,
	}
}

// pruneClosed drops entries in a terminal state. Called after the snapshot,
// so callers still observe the final status of every order exactly once.
func (a *InternalAccount) pruneClosed() {
	open := a.entries[:0]
	for _, e := range a.entries {
		if e.status.Open() {
			open = append(open, e)
		} else {
			delete(a.byID, e.order.ID())
		}
	}
	a.entries = open
}
