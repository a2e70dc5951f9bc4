package sim

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// ErrUnsupportedOrder is recorded when the engine receives an order variant
// it cannot match. The order is rejected, never silently dropped, and the run
// continues.
var ErrUnsupportedOrder = errors.New("sim: unsupported order type")

// Config is the explicit per-engine configuration. There is no ambient
// global state: two engines with different configs can run concurrently
// without interference.
type Config struct {
	BaseCurrency money.Currency
	Deposit      money.Wallet
	Rates        money.ExchangeRates
	Pricing      PricingEngine
	Fees         FeeModel
	AccountModel AccountModel
	TIF          TimeInForce
	Logger       zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.BaseCurrency == "" {
		c.BaseCurrency = money.USD
	}
	if c.Deposit == nil {
		c.Deposit = money.NewWallet(money.NewAmount(c.BaseCurrency, 100_000))
	}
	if c.Rates == nil {
		c.Rates = money.SingleCurrencyRates{}
	}
	if c.Pricing == nil {
		c.Pricing = NoCostPricing{}
	}
	if c.Fees == nil {
		c.Fees = NoFee{}
	}
	if c.AccountModel == nil {
		c.AccountModel = CashAccount{}
	}
	if c.TIF == nil {
		c.TIF = GTC{}
	}
	return c
}

// matchState is the engine-private matching state that some order variants
// need across steps: the best observed price for trail orders and the armed
// flag for stop-limits. Keyed by order ID, pruned together with the order.
type matchState struct {
	best  float64
	seen  bool
	armed bool
}

// Engine is the simulated broker. It owns one InternalAccount exclusively
// and is itself owned by exactly one simulation run, so it needs no internal
// locking; the only synchronization in the system is the job pool barrier.
//
// Engine implements broker.Broker.
type Engine struct {
	account  *InternalAccount
	pricing  PricingEngine
	fees     FeeModel
	model    AccountModel
	tif      TimeInForce
	log      zerolog.Logger
	matching map[string]*matchState
	last     broker.Account
}

// NewEngine returns an engine funded with the configured deposit.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()

	acct := NewInternalAccount(cfg.BaseCurrency, cfg.Rates)
	for c, v := range cfg.Deposit {
		acct.Deposit(money.NewAmount(c, v))
	}

	e := &Engine{
		account:  acct,
		pricing:  cfg.Pricing,
		fees:     cfg.Fees,
		model:    cfg.AccountModel,
		tif:      cfg.TIF,
		log:      cfg.Logger.With().Str("component", "sim").Logger(),
		matching: make(map[string]*matchState),
	}
	e.last = acct.Snapshot()
	return e
}

// Account returns the latest snapshot without advancing time.
func (e *Engine) Account() broker.Account {
	return e.last
}

// InternalAccount exposes the live aggregate for in-package collaborators
// such as live-adapter commission handling. Callers outside the owning run
// must never touch it.
func (e *Engine) InternalAccount() *InternalAccount {
	return e.account
}

// Place registers the submitted orders and matches everything open against
// the event. One call per simulated time step.
//
// No order is ever matched against a price from a different event than the
// one passed here; that is the engine's no-look-ahead guarantee.
func (e *Engine) Place(orders []broker.Order, event market.Event) (broker.Account, error) {
	now := event.Time

	// Time-in-force runs before matching, on carried-over orders only; an
	// order submitted this step cannot expire in the same step.
	for _, entry := range e.account.entries {
		if entry.status.Open() && e.tif.Expired(entry.placedAt, now) {
			entry.status = broker.Expired
			e.log.Debug().Str("order", entry.order.ID()).Str("tif", e.tif.String()).Msg("order expired")
		}
	}

	// Register new orders, idempotently. Initial -> Accepted happens here;
	// submission order is preserved and ULIDs make IDs ascend with it.
	for _, o := range orders {
		if o == nil {
			continue
		}
		e.account.register(o, now)
	}

	for _, entry := range e.account.entries {
		if entry.status.Open() {
			e.match(entry, event)
		}
	}

	e.account.lastUpdate = now
	e.account.markSpot(event)

	bp, err := e.model.BuyingPower(e.account)
	if err != nil {
		return broker.Account{}, err
	}
	e.account.buyingPower = bp

	snapshot := e.account.Snapshot()
	e.prune()
	e.last = snapshot
	return snapshot, nil
}

// match evaluates a single open order against the current event, dispatching
// on the order variant.
func (e *Engine) match(entry *orderEntry, event market.Event) {
	switch o := entry.order.(type) {
	case broker.CancelOrder:
		e.cancel(entry, o)
		return
	case broker.MarketOrder:
		if price, ok := e.adjusted(o, event); ok {
			e.fill(entry, price, event)
		}
	case broker.LimitOrder:
		if price, ok := e.adjusted(o, event); ok && limitReached(o.Size(), price, o.Limit()) {
			e.fill(entry, price, event)
		}
	case broker.StopOrder:
		if price, ok := e.adjusted(o, event); ok && stopReached(o.Size(), price, o.Stop()) {
			e.fill(entry, price, event)
		}
	case broker.StopLimitOrder:
		price, ok := e.adjusted(o, event)
		if !ok {
			return
		}
		st := e.state(o.ID())
		if !st.armed && stopReached(o.Size(), price, o.Stop()) {
			st.armed = true
		}
		if st.armed && limitReached(o.Size(), price, o.Limit()) {
			e.fill(entry, price, event)
		}
	case broker.TrailOrder:
		price, ok := e.adjusted(o, event)
		if !ok {
			return
		}
		if stopReached(o.Size(), price, e.trailStop(o, price)) {
			e.fill(entry, price, event)
		}
	default:
		entry.status = broker.Rejected
		e.log.Warn().Err(ErrUnsupportedOrder).
			Str("order", entry.order.ID()).
			Type("type", entry.order).
			Msg("order rejected")
	}
}

// cancel resolves a CancelOrder: the target moves to Cancelled if it is still
// open, otherwise the cancel itself is rejected.
func (e *Engine) cancel(entry *orderEntry, o broker.CancelOrder) {
	target, ok := e.account.byID[o.Target()]
	if !ok || target.status.Closed() {
		entry.status = broker.Rejected
		return
	}
	target.status = broker.Cancelled
	entry.status = broker.Completed
}

// adjusted returns the pricing-engine-adjusted price for the order's asset,
// or false when the asset has no price in this event (the order stays open).
func (e *Engine) adjusted(o broker.Order, event market.Event) (float64, bool) {
	raw, ok := event.Price(o.Asset())
	if !ok {
		return 0, false
	}
	return e.pricing.Adjust(o.Asset(), raw, o.Size()), true
}

// trailStop updates the best observed price for a trail order and returns the
// resulting stop level. The level is monotone: it only ever tightens.
func (e *Engine) trailStop(o broker.TrailOrder, price float64) float64 {
	st := e.state(o.ID())
	if !st.seen {
		st.best = price
		st.seen = true
	} else if o.Size().IsNegative() && price > st.best {
		// Sell trail rides the high.
		st.best = price
	} else if o.Size().IsPositive() && price < st.best {
		// Buy trail rides the low.
		st.best = price
	}

	if o.Size().IsNegative() {
		return st.best * (1.0 - o.Trail())
	}
	return st.best * (1.0 + o.Trail())
}

func (e *Engine) state(orderID string) *matchState {
	st, ok := e.matching[orderID]
	if !ok {
		st = &matchState{}
		e.matching[orderID] = st
	}
	return st
}

// fill executes the order for its full size at the given price.
func (e *Engine) fill(entry *orderEntry, price float64, event market.Event) {
	exec := broker.Execution{Order: entry.order, Time: event.Time, Price: price}
	fee := e.fees.Calculate(exec)
	pnl := e.account.applyFill(exec, fee)
	entry.status = broker.Completed

	e.log.Debug().
		Str("order", entry.order.ID()).
		Stringer("asset", entry.order.Asset()).
		Stringer("size", entry.order.Size()).
		Float64("price", price).
		Float64("fee", fee).
		Float64("pnl", pnl).
		Msg("order filled")
}

// prune drops terminal orders and their matching state. Runs after the
// snapshot so every terminal status is observable exactly once.
func (e *Engine) prune() {
	for _, entry := range e.account.entries {
		if entry.status.Closed() {
			delete(e.matching, entry.order.ID())
		}
	}
	e.account.pruneClosed()
}

// limitReached reports whether the adjusted price satisfies the limit: buys
// fill at or below it, sells at or above it.
func limitReached(size money.Size, price, limit float64) bool {
	if size.IsPositive() {
		return price <= limit
	}
	return price >= limit
}

// stopReached reports whether the adjusted price crossed the stop in the
// adverse direction: sell stops trigger at or below, buy stops at or above.
func stopReached(size money.Size, price, stop float64) bool {
	if size.IsPositive() {
		return price >= stop
	}
	return price <= stop
}
