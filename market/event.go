package market

import (
	"time"
)

// PriceAction is a single asset's price information inside one event.
type PriceAction interface {
	// Price returns the reference price used for matching.
	Price() float64
	// Volume returns the traded volume, or 0 when unknown.
	Volume() float64
}

// TradePrice is a single traded price, the common shape for tick data.
type TradePrice struct {
	Value float64
	Vol   float64
}

func (p TradePrice) Price() float64  { return p.Value }
func (p TradePrice) Volume() float64 { return p.Vol }

// Candle is an OHLCV bar. Price returns the close.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

func (c Candle) Price() float64  { return c.Close }
func (c Candle) Volume() float64 { return c.Vol }

// Event is a timestamped bundle of price actions, the unit of simulation time
// advance. Events are immutable once produced by a feed.
type Event struct {
	Time   time.Time
	Prices map[Asset]PriceAction
}

// NewEvent returns an event for the given time.
func NewEvent(t time.Time, prices map[Asset]PriceAction) Event {
	if prices == nil {
		prices = map[Asset]PriceAction{}
	}
	return Event{Time: t, Prices: prices}
}

// Price returns the matching price for the asset, if present in this event.
func (e Event) Price(a Asset) (float64, bool) {
	pa, ok := e.Prices[a]
	if !ok {
		return 0, false
	}
	return pa.Price(), true
}

// Assets returns the assets present in this event, in no particular order.
func (e Event) Assets() []Asset {
	out := make([]Asset, 0, len(e.Prices))
	for a := range e.Prices {
		out = append(out, a)
	}
	return out
}
