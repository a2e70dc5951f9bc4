// Package broker defines the order/execution model, the immutable Account
// snapshot and the Broker contract implemented by the simulator and by live
// adapters.
package broker

import (
	"fmt"

	"github.com/quantlab/backsim/internal/id"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// Order is the sealed set of order variants the engine can match. The sign
// of Size encodes the side: positive buys, negative sells. Orders are created
// once, get a unique time-sortable ID at construction, and never mutate;
// only their associated OrderStatus changes.
type Order interface {
	ID() string
	Asset() market.Asset
	Size() money.Size

	// sealed keeps the variant set closed so the engine's dispatch stays
	// exhaustive.
	sealed()
}

type baseOrder struct {
	id    string
	asset market.Asset
	size  money.Size
}

func newBase(asset market.Asset, size money.Size) baseOrder {
	return baseOrder{id: id.New(), asset: asset, size: size}
}

func (b baseOrder) ID() string          { return b.id }
func (b baseOrder) Asset() market.Asset { return b.asset }
func (b baseOrder) Size() money.Size    { return b.size }
func (b baseOrder) sealed()             {}

// MarketOrder fills at the next available price for its asset.
type MarketOrder struct {
	baseOrder
}

func NewMarketOrder(asset market.Asset, size money.Size) MarketOrder {
	return MarketOrder{newBase(asset, size)}
}

func (o MarketOrder) String() string {
	return fmt.Sprintf("MARKET %s %s [%s]", o.size, o.asset, o.id)
}

// LimitOrder fills only at the limit price or better.
type LimitOrder struct {
	baseOrder
	limit float64
}

func NewLimitOrder(asset market.Asset, size money.Size, limit float64) LimitOrder {
	return LimitOrder{newBase(asset, size), limit}
}

func (o LimitOrder) Limit() float64 { return o.limit }

func (o LimitOrder) String() string {
	return fmt.Sprintf("LIMIT %s %s @%g [%s]", o.size, o.asset, o.limit, o.id)
}

// StopOrder becomes a market order once the price crosses the stop level in
// the adverse direction.
type StopOrder struct {
	baseOrder
	stop float64
}

func NewStopOrder(asset market.Asset, size money.Size, stop float64) StopOrder {
	return StopOrder{newBase(asset, size), stop}
}

func (o StopOrder) Stop() float64 { return o.stop }

func (o StopOrder) String() string {
	return fmt.Sprintf("STOP %s %s @%g [%s]", o.size, o.asset, o.stop, o.id)
}

// StopLimitOrder becomes a live limit order once the stop level is crossed.
type StopLimitOrder struct {
	baseOrder
	stop  float64
	limit float64
}

func NewStopLimitOrder(asset market.Asset, size money.Size, stop, limit float64) StopLimitOrder {
	return StopLimitOrder{newBase(asset, size), stop, limit}
}

func (o StopLimitOrder) Stop() float64  { return o.stop }
func (o StopLimitOrder) Limit() float64 { return o.limit }

func (o StopLimitOrder) String() string {
	return fmt.Sprintf("STOPLIMIT %s %s stop@%g limit@%g [%s]", o.size, o.asset, o.stop, o.limit, o.id)
}

// TrailOrder is a stop whose level trails the best observed price since
// placement by a fixed percentage. The level only ever tightens.
type TrailOrder struct {
	baseOrder
	trail float64 // fraction, e.g. 0.05 for 5%
}

func NewTrailOrder(asset market.Asset, size money.Size, trail float64) TrailOrder {
	return TrailOrder{newBase(asset, size), trail}
}

func (o TrailOrder) Trail() float64 { return o.trail }

func (o TrailOrder) String() string {
	return fmt.Sprintf("TRAIL %s %s %.2f%% [%s]", o.size, o.asset, o.trail*100, o.id)
}

// CancelOrder requests cancellation of an open order by ID. It carries no
// asset or size of its own.
type CancelOrder struct {
	baseOrder
	target string
}

func NewCancelOrder(targetID string) CancelOrder {
	return CancelOrder{baseOrder{id: id.New()}, targetID}
}

func (o CancelOrder) Target() string { return o.target }

func (o CancelOrder) String() string {
	return fmt.Sprintf("CANCEL %s [%s]", o.target, o.id)
}
