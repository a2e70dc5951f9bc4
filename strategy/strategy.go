// Package strategy defines the signal-generation contract consumed by the
// run orchestrator, plus a reference EMA crossover implementation.
package strategy

import (
	"github.com/quantlab/backsim/market"
)

// Rating bounds for Signal. Positive ratings are bullish, negative bearish;
// magnitude expresses conviction.
const (
	Buy  = 1.0
	Sell = -1.0
)

// Signal is a strategy's directional opinion on an asset, not yet sized into
// an order. Sizing is the policy layer's job.
type Signal struct {
	Asset  market.Asset
	Rating float64
}

// Strategy turns one market event into zero or more signals. Implementations
// may keep indicator state, but must not touch account state: the account is
// only visible to the policy layer.
type Strategy interface {
	Generate(event market.Event) []Signal
}
