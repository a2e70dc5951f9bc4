// Package policy converts strategy signals into sized orders given the
// current account snapshot.
package policy

import (
	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/strategy"
)

// Policy sizes signals into concrete orders. It receives an immutable
// account snapshot and must not attempt to work around that immutability;
// any sizing/risk state it needs it keeps itself.
type Policy interface {
	Act(signals []strategy.Signal, acct broker.Account, event market.Event) []broker.Order
}

// Func adapts a plain function to the Policy interface.
type Func func(signals []strategy.Signal, acct broker.Account, event market.Event) []broker.Order

func (f Func) Act(signals []strategy.Signal, acct broker.Account, event market.Event) []broker.Order {
	return f(signals, acct, event)
}
