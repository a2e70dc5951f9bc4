// Package feed defines the market-data feed contract and a few concrete
// feeds: in-memory, CSV files and a deterministic random walk.
//
// A Feed is shared, read-only and re-iterable: every run asks for its own
// Source, so any number of concurrent runs can consume the same feed without
// coordination.
package feed

import (
	"context"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/timeframe"
)

// Source yields events one at a time, in non-decreasing time order.
// Implementations return ok=false with a nil error at the end of data.
type Source interface {
	Next() (ev market.Event, ok bool, err error)
	Close() error
}

// Feed produces a fresh Source bounded by the given timeframe.
type Feed interface {
	Events(ctx context.Context, tf timeframe.Timeframe) (Source, error)
}
