package feed

import (
	"context"
	"sort"
	"time"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/timeframe"
)

// MemoryFeed serves a fixed set of events from memory. Add is not safe to
// call once the feed is being consumed; build the feed first, then share it.
type MemoryFeed struct {
	events []market.Event
}

// NewMemoryFeed returns a feed over the given events, sorted by time.
func NewMemoryFeed(events ...market.Event) *MemoryFeed {
	f := &MemoryFeed{}
	f.Add(events...)
	return f
}

// Add inserts events, keeping the sequence sorted by time.
func (f *MemoryFeed) Add(events ...market.Event) {
	f.events = append(f.events, events...)
	sort.SliceStable(f.events, func(i, j int) bool {
		return f.events[i].Time.Before(f.events[j].Time)
	})
}

// AddPrice appends a single-asset event, a convenience for tests and demos.
func (f *MemoryFeed) AddPrice(t time.Time, asset market.Asset, price float64) {
	f.Add(market.NewEvent(t, map[market.Asset]market.PriceAction{
		asset: market.TradePrice{Value: price},
	}))
}

// Timeframe returns the span covered by the feed's events.
func (f *MemoryFeed) Timeframe() timeframe.Timeframe {
	if len(f.events) == 0 {
		return timeframe.Infinite()
	}
	tf, _ := timeframe.NewInclusive(f.events[0].Time, f.events[len(f.events)-1].Time)
	return tf
}

// Events implements Feed.
func (f *MemoryFeed) Events(ctx context.Context, tf timeframe.Timeframe) (Source, error) {
	return &memorySource{events: f.events, tf: tf}, nil
}

type memorySource struct {
	events []market.Event
	tf     timeframe.Timeframe
	idx    int
}

func (s *memorySource) Next() (market.Event, bool, error) {
	for s.idx < len(s.events) {
		ev := s.events[s.idx]
		s.idx++
		if ev.Time.Before(s.tf.Start) {
			continue
		}
		if !s.tf.Contains(ev.Time) {
			return market.Event{}, false, nil
		}
		return ev, true, nil
	}
	return market.Event{}, false, nil
}

func (s *memorySource) Close() error { return nil }
