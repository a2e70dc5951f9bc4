package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/timeframe"
)

// RandomWalkFeed generates a lazy geometric random walk per asset. The walk
// is derived from a fixed seed, so every Source produced by the same feed
// yields the identical sequence; that keeps parallel runs over the same feed
// comparable.
type RandomWalkFeed struct {
	Assets     []market.Asset
	Start      time.Time
	Interval   time.Duration
	Steps      int
	StartPrice float64
	Volatility float64 // per-step fraction, e.g. 0.01
	Seed       int64
}

// Events implements Feed.
func (f *RandomWalkFeed) Events(ctx context.Context, tf timeframe.Timeframe) (Source, error) {
	interval := f.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	startPrice := f.StartPrice
	if startPrice <= 0 {
		startPrice = 100
	}
	vol := f.Volatility
	if vol <= 0 {
		vol = 0.01
	}

	prices := make(map[market.Asset]float64, len(f.Assets))
	for _, a := range f.Assets {
		prices[a] = startPrice
	}

	return &walkSource{
		feed:     f,
		tf:       tf,
		rng:      rand.New(rand.NewSource(f.Seed)),
		interval: interval,
		vol:      vol,
		prices:   prices,
		t:        f.Start,
	}, nil
}

type walkSource struct {
	feed     *RandomWalkFeed
	tf       timeframe.Timeframe
	rng      *rand.Rand
	interval time.Duration
	vol      float64
	prices   map[market.Asset]float64
	t        time.Time
	step     int
}

func (s *walkSource) Next() (market.Event, bool, error) {
	for s.step < s.feed.Steps {
		t := s.t
		actions := make(map[market.Asset]market.PriceAction, len(s.feed.Assets))
		for _, a := range s.feed.Assets {
			p := s.prices[a] * (1.0 + s.rng.NormFloat64()*s.vol)
			if p < 0.01 {
				p = 0.01
			}
			s.prices[a] = p
			actions[a] = market.TradePrice{Value: p, Vol: 100}
		}

		s.step++
		s.t = s.t.Add(s.interval)

		if t.Before(s.tf.Start) {
			continue
		}
		if !s.tf.Contains(t) {
			return market.Event{}, false, nil
		}
		return market.NewEvent(t, actions), true, nil
	}
	return market.Event{}, false, nil
}

func (s *walkSource) Close() error { return nil }
