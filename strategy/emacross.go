package strategy

import (
	"github.com/quantlab/backsim/market"
)

// EMACross signals on fast/slow EMA crossovers, independently per asset:
// a bull cross rates Buy, a bear cross rates Sell, anything else is silence.
type EMACross struct {
	FastPeriod int // e.g. 20
	SlowPeriod int // e.g. 50

	state map[market.Asset]*crossState
}

type crossState struct {
	fast *ema
	slow *ema

	lastDiff     float64
	haveLastDiff bool
}

// NewEMACross returns a crossover strategy with the given periods.
func NewEMACross(fast, slow int) *EMACross {
	return &EMACross{
		FastPeriod: fast,
		SlowPeriod: slow,
		state:      make(map[market.Asset]*crossState),
	}
}

// Generate implements Strategy.
func (s *EMACross) Generate(event market.Event) []Signal {
	var signals []Signal

	for asset, action := range event.Prices {
		st, ok := s.state[asset]
		if !ok {
			st = &crossState{fast: newEMA(s.FastPeriod), slow: newEMA(s.SlowPeriod)}
			s.state[asset] = st
		}

		price := action.Price()
		st.fast.Update(price)
		st.slow.Update(price)

		if !st.fast.Ready() || !st.slow.Ready() {
			continue
		}

		diff := st.fast.Value() - st.slow.Value()
		if !st.haveLastDiff {
			st.lastDiff = diff
			st.haveLastDiff = true
			continue
		}

		// Bull cross: diff goes from <=0 to >0. Bear cross: the opposite.
		bullCross := diff > 0 && st.lastDiff <= 0
		bearCross := diff < 0 && st.lastDiff >= 0
		st.lastDiff = diff

		switch {
		case bullCross:
			signals = append(signals, Signal{Asset: asset, Rating: Buy})
		case bearCross:
			signals = append(signals, Signal{Asset: asset, Rating: Sell})
		}
	}

	return signals
}
