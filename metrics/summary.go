package metrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/quantlab/backsim/timeframe"
)

// Summary accumulates a single run's equity curve and derives performance
// statistics from it. Not safe for concurrent use; each run owns its own
// Summary.
type Summary struct {
	times  []time.Time
	equity []float64
}

// Observe appends one equity observation. Called once per processed event.
func (s *Summary) Observe(t time.Time, equity float64) {
	s.times = append(s.times, t)
	s.equity = append(s.equity, equity)
}

// Len returns the number of observations.
func (s *Summary) Len() int { return len(s.equity) }

// TotalReturn returns last/first - 1, zero when fewer than two observations.
func (s *Summary) TotalReturn() float64 {
	if len(s.equity) < 2 || s.equity[0] == 0 {
		return 0
	}
	return s.equity[len(s.equity)-1]/s.equity[0] - 1.0
}

// MaxDrawdown returns the largest peak-to-trough equity loss as a negative
// fraction.
func (s *Summary) MaxDrawdown() float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range s.equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := v/peak - 1.0; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Stats returns the aggregate statistics: total and annualized return,
// per-step return mean/volatility, Sharpe ratio and max drawdown.
func (s *Summary) Stats() map[string]float64 {
	out := map[string]float64{
		"return.total": s.TotalReturn(),
		"drawdown.max": s.MaxDrawdown(),
		"observations": float64(len(s.equity)),
	}

	if len(s.equity) >= 2 {
		returns := make([]float64, 0, len(s.equity)-1)
		for i := 1; i < len(s.equity); i++ {
			if s.equity[i-1] != 0 {
				returns = append(returns, s.equity[i]/s.equity[i-1]-1.0)
			}
		}
		if len(returns) >= 2 {
			mean, std := stat.MeanStdDev(returns, nil)
			out["return.mean"] = mean
			out["return.std"] = std
			if std > 0 {
				out["return.sharpe"] = mean / std * math.Sqrt(float64(len(returns)))
			}
		}

		if tf, err := timeframe.NewInclusive(s.times[0], s.times[len(s.times)-1]); err == nil && tf.Duration() > 0 {
			out["return.annual"] = tf.Annualize(s.TotalReturn())
		}
	}

	return out
}
