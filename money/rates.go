package money

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoRate is returned when a currency pair is not supported at the
// requested time.
var ErrNoRate = errors.New("money: no exchange rate")

// ExchangeRates supplies conversion rates between currencies. Implementations
// must be safe for concurrent use: rates are shared read-only across
// concurrently running simulations.
type ExchangeRates interface {
	// Rate returns the multiplier converting one unit of from into to at the
	// given time. Returns ErrNoRate when the pair is unsupported.
	Rate(from, to Currency, at time.Time) (float64, error)
}

// SingleCurrencyRates only supports identity conversions. It is the right
// default for single-currency simulations: any genuine cross-currency
// conversion is a configuration mistake and fails loudly.
type SingleCurrencyRates struct{}

func (SingleCurrencyRates) Rate(from, to Currency, at time.Time) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	return 0, fmt.Errorf("%w: %s/%s", ErrNoRate, from, to)
}

// FixedRates converts through a static table of rates against a base
// currency, time-invariant. Good enough for backtests where FX drift is not
// part of the experiment.
type FixedRates struct {
	Base  Currency
	Rates map[Currency]float64 // units of Base per one unit of key currency
}

// NewFixedRates returns a table-driven rate provider.
func NewFixedRates(base Currency, rates map[Currency]float64) *FixedRates {
	cp := make(map[Currency]float64, len(rates)+1)
	for c, r := range rates {
		cp[c] = r
	}
	cp[base] = 1.0
	return &FixedRates{Base: base, Rates: cp}
}

func (f *FixedRates) Rate(from, to Currency, at time.Time) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	fr, ok := f.Rates[from]
	tr, ok2 := f.Rates[to]
	if !ok || !ok2 || tr == 0 {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoRate, from, to)
	}
	return fr / tr, nil
}
