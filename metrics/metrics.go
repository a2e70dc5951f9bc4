// Package metrics turns account snapshots into named numbers and aggregates
// per-run performance statistics.
package metrics

import (
	"github.com/rs/zerolog"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
)

// Metric computes named values from the account snapshot after each step.
// Implementations must treat both arguments as read-only.
type Metric interface {
	Calc(acct broker.Account, event market.Event) map[string]float64
}

// AccountMetric reports the basic account numbers per step: equity and cash
// collapsed to the base currency, buying power, open position and trade
// counts.
type AccountMetric struct {
	// Rates converts multi-currency wallets; defaults to identity-only.
	Rates money.ExchangeRates
	Log   zerolog.Logger
}

func (m AccountMetric) Calc(acct broker.Account, event market.Event) map[string]float64 {
	rates := m.Rates
	if rates == nil {
		rates = money.SingleCurrencyRates{}
	}

	out := map[string]float64{
		"account.buyingpower": acct.BuyingPower.Value,
		"account.positions":   float64(len(acct.Positions)),
		"account.trades":      float64(len(acct.Trades)),
	}

	if equity, err := acct.EquityAmount(rates); err == nil {
		out["account.equity"] = equity.Value
	} else {
		m.Log.Warn().Err(err).Msg("equity conversion failed")
	}
	if cash, err := acct.Cash.Convert(acct.BaseCurrency, rates, acct.LastUpdate); err == nil {
		out["account.cash"] = cash.Value
	} else {
		m.Log.Warn().Err(err).Msg("cash conversion failed")
	}

	return out
}
