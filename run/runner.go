// Package run drives simulation runs: a single-threaded event loop per run,
// and a fixed-size job pool that fans independent runs out across workers.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/feed"
	"github.com/quantlab/backsim/journal"
	"github.com/quantlab/backsim/metrics"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/policy"
	"github.com/quantlab/backsim/strategy"
	"github.com/quantlab/backsim/timeframe"
)

// Result is the outcome of one finished (or failed) run. Even a cancelled or
// failed run carries the last account snapshot taken before it stopped.
type Result struct {
	Name      string
	Timeframe timeframe.Timeframe
	Account   broker.Account
	Summary   *metrics.Summary
	Events    int
	Err       error
}

// Runner wires one run's collaborators together. Every field except Feed may
// be left nil and defaults sensibly, but Broker, Strategy and Policy state
// must never be shared between concurrent runners: each run owns its own.
type Runner struct {
	Name     string
	Feed     feed.Feed
	Strategy strategy.Strategy
	Policy   policy.Policy
	Broker   broker.Broker
	Journal  journal.Journal
	Metrics  []metrics.Metric
	Rates    money.ExchangeRates
	Log      zerolog.Logger
}

// Run executes the event loop over the given timeframe: pull the next event,
// generate signals, size them into orders, hand them to the broker, record
// the snapshot. Strictly sequential; events with regressing timestamps are
// skipped. Cancelling the context stops the loop after the current step and
// still returns the final snapshot.
func (r *Runner) Run(ctx context.Context, tf timeframe.Timeframe) (Result, error) {
	if r.Feed == nil {
		return Result{}, fmt.Errorf("run: Feed is required")
	}
	if r.Broker == nil {
		return Result{}, fmt.Errorf("run: Broker is required")
	}
	jnl := r.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	rates := r.Rates
	if rates == nil {
		rates = money.SingleCurrencyRates{}
	}

	log := r.Log.With().Str("run", r.Name).Logger()

	src, err := r.Feed.Events(ctx, tf)
	if err != nil {
		return Result{}, fmt.Errorf("run %s: open feed: %w", r.Name, err)
	}
	defer src.Close()

	result := Result{
		Name:      r.Name,
		Timeframe: tf,
		Summary:   &metrics.Summary{},
	}

	var lastTime time.Time
	recorded := len(r.Broker.Account().Trades)

	for {
		select {
		case <-ctx.Done():
			// Flush rather than discard: the final snapshot is the result.
			result.Account = r.Broker.Account()
			log.Info().Int("events", result.Events).Msg("run cancelled")
			return result, nil
		default:
		}

		event, ok, err := src.Next()
		if err != nil {
			result.Account = r.Broker.Account()
			return result, fmt.Errorf("run %s: feed: %w", r.Name, err)
		}
		if !ok {
			break
		}
		if !tf.Contains(event.Time) {
			if event.Time.Before(tf.Start) {
				continue
			}
			break
		}
		if event.Time.Before(lastTime) {
			log.Warn().Time("event", event.Time).Time("last", lastTime).Msg("out-of-order event skipped")
			continue
		}
		lastTime = event.Time

		var signals []strategy.Signal
		if r.Strategy != nil {
			signals = r.Strategy.Generate(event)
		}

		var orders []broker.Order
		if r.Policy != nil && len(signals) > 0 {
			orders = r.Policy.Act(signals, r.Broker.Account(), event)
		}

		acct, err := r.Broker.Place(orders, event)
		if err != nil {
			result.Account = r.Broker.Account()
			return result, fmt.Errorf("run %s: place: %w", r.Name, err)
		}
		result.Events++

		for ; recorded < len(acct.Trades); recorded++ {
			if err := jnl.RecordTrade(journal.NewTradeRecord(r.Name, acct.Trades[recorded])); err != nil {
				return result, fmt.Errorf("run %s: journal trade: %w", r.Name, err)
			}
		}

		equity, err := acct.EquityAmount(rates)
		if err != nil {
			result.Account = acct
			return result, fmt.Errorf("run %s: equity: %w", r.Name, err)
		}
		result.Summary.Observe(event.Time, equity.Value)

		if err := jnl.RecordEquity(journal.EquitySnapshot{
			Run:         r.Name,
			Time:        event.Time,
			Cash:        acct.Cash.Get(acct.BaseCurrency).Value,
			Equity:      equity.Value,
			BuyingPower: acct.BuyingPower.Value,
		}); err != nil {
			return result, fmt.Errorf("run %s: journal equity: %w", r.Name, err)
		}

		for _, m := range r.Metrics {
			m.Calc(acct, event)
		}
	}

	result.Account = r.Broker.Account()

	if sr, ok := jnl.(journal.SummaryRecorder); ok {
		if err := sr.RecordSummary(r.Name, result.Summary.Stats()); err != nil {
			return result, fmt.Errorf("run %s: journal summary: %w", r.Name, err)
		}
	}

	log.Info().
		Int("events", result.Events).
		Int("trades", len(result.Account.Trades)).
		Msg("run finished")
	return result, nil
}
