package run

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/feed"
	"github.com/quantlab/backsim/journal"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/policy"
	"github.com/quantlab/backsim/sim"
	"github.com/quantlab/backsim/strategy"
	"github.com/quantlab/backsim/timeframe"
)

var (
	acme = market.NewAsset("ACME", money.USD)
	rt0  = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
)

// alwaysSignal emits one bullish signal per event, leaving all decisions to
// the policy.
type alwaysSignal struct{}

func (alwaysSignal) Generate(ev market.Event) []strategy.Signal {
	return []strategy.Signal{{Asset: acme, Rating: strategy.Buy}}
}

// alternate buys one unit on even minutes and sells one on odd minutes. It
// looks only at the event, never the account, so its trades do not depend on
// where a run's timeframe starts.
func alternate(signals []strategy.Signal, acct broker.Account, ev market.Event) []broker.Order {
	if ev.Time.Minute()%2 == 0 {
		return []broker.Order{broker.NewMarketOrder(acme, money.Sizes(1))}
	}
	return []broker.Order{broker.NewMarketOrder(acme, money.Sizes(-1))}
}

// captureJournal records everything handed to it, keyed by run name.
type captureJournal struct {
	mu        sync.Mutex
	trades    []journal.TradeRecord
	equity    []journal.EquitySnapshot
	summaries []string
}

func (j *captureJournal) RecordTrade(r journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, r)
	return nil
}

func (j *captureJournal) RecordEquity(s journal.EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.equity = append(j.equity, s)
	return nil
}

func (j *captureJournal) RecordSummary(run string, stats map[string]float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.summaries = append(j.summaries, run)
	return nil
}

func (j *captureJournal) AmendTrade(orderID string, fee, pnl float64) error { return nil }

func (j *captureJournal) Close() error { return nil }

func marketFeed(n int) *feed.MemoryFeed {
	f := feed.NewMemoryFeed()
	for i := 0; i < n; i++ {
		f.AddPrice(rt0.Add(time.Duration(i)*time.Minute), acme, 100+float64(i))
	}
	return f
}

func newRunner(name string, f feed.Feed, jnl journal.Journal) *Runner {
	return &Runner{
		Name:     name,
		Feed:     f,
		Strategy: alwaysSignal{},
		Policy:   policy.Func(alternate),
		Broker:   sim.NewEngine(sim.Config{}),
		Journal:  jnl,
	}
}

func TestRunnerEventLoop(t *testing.T) {
	jnl := &captureJournal{}
	r := newRunner("loop", marketFeed(10), jnl)

	res, err := r.Run(context.Background(), timeframe.Infinite())
	require.NoError(t, err)

	assert.Equal(t, "loop", res.Name)
	assert.Equal(t, 10, res.Events)
	assert.Equal(t, 10, res.Summary.Len(), "one equity observation per event")
	assert.Len(t, res.Account.Trades, 10, "market order filled every step")

	assert.Len(t, jnl.trades, 10)
	assert.Len(t, jnl.equity, 10)
	assert.Equal(t, []string{"loop"}, jnl.summaries, "final stats recorded once at completion")
	for _, tr := range jnl.trades {
		assert.Equal(t, "loop", tr.Run)
		assert.Equal(t, "ACME", tr.Symbol)
	}
}

func TestRunnerRequiresFeedAndBroker(t *testing.T) {
	_, err := (&Runner{Broker: sim.NewEngine(sim.Config{})}).Run(context.Background(), timeframe.Infinite())
	assert.Error(t, err)

	_, err = (&Runner{Feed: marketFeed(1)}).Run(context.Background(), timeframe.Infinite())
	assert.Error(t, err)
}

func TestRunnerCancelFlushesSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner("cancelled", marketFeed(10), journal.Nop{})
	res, err := r.Run(ctx, timeframe.Infinite())
	require.NoError(t, err, "cancellation is a normal stop, not a failure")
	assert.Zero(t, res.Events)
	assert.NotZero(t, res.Account.Cash.Get(money.USD).Value, "snapshot still carried")
}

func TestRunnerSkipsOutOfOrderEvents(t *testing.T) {
	f := &stubFeed{times: []time.Time{
		rt0,
		rt0.Add(2 * time.Minute),
		rt0.Add(1 * time.Minute), // regresses, must be skipped
		rt0.Add(3 * time.Minute),
	}}

	r := newRunner("ooo", f, journal.Nop{})
	res, err := r.Run(context.Background(), timeframe.Infinite())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Events)
}

// tradeKey identifies a fill independent of run naming and order IDs.
type tradeKey struct {
	at    time.Time
	size  float64
	price float64
}

func keys(trades []broker.Trade) []tradeKey {
	out := make([]tradeKey, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tradeKey{at: tr.Time, size: tr.Size.Float64(), price: tr.Price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

// Two runs over disjoint halves of the data, executed in parallel, must
// together produce exactly the trades of one sequential run over the whole
// timeframe.
func TestDisjointPartitionsComposeToSequentialRun(t *testing.T) {
	f := marketFeed(20)
	full := f.Timeframe()

	seq, err := newRunner("seq", f, journal.Nop{}).Run(context.Background(), full)
	require.NoError(t, err)

	mid := rt0.Add(10 * time.Minute)
	firstHalf, err := timeframe.New(full.Start, mid)
	require.NoError(t, err)
	secondHalf, err := timeframe.NewInclusive(mid, full.End)
	require.NoError(t, err)

	pool := NewPool(2)
	for i, tf := range []timeframe.Timeframe{firstHalf, secondHalf} {
		tf := tf
		pool.Submit(fmt.Sprintf("part-%d", i), func(ctx context.Context) (Result, error) {
			return newRunner("part", f, journal.Nop{}).Run(ctx, tf)
		})
	}
	parts := pool.JoinAll(context.Background())
	require.Len(t, parts, 2)
	for _, p := range parts {
		require.NoError(t, p.Err)
	}

	var combined []broker.Trade
	combined = append(combined, parts[0].Account.Trades...)
	combined = append(combined, parts[1].Account.Trades...)

	assert.Equal(t, keys(seq.Account.Trades), keys(combined))
	assert.Equal(t, seq.Events, parts[0].Events+parts[1].Events)
}

func TestWalkForwardCoversPartitions(t *testing.T) {
	f := marketFeed(30)
	full := f.Timeframe()

	factory := func(tf timeframe.Timeframe) *Runner {
		return newRunner("wf", f, journal.Nop{})
	}

	results := WalkForward(context.Background(), NewPool(3), full, 10*time.Minute, factory)
	require.Len(t, results, 3)

	total := 0
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("wf-%d", i), r.Name)
		total += r.Events
	}
	assert.Equal(t, 30, total, "every event lands in exactly one partition")
}

func TestTrainTestRunsBothPartitions(t *testing.T) {
	f := marketFeed(20)
	full := f.Timeframe()

	factory := func(tf timeframe.Timeframe) *Runner {
		return newRunner("tt", f, journal.Nop{})
	}

	train, test, err := TrainTest(context.Background(), full, 0.25, factory)
	require.NoError(t, err)
	assert.Greater(t, train.Events, test.Events)
	assert.Equal(t, 20, train.Events+test.Events)
}

// stubFeed replays fixed timestamps with a constant price, for exercising
// loop edge cases the sorted MemoryFeed cannot produce.
type stubFeed struct {
	times []time.Time
}

func (f *stubFeed) Events(ctx context.Context, tf timeframe.Timeframe) (feed.Source, error) {
	return &stubSource{times: f.times}, nil
}

type stubSource struct {
	times []time.Time
	idx   int
}

func (s *stubSource) Next() (market.Event, bool, error) {
	if s.idx >= len(s.times) {
		return market.Event{}, false, nil
	}
	t := s.times[s.idx]
	s.idx++
	return market.NewEvent(t, map[market.Asset]market.PriceAction{
		acme: market.TradePrice{Value: 100},
	}), true, nil
}

func (s *stubSource) Close() error { return nil }
