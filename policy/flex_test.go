package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/strategy"
)

var (
	pA  = market.NewAsset("ABC", money.USD)
	pt0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func accountWith(buyingPower float64, pos *broker.Position) broker.Account {
	acct := broker.Account{
		BaseCurrency: money.USD,
		Cash:         money.NewWallet(money.NewAmount(money.USD, buyingPower)),
		Positions:    map[market.Asset]broker.Position{},
		BuyingPower:  money.NewAmount(money.USD, buyingPower),
	}
	if pos != nil {
		acct.Positions[pos.Asset] = *pos
	}
	return acct
}

func eventAt(price float64) market.Event {
	return market.NewEvent(pt0, map[market.Asset]market.PriceAction{
		pA: market.TradePrice{Value: price},
	})
}

func buySignal() []strategy.Signal  { return []strategy.Signal{{Asset: pA, Rating: strategy.Buy}} }
func sellSignal() []strategy.Signal { return []strategy.Signal{{Asset: pA, Rating: strategy.Sell}} }

func TestFlexOpensLongSizedByBuyingPower(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10}

	orders := p.Act(buySignal(), accountWith(10_000, nil), eventAt(50))
	require.Len(t, orders, 1)

	mo, ok := orders[0].(broker.MarketOrder)
	require.True(t, ok)
	assert.Equal(t, pA, mo.Asset())
	// 10% of 10k buys 1000/50 = 20 units.
	assert.InDelta(t, 20.0, mo.Size().Float64(), 1e-6)
}

func TestFlexWholeSizesRoundDown(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10, WholeSizes: true}

	orders := p.Act(buySignal(), accountWith(10_000, nil), eventAt(300))
	require.Len(t, orders, 1)
	// 1000/300 = 3.33 floors to 3.
	assert.Equal(t, money.Sizes(3), orders[0].Size())
}

func TestFlexNeverPyramids(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10}
	long := &broker.Position{Asset: pA, Size: money.Sizes(5), AvgPrice: 40, SpotPrice: 50}

	orders := p.Act(buySignal(), accountWith(10_000, long), eventAt(50))
	assert.Empty(t, orders, "an existing long absorbs further buy signals")
}

func TestFlexSellClosesLong(t *testing.T) {
	p := &FlexPolicy{}
	long := &broker.Position{Asset: pA, Size: money.Sizes(5), AvgPrice: 40, SpotPrice: 50}

	orders := p.Act(sellSignal(), accountWith(10_000, long), eventAt(50))
	require.Len(t, orders, 1)
	assert.Equal(t, money.Sizes(-5), orders[0].Size())
}

func TestFlexSellWithoutShortingIsSilent(t *testing.T) {
	p := &FlexPolicy{}
	orders := p.Act(sellSignal(), accountWith(10_000, nil), eventAt(50))
	assert.Empty(t, orders)
}

func TestFlexShortingOpensShort(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10, Shorting: true}

	orders := p.Act(sellSignal(), accountWith(10_000, nil), eventAt(50))
	require.Len(t, orders, 1)
	assert.InDelta(t, -20.0, orders[0].Size().Float64(), 1e-6)
}

func TestFlexBuyClosesShortFirst(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10, Shorting: true}
	short := &broker.Position{Asset: pA, Size: money.Sizes(-4), AvgPrice: 60, SpotPrice: 50}

	orders := p.Act(buySignal(), accountWith(10_000, short), eventAt(50))
	require.Len(t, orders, 1)
	assert.Equal(t, money.Sizes(4), orders[0].Size(), "closing order only, never close-and-reverse in one step")
}

func TestFlexIgnoresUnpricedAssetsAndExhaustedAccounts(t *testing.T) {
	p := &FlexPolicy{OrderPct: 0.10}

	other := market.NewAsset("OTHER", money.USD)
	signals := []strategy.Signal{{Asset: other, Rating: strategy.Buy}}
	assert.Empty(t, p.Act(signals, accountWith(10_000, nil), eventAt(50)), "no price for the signalled asset")

	assert.Empty(t, p.Act(buySignal(), accountWith(0, nil), eventAt(50)), "no buying power")
}
