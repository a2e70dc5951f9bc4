package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantlab/backsim/broker"
	"github.com/quantlab/backsim/money"
)

func TestNoCostPricingPassesThrough(t *testing.T) {
	p := NoCostPricing{}
	assert.Equal(t, 101.5, p.Adjust(xyz, 101.5, money.Sizes(5)))
	assert.Equal(t, 101.5, p.Adjust(xyz, 101.5, money.Sizes(-5)))
}

func TestSpreadPricing(t *testing.T) {
	p := SpreadPricing{Bips: 10}

	assert.InDelta(t, 100.05, p.Adjust(xyz, 100, money.Sizes(1)), 1e-9)
	assert.InDelta(t, 99.95, p.Adjust(xyz, 100, money.Sizes(-1)), 1e-9)
	assert.Equal(t, 100.0, p.Adjust(xyz, 100, money.Size{}))
}

func TestFeeModels(t *testing.T) {
	exec := broker.Execution{
		Order: broker.NewMarketOrder(xyz, money.Sizes(-10)),
		Time:  t0,
		Price: 50,
	}

	assert.Zero(t, NoFee{}.Calculate(exec))
	// Fees are charged on absolute notional, sells included.
	assert.InDelta(t, 5.0, PercentageFee{Pct: 0.01}.Calculate(exec), 1e-9)
	assert.InDelta(t, 5.0, DefaultFee{Pct: 0.01}.Calculate(exec), 1e-9)
}

func TestGTCExpiry(t *testing.T) {
	tif := GTC{}

	assert.False(t, tif.Expired(t0, t0.Add(89*24*time.Hour)))
	assert.True(t, tif.Expired(t0, t0.Add(91*24*time.Hour)))

	short := GTC{MaxDays: 1}
	assert.False(t, short.Expired(t0, t0.Add(23*time.Hour)))
	assert.True(t, short.Expired(t0, t0.Add(25*time.Hour)))
}

func TestDayExpiry(t *testing.T) {
	tif := Day{}

	assert.False(t, tif.Expired(t0, t0.Add(2*time.Hour)))

	// Calendar day boundary, not 24 hours elapsed.
	evening := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	assert.True(t, tif.Expired(evening, evening.Add(time.Hour)))
}
