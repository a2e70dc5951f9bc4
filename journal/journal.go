// Package journal persists trade and equity records produced by simulation
// runs, to SQLite or CSV.
package journal

import (
	"time"

	"github.com/quantlab/backsim/broker"
)

// TradeRecord is the persisted form of one fill. Run names the simulation
// run that produced it, so parallel runs can share a single journal.
type TradeRecord struct {
	OrderID string
	Run     string
	Symbol  string
	Size    float64
	Price   float64
	Fee     float64
	PnL     float64
	Time    time.Time
}

// NewTradeRecord flattens a broker trade for persistence.
func NewTradeRecord(run string, t broker.Trade) TradeRecord {
	return TradeRecord{
		OrderID: t.OrderID,
		Run:     run,
		Symbol:  t.Asset.Symbol,
		Size:    t.Size.Float64(),
		Price:   t.Price,
		Fee:     t.Fee,
		PnL:     t.PnL,
		Time:    t.Time,
	}
}

// EquitySnapshot is one point of a run's equity curve.
type EquitySnapshot struct {
	Run         string
	Time        time.Time
	Cash        float64
	Equity      float64
	BuyingPower float64
}

// Journal records the output of simulation runs. Implementations must be
// safe for concurrent use: parallel runs may share one journal.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error

	// AmendTrade patches fee and pnl of a recorded trade by order identity.
	// This mirrors the trade-log amendment used when commission reports
	// arrive after the fill.
	AmendTrade(orderID string, fee, pnl float64) error

	Close() error
}

// SummaryRecorder is the optional capability of persisting a run's final
// statistics. Implemented by SQLiteJournal; append-only journals skip it.
type SummaryRecorder interface {
	RecordSummary(run string, stats map[string]float64) error
}

// Nop discards everything. The default when no journaling is configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error { return nil }

func (Nop) RecordEquity(EquitySnapshot) error { return nil }

func (Nop) AmendTrade(orderID string, fee, pnl float64) error { return nil }

func (Nop) Close() error { return nil }
