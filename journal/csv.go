package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"
)

// ErrAmendUnsupported is returned by journals that cannot patch records in
// place.
var ErrAmendUnsupported = errors.New("journal: amend not supported")

// CSVJournal appends trades and equity snapshots to two CSV files. Appends
// are mutex-guarded so parallel runs can share one journal; AmendTrade is not
// supported on an append-only file.
type CSVJournal struct {
	mu     sync.Mutex
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"order_id", "run", "symbol", "size", "price", "fee", "pnl", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run", "time", "cash", "equity", "buying_power"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.trades.Write([]string{
		t.OrderID,
		t.Run,
		t.Symbol,
		f(t.Size),
		f(t.Price),
		f(t.Fee),
		f(t.PnL),
		t.Time.Format(time.RFC3339),
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.equity.Write([]string{
		e.Run,
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.Equity),
		f(e.BuyingPower),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) AmendTrade(orderID string, fee, pnl float64) error {
	return ErrAmendUnsupported
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
