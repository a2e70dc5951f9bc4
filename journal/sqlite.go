package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists records to a SQLite database. database/sql
// serializes access, so one journal can be shared by parallel runs.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal database at path.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(order_id, run, symbol, size, price, fee, pnl, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OrderID, t.Run, t.Symbol, t.Size, t.Price, t.Fee, t.PnL, t.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run, time, cash, equity, buying_power)
		VALUES (?, ?, ?, ?, ?)`,
		e.Run, e.Time, e.Cash, e.Equity, e.BuyingPower,
	)
	return err
}

func (j *SQLiteJournal) AmendTrade(orderID string, fee, pnl float64) error {
	res, err := j.db.Exec(`UPDATE trades SET fee = ?, pnl = ? WHERE order_id = ?`, fee, pnl, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("journal: amend trade: no trade for order %s", orderID)
	}
	return nil
}

// RecordSummary upserts a run's final statistics, one row per metric.
// Re-running under the same name overwrites the previous summary.
func (j *SQLiteJournal) RecordSummary(run string, stats map[string]float64) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	for metric, value := range stats {
		if _, err := tx.Exec(`
			INSERT INTO summaries (run, metric, value) VALUES (?, ?, ?)
			ON CONFLICT(run, metric) DO UPDATE SET value = excluded.value`,
			run, metric, value,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListSummary returns a run's recorded statistics.
func (j *SQLiteJournal) ListSummary(run string) (map[string]float64, error) {
	rows, err := j.db.Query(`SELECT metric, value FROM summaries WHERE run = ?`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, err
		}
		out[metric] = value
	}
	return out, rows.Err()
}

// ListTrades returns the trades recorded for a run, in time order.
func (j *SQLiteJournal) ListTrades(run string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, run, symbol, size, price, fee, pnl, time
		FROM trades WHERE run = ? ORDER BY time, order_id`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.OrderID, &t.Run, &t.Symbol, &t.Size, &t.Price, &t.Fee, &t.PnL, &t.Time); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns a run's equity curve in time order.
func (j *SQLiteJournal) ListEquity(run string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run, time, cash, equity, buying_power
		FROM equity WHERE run = ? ORDER BY time`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		var ts time.Time
		if err := rows.Scan(&e.Run, &ts, &e.Cash, &e.Equity, &e.BuyingPower); err != nil {
			return nil, err
		}
		e.Time = ts
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
