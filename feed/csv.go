package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/timeframe"
)

// CSVFeed reads canonical candle CSV rows:
//
//	time,symbol,open,high,low,close[,volume]
//
// where time is RFC3339 or RFC3339Nano and rows are in non-decreasing time
// order. A header row ("time,...") is allowed; empty/short rows are skipped.
// All symbols are assumed quoted in the feed's configured currency.
type CSVFeed struct {
	Path     string
	Currency money.Currency
}

// NewCSVFeed returns a feed over the given file with prices in currency.
func NewCSVFeed(path string, currency money.Currency) *CSVFeed {
	return &CSVFeed{Path: path, Currency: currency}
}

// Events implements Feed. Each call opens the file again, so concurrent runs
// get independent cursors.
func (f *CSVFeed) Events(ctx context.Context, tf timeframe.Timeframe) (Source, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("feed: open %s: %w", f.Path, err)
	}

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	return &csvSource{f: file, r: r, tf: tf, currency: f.Currency}, nil
}

type csvSource struct {
	f        *os.File
	r        *csv.Reader
	tf       timeframe.Timeframe
	currency money.Currency

	sawFirst bool
}

func (s *csvSource) Close() error {
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

func (s *csvSource) Next() (market.Event, bool, error) {
	for {
		row, err := s.r.Read()
		if err == io.EOF {
			return market.Event{}, false, nil
		}
		if err != nil {
			return market.Event{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !s.sawFirst {
			s.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		ev, ok, err := s.parseRow(row)
		if err != nil {
			return market.Event{}, false, err
		}
		if !ok || ev.Time.Before(s.tf.Start) {
			continue
		}
		if !s.tf.Contains(ev.Time) {
			// Rows are time ordered, nothing further can match.
			return market.Event{}, false, nil
		}
		return ev, true, nil
	}
}

func (s *csvSource) parseRow(row []string) (market.Event, bool, error) {
	// Need at least: time,symbol,open,high,low,close
	if len(row) < 6 {
		return market.Event{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Event{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Event{}, false, fmt.Errorf("feed: bad time %q: %w", ts, err)
		}
		t = t2
	}

	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return market.Event{}, false, nil
	}

	var ohlc [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Event{}, false, fmt.Errorf("feed: bad price %q: %w", row[2+i], err)
		}
		ohlc[i] = v
	}

	volume := 0.0
	if len(row) > 6 {
		volume, _ = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	}

	asset := market.NewAsset(symbol, s.currency)
	return market.NewEvent(t, map[market.Asset]market.PriceAction{
		asset: market.Candle{Open: ohlc[0], High: ohlc[1], Low: ohlc[2], Close: ohlc[3], Vol: volume},
	}), true, nil
}
