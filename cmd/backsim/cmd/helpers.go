package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/quantlab/backsim/config"
	"github.com/quantlab/backsim/feed"
	"github.com/quantlab/backsim/journal"
	"github.com/quantlab/backsim/market"
	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/policy"
	"github.com/quantlab/backsim/run"
	"github.com/quantlab/backsim/sim"
	"github.com/quantlab/backsim/strategy"
	"github.com/quantlab/backsim/timeframe"
)

var (
	csvPath   string
	csvSymbol string
	walkSteps int
	walkSeed  int64
)

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgPath)
}

// buildFeed returns the configured feed and the timeframe it covers.
func buildFeed(cfg *config.Config) (feed.Feed, timeframe.Timeframe, error) {
	currency := money.Currency(cfg.Account.Currency)

	if csvPath != "" {
		// CSV feeds do not know their span up front; the caller bounds runs
		// with an explicit or infinite timeframe.
		return feed.NewCSVFeed(csvPath, currency), timeframe.Infinite(), nil
	}

	steps := walkSteps
	if steps <= 0 {
		steps = 10_000
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &feed.RandomWalkFeed{
		Assets:   []market.Asset{market.NewAsset(csvSymbol, currency)},
		Start:    start,
		Interval: time.Minute,
		Steps:    steps,
		Seed:     walkSeed,
	}
	tf, err := timeframe.New(start, start.Add(time.Duration(steps)*time.Minute))
	return f, tf, err
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		return journal.Nop{}, nil
	}
}

// runnerFactory builds fully independent runners: a fresh engine, strategy
// and policy per call. Only the feed and journal are shared, both safe for
// concurrent use.
func runnerFactory(cfg *config.Config, f feed.Feed, jnl journal.Journal) run.RunnerFactory {
	return func(tf timeframe.Timeframe) *run.Runner {
		return &run.Runner{
			Name:     fmt.Sprintf("run-%s", tf.Start.Format("20060102T150405")),
			Feed:     f,
			Strategy: strategy.NewEMACross(cfg.Strategy.Fast, cfg.Strategy.Slow),
			Policy:   &policy.FlexPolicy{OrderPct: cfg.Strategy.OrderPct, Shorting: cfg.Strategy.Shorting},
			Broker:   sim.NewEngine(withLogger(cfg.EngineConfig())),
			Journal:  jnl,
			Log:      logger,
		}
	}
}

func withLogger(cfg sim.Config) sim.Config {
	cfg.Logger = logger
	return cfg
}

func printResults(results []run.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tEVENTS\tTRADES\tRETURN\tMAX DD\tERROR")
	for _, res := range results {
		errMsg := ""
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		totalReturn, maxDD := 0.0, 0.0
		if res.Summary != nil {
			stats := res.Summary.Stats()
			totalReturn = stats["return.total"]
			maxDD = stats["drawdown.max"]
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f%%\t%.2f%%\t%s\n",
			res.Name, res.Events, len(res.Account.Trades), totalReturn*100, maxDD*100, errMsg)
	}
	w.Flush()
	fmt.Println("Done.")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
