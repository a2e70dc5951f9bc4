package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/backsim/run"
	"github.com/quantlab/backsim/timeframe"
)

var (
	mcPeriod time.Duration
	mcRuns   int
	mcSeed   int64
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Backtest n randomly sampled sub-periods in parallel",
	Long: `Montecarlo draws random fixed-length sub-periods from the feed's
timeframe and backtests each one independently, a cheap robustness check
against lucky period selection.

Example:
  backsim montecarlo --steps 50000 --period 24h --runs 20`,
	RunE: runMontecarlo,
}

func init() {
	rootCmd.AddCommand(montecarloCmd)

	montecarloCmd.Flags().StringVar(&csvPath, "csv", "", "path to candle CSV")
	montecarloCmd.Flags().StringVar(&csvSymbol, "symbol", "DEMO", "symbol for the generated random-walk feed")
	montecarloCmd.Flags().IntVar(&walkSteps, "steps", 10_000, "random walk: number of events")
	montecarloCmd.Flags().Int64Var(&walkSeed, "seed", 42, "random walk: rng seed")
	montecarloCmd.Flags().DurationVar(&mcPeriod, "period", 24*time.Hour, "sampled period length")
	montecarloCmd.Flags().IntVar(&mcRuns, "runs", 10, "number of sampled runs")
	montecarloCmd.Flags().Int64Var(&mcSeed, "sample-seed", 1, "rng seed for period sampling")
}

func runMontecarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, tf, err := buildFeed(cfg)
	if err != nil {
		return err
	}
	if tf.End.Equal(timeframe.MaxTime) {
		return fmt.Errorf("montecarlo needs a bounded timeframe; use the generated feed via --steps")
	}

	jnl, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	pool := run.NewPool(cfg.Workers)
	rng := rand.New(rand.NewSource(mcSeed))
	results, err := run.MonteCarlo(cmd.Context(), pool, tf, mcPeriod, mcRuns, rng, runnerFactory(cfg, f, jnl))
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}
