package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/backsim/run"
	"github.com/quantlab/backsim/timeframe"
)

var wfPeriod time.Duration

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Partition the timeframe and run each sub-period in parallel",
	Long: `Walkforward splits the feed's timeframe into consecutive sub-periods and
backtests each one as an isolated run with its own broker and strategy,
scheduled across a fixed-size worker pool.

Example:
  backsim walkforward --steps 50000 --period 24h`,
	RunE: runWalkforward,
}

func init() {
	rootCmd.AddCommand(walkforwardCmd)

	walkforwardCmd.Flags().StringVar(&csvPath, "csv", "", "path to candle CSV")
	walkforwardCmd.Flags().StringVar(&csvSymbol, "symbol", "DEMO", "symbol for the generated random-walk feed")
	walkforwardCmd.Flags().IntVar(&walkSteps, "steps", 10_000, "random walk: number of events")
	walkforwardCmd.Flags().Int64Var(&walkSeed, "seed", 42, "random walk: rng seed")
	walkforwardCmd.Flags().DurationVar(&wfPeriod, "period", 24*time.Hour, "sub-period length")
}

func runWalkforward(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, tf, err := buildFeed(cfg)
	if err != nil {
		return err
	}
	if tf.End.Equal(timeframe.MaxTime) {
		return fmt.Errorf("walkforward needs a bounded timeframe; use the generated feed via --steps")
	}

	jnl, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	pool := run.NewPool(cfg.Workers)
	results := run.WalkForward(cmd.Context(), pool, tf, wfPeriod, runnerFactory(cfg, f, jnl))
	printResults(results)
	return nil
}
