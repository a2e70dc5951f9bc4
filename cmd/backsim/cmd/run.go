package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/backsim/run"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest over the full timeframe",
	Long: `Run replays the configured feed once through a fresh simulated broker.

Example:
  backsim run --csv data/spy.csv --symbol SPY
  backsim run --steps 50000 --seed 42 -v`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&csvPath, "csv", "", "path to candle CSV (time,symbol,open,high,low,close[,volume])")
	runCmd.Flags().StringVar(&csvSymbol, "symbol", "DEMO", "symbol for the generated random-walk feed")
	runCmd.Flags().IntVar(&walkSteps, "steps", 10_000, "random walk: number of events")
	runCmd.Flags().Int64Var(&walkSeed, "seed", 42, "random walk: rng seed")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, tf, err := buildFeed(cfg)
	if err != nil {
		return err
	}

	jnl, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	runner := runnerFactory(cfg, f, jnl)(tf)
	result, err := runner.Run(cmd.Context(), tf)
	if err != nil {
		return err
	}

	stats := result.Summary.Stats()
	for _, k := range sortedKeys(stats) {
		fmt.Printf("%-16s %12.4f\n", k, stats[k])
	}
	printResults([]run.Result{result})
	return nil
}
