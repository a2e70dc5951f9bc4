package run

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/quantlab/backsim/timeframe"
)

// RunnerFactory builds a fresh, fully independent Runner for one partition.
// It is called once per run; returning shared broker/strategy/policy state
// between calls breaks run isolation.
type RunnerFactory func(tf timeframe.Timeframe) *Runner

// WalkForward partitions the timeframe into consecutive sub-frames of length
// period and runs each one as an independent job, fanning out across the
// pool's workers. Results come back in partition order.
func WalkForward(ctx context.Context, pool *Pool, tf timeframe.Timeframe, period time.Duration, factory RunnerFactory) []Result {
	for i, sub := range tf.Split(period, 0) {
		sub := sub
		pool.Submit(fmt.Sprintf("wf-%d", i), func(ctx context.Context) (Result, error) {
			return factory(sub).Run(ctx, sub)
		})
	}
	return pool.JoinAll(ctx)
}

// MonteCarlo draws n random sub-frames of length period and runs each one
// independently, for robustness testing a strategy against period selection.
func MonteCarlo(ctx context.Context, pool *Pool, tf timeframe.Timeframe, period time.Duration, n int, rng *rand.Rand, factory RunnerFactory) ([]Result, error) {
	frames, err := tf.Sample(period, n, rng)
	if err != nil {
		return nil, err
	}
	for i, sub := range frames {
		sub := sub
		pool.Submit(fmt.Sprintf("mc-%d", i), func(ctx context.Context) (Result, error) {
			return factory(sub).Run(ctx, sub)
		})
	}
	return pool.JoinAll(ctx), nil
}

// TrainTest splits the timeframe proportionally and runs the two partitions
// sequentially with independently constructed runners, returning the
// (train, test) results.
func TrainTest(ctx context.Context, tf timeframe.Timeframe, testFraction float64, factory RunnerFactory) (Result, Result, error) {
	trainTF, testTF := tf.SplitTrainTest(testFraction)

	train, err := factory(trainTF).Run(ctx, trainTF)
	if err != nil {
		return train, Result{}, err
	}
	test, err := factory(testTF).Run(ctx, testTF)
	return train, test, err
}
