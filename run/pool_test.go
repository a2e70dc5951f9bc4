package run

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool(4)
	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(fmt.Sprintf("job-%d", i), func(ctx context.Context) (Result, error) {
			return Result{Name: fmt.Sprintf("job-%d", i), Events: i}, nil
		})
	}

	results := pool.JoinAll(context.Background())
	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("job-%d", i), r.Name)
		assert.Equal(t, i, r.Events)
	}
}

func TestPoolFailureIsolation(t *testing.T) {
	pool := NewPool(2)
	boom := errors.New("boom")

	pool.Submit("ok-1", func(ctx context.Context) (Result, error) {
		return Result{Events: 1}, nil
	})
	pool.Submit("bad", func(ctx context.Context) (Result, error) {
		return Result{}, boom
	})
	pool.Submit("ok-2", func(ctx context.Context) (Result, error) {
		return Result{Events: 2}, nil
	})

	results := pool.JoinAll(context.Background())
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 2, results[2].Events, "siblings of a failed job complete normally")
}

func TestPoolCapturesPanics(t *testing.T) {
	pool := NewPool(2)

	pool.Submit("panicky", func(ctx context.Context) (Result, error) {
		panic("unexpected")
	})
	pool.Submit("fine", func(ctx context.Context) (Result, error) {
		return Result{Events: 1}, nil
	})

	results := pool.JoinAll(context.Background())
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "panic")
	assert.Equal(t, "panicky", results[0].Name)
	assert.NoError(t, results[1].Err)
}

func TestPoolIsReusable(t *testing.T) {
	pool := NewPool(1)

	pool.Submit("first", func(ctx context.Context) (Result, error) {
		return Result{}, nil
	})
	require.Len(t, pool.JoinAll(context.Background()), 1)

	assert.Nil(t, pool.JoinAll(context.Background()), "submitted set cleared after join")

	pool.Submit("second", func(ctx context.Context) (Result, error) {
		return Result{}, nil
	})
	require.Len(t, pool.JoinAll(context.Background()), 1)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var active, peak int32
	for i := 0; i < 8; i++ {
		pool.Submit(fmt.Sprintf("job-%d", i), func(ctx context.Context) (Result, error) {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
			return Result{}, nil
		})
	}

	pool.JoinAll(context.Background())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}
