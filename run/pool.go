package run

import (
	"context"
	"fmt"
	"sync"
)

// Job is an independently constructed run closure. Each job must own its
// broker, strategy and policy instances outright; jobs share only read-only
// market data and configuration.
type Job func(ctx context.Context) (Result, error)

// Pool schedules independent runs across a fixed-size worker pool. Failure
// is isolated per job: a returned error or a panic is captured in that job's
// Result and never aborts siblings.
type Pool struct {
	workers int

	mu    sync.Mutex
	names []string
	jobs  []Job
}

// NewPool returns a pool with the given number of workers; values below one
// fall back to one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Submit queues a run closure under a name used in its Result.
func (p *Pool) Submit(name string, job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, name)
	p.jobs = append(p.jobs, job)
}

// JoinAll executes every submitted job and blocks until all complete,
// returning results in submission order. The submitted set is cleared so the
// pool can be reused.
func (p *Pool) JoinAll(ctx context.Context) []Result {
	p.mu.Lock()
	names := p.names
	jobs := p.jobs
	p.names = nil
	p.jobs = nil
	p.mu.Unlock()

	if len(jobs) == 0 {
		return nil
	}

	type item struct{ index int }
	work := make(chan item, len(jobs))
	results := make([]Result, len(jobs))

	workers := p.workers
	if len(jobs) < workers {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range work {
				results[it.index] = runJob(ctx, names[it.index], jobs[it.index])
			}
		}()
	}

	for i := range jobs {
		work <- item{index: i}
	}
	close(work)

	wg.Wait()
	return results
}

// runJob executes one job, converting an error or a panic into that job's
// Result.
func runJob(ctx context.Context, name string, job Job) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Name: name, Err: fmt.Errorf("run %s: panic: %v", name, r)}
		}
	}()

	res, err := job(ctx)
	if res.Name == "" {
		res.Name = name
	}
	if err != nil {
		res.Err = err
	}
	return res
}
