package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result captures execution summary.
type Result struct {
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Runner executes a fixed amount of work under a concurrency ceiling.
//
// Work distribution is pull-based: slots share an atomic countdown that each
// one decrements immediately before starting an attempt, so no slot is
// pre-assigned a share and a slow response on one slot never starves total
// throughput. A slot that finds the countdown exhausted exits; Run returns
// only after every in-flight attempt has completed.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	if r.opt.Requester == nil {
		return Result{Duration: time.Since(start)}
	}
	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)

	slots := r.opt.Concurrency
	if slots > r.opt.Requests {
		slots = r.opt.Requests
	}

	remaining := int64(r.opt.Requests)
	var executed int64
	var errs int64

	var wg sync.WaitGroup
	wg.Add(slots)
	for i := 0; i < slots; i++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				// Claim one work unit; the decrement happens-before the
				// attempt, so at most Requests attempts ever start.
				if atomic.AddInt64(&remaining, -1) < 0 {
					return
				}
				atomic.AddInt64(&executed, 1)
				if err := r.opt.Requester.Do(ctx); err != nil {
					atomic.AddInt64(&errs, 1)
				}
			}
		}()
	}
	wg.Wait()

	return Result{
		Total:    atomic.LoadInt64(&executed),
		Errors:   atomic.LoadInt64(&errs),
		Duration: time.Since(start),
	}
}
