package runner

import (
	"context"

	"golang.org/x/time/rate"
)

// Requester abstracts executing a single request attempt.
// Implementations should return an error for failed attempts.
type Requester interface {
	Do(ctx context.Context) error
}

// Options configure the Runner.
type Options struct {
	Requests       int                         // total work units to execute (required, >= 1)
	Concurrency    int                         // concurrency ceiling; effective parallelism is min(Concurrency, Requests)
	RatePerSecond  int                         // requests per second pacing (0 means unlimited)
	Requester      Requester                   // request executor (required)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Requests < 1 {
		o.Requests = 1
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
