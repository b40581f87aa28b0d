// Package engine wires the request executor, dispatcher, and aggregator into
// a single load test run.
package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ihbobul/lode/internal/config"
	"github.com/ihbobul/lode/internal/httpclient"
	"github.com/ihbobul/lode/internal/metrics"
	"github.com/ihbobul/lode/internal/report"
	"github.com/ihbobul/lode/internal/runner"
	"github.com/ihbobul/lode/internal/tracing"
)

// ErrInterrupted is returned when a run is aborted before every request
// completed. No report is produced for a partial run.
var ErrInterrupted = errors.New("load test interrupted")

// Engine executes load tests for one validated configuration.
type Engine struct {
	cfg       *config.Config
	client    *http.Client
	collector *metrics.Collector
	requester runner.Requester
	tracer    *tracing.Provider
	logger    runner.FailureLogger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClient substitutes the HTTP client, used by tests.
func WithClient(client *http.Client) Option {
	return func(e *Engine) { e.client = client }
}

// WithTracer attaches a tracing provider for per-attempt spans.
func WithTracer(tracer *tracing.Provider) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithFailureLogger wraps the executor so every failed attempt is logged.
func WithFailureLogger(logger runner.FailureLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New validates the configuration and builds a ready-to-run engine.
// Validation failures surface here, before any request is dispatched.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		client:    httpclient.NewClient(),
		collector: metrics.NewCollector(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return nil, err
	}
	e.requester = httpclient.NewRequester(e.client, builder, e.collector, cfg.Timeout, e.tracer)
	if e.logger != nil {
		e.requester = runner.WithLogging(e.requester, e.logger)
	}

	return e, nil
}

// Collector exposes the live aggregator for progress reporting.
func (e *Engine) Collector() *metrics.Collector {
	return e.collector
}

// Run executes the configured number of requests and builds the final
// report. A context cancellation mid-run returns ErrInterrupted and no
// report, since the accounting would be partial.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r := runner.New(runner.Options{
		Requests:      e.cfg.Requests,
		Concurrency:   e.cfg.Concurrency,
		RatePerSecond: e.cfg.Rate,
		Requester:     e.requester,
	})

	result := r.Run(ctx)
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	elapsed := result.Duration
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	return report.Build(e.collector.Snapshot(elapsed)), nil
}
