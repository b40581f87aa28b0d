package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ihbobul/lode/internal/metrics"
	"github.com/ihbobul/lode/internal/runner"
	"github.com/ihbobul/lode/internal/tracing"
)

const maxBodyReadSize = 1024 * 1024

// Requester executes one HTTP attempt per Do call: build, send, classify,
// fold into the collector. It implements runner.Requester.
type Requester struct {
	client    *http.Client
	builder   *RequestBuilder
	collector *metrics.Collector
	timeout   time.Duration
	tracer    *tracing.Provider
}

// NewRequester wires an executor for the given target. The tracer may be nil.
func NewRequester(client *http.Client, builder *RequestBuilder, collector *metrics.Collector, timeout time.Duration, tracer *tracing.Provider) *Requester {
	return &Requester{
		client:    client,
		builder:   builder,
		collector: collector,
		timeout:   timeout,
		tracer:    tracer,
	}
}

// Do performs a single attempt. The per-attempt deadline is enforced through
// the request context, so exceeding it cancels the underlying call without
// touching sibling attempts. The returned error is the classified failure
// (nil on success); the outcome is always recorded exactly once.
func (r *Requester) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	attemptCtx, span := tracing.StartRequestSpan(attemptCtx, r.tracer.Tracer(), r.builder.method, r.builder.target)

	req, err := r.builder.Build(attemptCtx)
	if err != nil {
		tracing.EndSpan(span, err)
		r.collector.Record(metrics.Classify(0, err, 0))
		return err
	}
	if r.tracer.ShouldPropagate() {
		tracing.InjectHTTPHeaders(attemptCtx, req.Header)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		tracing.EndSpan(span, err)
		outcome := metrics.Classify(0, err, latency)
		r.collector.Record(outcome)
		return err
	}
	defer resp.Body.Close()

	// Stats measure time to a parsed response; draining the body afterwards
	// keeps the connection reusable without skewing the latency.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))

	outcome := metrics.Classify(resp.StatusCode, nil, latency)
	r.collector.Record(outcome)

	var resultErr error
	if !outcome.Success() {
		resultErr = &runner.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(truncate(snippet, 1024))),
		}
	}
	tracing.EndSpan(span, resultErr, attribute.Int("http.response.status_code", resp.StatusCode))
	return resultErr
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
