// Package report freezes a finished run's aggregates into the immutable
// result document exposed by the CLI and the API.
package report

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ihbobul/lode/internal/metrics"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Report is the final result of one load test run. Latency statistics cover
// successful requests only; ErrorStats is nil (JSON null) when every request
// succeeded.
type Report struct {
	ID                   string           `json:"id"`
	Status               string           `json:"status"`
	TotalRequests        int64            `json:"total_requests"`
	SuccessfulRequests   int64            `json:"successful_requests"`
	FailedRequests       int64            `json:"failed_requests"`
	RequestsPerSecond    float64          `json:"requests_per_second"`
	MinResponseTimeMs    float64          `json:"min_response_time_ms"`
	MaxResponseTimeMs    float64          `json:"max_response_time_ms"`
	MeanResponseTimeMs   float64          `json:"mean_response_time_ms"`
	MedianResponseTimeMs float64          `json:"median_response_time_ms"`
	P95ResponseTimeMs    float64          `json:"p95_response_time_ms"`
	P99ResponseTimeMs    float64          `json:"p99_response_time_ms"`
	TotalDurationSeconds float64          `json:"total_duration_seconds"`
	ErrorStats           map[string]int64 `json:"error_stats"`
}

// Build assembles a report from a post-join collector snapshot. It must be
// called once, after every attempt has been folded in.
func Build(snap metrics.Snapshot) *Report {
	return &Report{
		ID:                   ulid.Make().String(),
		Status:               StatusCompleted,
		TotalRequests:        snap.Total,
		SuccessfulRequests:   snap.Successes,
		FailedRequests:       snap.Failures,
		RequestsPerSecond:    snap.RequestsPerSec,
		MinResponseTimeMs:    millis(snap.MinLatency),
		MaxResponseTimeMs:    millis(snap.MaxLatency),
		MeanResponseTimeMs:   millis(snap.MeanLatency),
		MedianResponseTimeMs: millis(snap.MedianLatency),
		P95ResponseTimeMs:    millis(snap.P95Latency),
		P99ResponseTimeMs:    millis(snap.P99Latency),
		TotalDurationSeconds: snap.Duration.Seconds(),
		ErrorStats:           snap.Errors,
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
