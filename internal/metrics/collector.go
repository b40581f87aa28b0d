package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector aggregates request outcomes in a thread-safe manner. Successful
// latencies feed an HDR histogram; failures feed a per-label tally. The fold
// is commutative, so completion order never changes the final state.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	errorsByName map[string]int64
}

// Snapshot represents aggregated metrics at a point in time.
type Snapshot struct {
	Total          int64
	Successes      int64
	Failures       int64
	MinLatency     time.Duration
	MaxLatency     time.Duration
	MeanLatency    time.Duration
	MedianLatency  time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	Duration       time.Duration
	RequestsPerSec float64
	Errors         map[string]int64
}

// NewCollector creates an empty collector. The histogram tracks latencies
// from 1µs up to 60s with 3 significant figures, so memory stays bounded
// regardless of request volume.
func NewCollector() *Collector {
	return &Collector{
		hist:         hdrhistogram.New(1, 60_000_000, 3),
		errorsByName: make(map[string]int64),
	}
}

// Record folds one outcome into the running aggregates. Safe for concurrent
// use from any number of completing attempts.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !o.Success() {
		c.failures++
		c.errorsByName[o.Label()]++
		return
	}

	c.successes++
	c.sumLatency += o.Duration

	if c.minLatency == 0 || o.Duration < c.minLatency {
		c.minLatency = o.Duration
	}
	if o.Duration > c.maxLatency {
		c.maxLatency = o.Duration
	}

	us := o.Duration.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)
}

// Snapshot computes aggregated statistics for the given elapsed wall-clock
// time. With zero successful requests all latency fields are zero; with zero
// elapsed time the throughput is zero rather than infinite. The mean comes
// from the exact running sum, not the histogram, so it carries no bucket
// quantization error.
func (c *Collector) Snapshot(elapsed time.Duration) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	snap := Snapshot{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
		Duration:   elapsed,
	}

	if c.successes > 0 {
		snap.MeanLatency = time.Duration(int64(c.sumLatency) / c.successes)
	}
	if c.hist.TotalCount() > 0 {
		// The histogram truncates to microseconds and quantizes into buckets,
		// so its quantiles can land just outside the exact observed range.
		// Clamping keeps min <= median <= p95 <= p99 <= max.
		snap.MedianLatency = c.clampQuantile(50)
		snap.P95Latency = c.clampQuantile(95)
		snap.P99Latency = c.clampQuantile(99)
	}

	if elapsed > 0 && total > 0 {
		snap.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.errorsByName) > 0 {
		snap.Errors = make(map[string]int64, len(c.errorsByName))
		for k, v := range c.errorsByName {
			snap.Errors[k] = v
		}
	}

	return snap
}

// clampQuantile reads a histogram quantile and pulls it back into the exact
// [minLatency, maxLatency] window. Caller holds c.mu.
func (c *Collector) clampQuantile(q float64) time.Duration {
	d := time.Duration(c.hist.ValueAtQuantile(q)) * time.Microsecond
	if d < c.minLatency {
		return c.minLatency
	}
	if d > c.maxLatency {
		return c.maxLatency
	}
	return d
}
