// Package metrics classifies request outcomes and aggregates them into
// latency and error statistics backed by an HDR histogram.
package metrics
