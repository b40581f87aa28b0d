// Package runner dispatches a bounded number of request attempts across a
// capped set of concurrent execution slots, with optional rate pacing.
package runner
