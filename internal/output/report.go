package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ihbobul/lode/internal/report"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, rep *report.Report) {
	fmt.Fprintln(w, "\n--- Load Test Report ---")
	fmt.Fprintf(w, "Run ID:            %s\n", rep.ID)
	fmt.Fprintf(w, "Total Requests:    %d\n", rep.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", rep.SuccessfulRequests)
	fmt.Fprintf(w, "Failed:            %d\n", rep.FailedRequests)
	fmt.Fprintf(w, "Duration:          %.2fs\n", rep.TotalDurationSeconds)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", rep.RequestsPerSecond)
	fmt.Fprintln(w, "\nResponse Time (ms):")
	fmt.Fprintf(w, "  Min:             %.2f\n", rep.MinResponseTimeMs)
	fmt.Fprintf(w, "  Max:             %.2f\n", rep.MaxResponseTimeMs)
	fmt.Fprintf(w, "  Mean:            %.2f\n", rep.MeanResponseTimeMs)
	fmt.Fprintf(w, "  Median:          %.2f\n", rep.MedianResponseTimeMs)
	fmt.Fprintf(w, "  P95:             %.2f\n", rep.P95ResponseTimeMs)
	fmt.Fprintf(w, "  P99:             %.2f\n", rep.P99ResponseTimeMs)

	if len(rep.ErrorStats) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		labels := make([]string, 0, len(rep.ErrorStats))
		for label := range rep.ErrorStats {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if rep.ErrorStats[labels[i]] == rep.ErrorStats[labels[j]] {
				return labels[i] < labels[j]
			}
			return rep.ErrorStats[labels[i]] > rep.ErrorStats[labels[j]]
		})
		for _, label := range labels {
			fmt.Fprintf(w, "  %s: %d\n", label, rep.ErrorStats[label])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
