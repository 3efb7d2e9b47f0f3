package cli

import (
	"fmt"
	"io"
	"strings"

	"passfmt/internal/observ"
)

// printTimings writes one line per file: the phases in order, then the
// total with the round count and the slowest phase.
func printTimings(out io.Writer, path string, report *observ.Report) {
	if out == nil || report == nil {
		return
	}
	parts := make([]string, 0, len(report.Phases)+1)
	for _, p := range report.Phases {
		parts = append(parts, fmt.Sprintf("%s %.1f ms", p.Name, p.DurationMS))
	}
	parts = append(parts, fmt.Sprintf("total %.1f ms (%d round(s), slowest %s)", report.TotalMS, report.Rounds, report.Slowest))
	fmt.Fprintf(out, "%s: %s\n", path, strings.Join(parts, ", "))
}
