package manager

import (
	"Go2FlavorSpectra/internal/model"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// SkippedRun records why a run contributed no samples.
type SkippedRun struct {
	Run    model.RunID
	Kind   model.ErrorKind
	Reason string
}

// Report summarizes one aggregation.
type Report struct {
	Root           string
	Variant        model.Variant
	RunsSeen       int
	RunsAggregated int
	Skipped        []SkippedRun
	Samples        int
	// Outputs names the writers that persisted the dataset.
	Outputs []string
	// Empty is set when no run produced samples and nothing was written.
	Empty    bool
	Started  time.Time
	Duration time.Duration
}

// SkippedByKind counts skipped runs per failure kind.
func (r *Report) SkippedByKind() map[model.ErrorKind]int {
	counts := make(map[model.ErrorKind]int)
	for _, s := range r.Skipped {
		counts[s.Kind]++
	}
	return counts
}

func (r *Report) String() string {
	return fmt.Sprintf("%d/%d runs aggregated, %d skipped, %d samples", r.RunsAggregated, r.RunsSeen, len(r.Skipped), r.Samples)
}

// HTML renders the report for the email notification.
func (r *Report) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Aggregation of <code>%s</code> (%s)</h3>", html.EscapeString(r.Root), r.Variant)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li><b>Started:</b> %s</li>", r.Started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "<li><b>Duration:</b> %s</li>", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "<li><b>Runs aggregated:</b> %d of %d</li>", r.RunsAggregated, r.RunsSeen)
	fmt.Fprintf(&b, "<li><b>Samples:</b> %d</li>", r.Samples)
	if r.Empty {
		b.WriteString("<li><b>No output written:</b> no run produced samples</li>")
	}
	for _, out := range r.Outputs {
		fmt.Fprintf(&b, "<li><b>Output:</b> <code>%s</code></li>", html.EscapeString(out))
	}
	b.WriteString("</ul>")

	if len(r.Skipped) > 0 {
		byKind := r.SkippedByKind()
		kinds := make([]model.ErrorKind, 0, len(byKind))
		for k := range byKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		b.WriteString("<h4>Skipped runs</h4><ul>")
		for _, k := range kinds {
			fmt.Fprintf(&b, "<li><code>%s</code>: %d</li>", k, byKind[k])
		}
		b.WriteString("</ul><table><tr><th>test</th><th>flavor</th><th>reason</th></tr>")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(s.Run.Test), html.EscapeString(s.Run.Flavor), html.EscapeString(s.Reason))
		}
		b.WriteString("</table>")
	}
	return b.String()
}
