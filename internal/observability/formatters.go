// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/pipeline"
	"github.com/jonathan/series-publisher/internal/planner"
	"github.com/jonathan/series-publisher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxTopicsToShow caps the topic list of a plan box
	maxTopicsToShow = 30
)

var statusMarks = map[string]string{
	db.TopicStatusPending:    "·",
	db.TopicStatusProcessing: "…",
	db.TopicStatusCompleted:  "✓",
	db.TopicStatusFailed:     "✗",
}

// Printer writes human-readable summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to n runes. fmt's width counts bytes, which
// misaligns CJK titles.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintProgress writes one line per stage event. It matches pipeline.ProgressCallback.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	if ev.Total > 0 {
		fmt.Fprintf(p.out, "Stage %d/%d: %s\n", ev.Number, ev.Total, ev.Message)
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", ev.Stage, ev.Message)
}

// PrintRunResult outputs the outcome of one run.
func (p *Printer) PrintRunResult(res *types.RunResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	switch {
	case res.Success:
		sb.WriteString("Outcome:  published\n")
	case res.TopicID == nil && res.ErrorMessage == "":
		sb.WriteString("Outcome:  no pending topics\n")
	default:
		sb.WriteString("Outcome:  failed\n")
	}
	if res.PlanID != nil {
		sb.WriteString(fmt.Sprintf("Plan:     %s\n", res.PlanID))
	}
	if res.TopicID != nil {
		sb.WriteString(fmt.Sprintf("Topic:    %s\n", res.TopicID))
	}
	sb.WriteString(fmt.Sprintf("More:     %t\n", res.HasMoreTopics))
	if res.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", res.ErrorMessage))
	}

	p.printBox("RUN RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlans outputs every plan with its progress.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPlans(plans []db.Plan) {
	if len(plans) == 0 {
		fmt.Fprintln(p.out, "No plans.")
		return
	}

	var sb strings.Builder
	for i, plan := range plans {
		sb.WriteString(fmt.Sprintf("%s  (%s)\n", plan.ResourceName, plan.ResourceKind))
		sb.WriteString(fmt.Sprintf("  %d/%d topics  %.1f%%  %s",
			plan.CompletedTopicCount, plan.TotalTopicCount, plan.ProgressPercent(), plan.ID))
		if i < len(plans)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(fmt.Sprintf("PLANS (%d)", len(plans)), sb.String())
}

// PrintPlanDetail outputs a plan and its topics in position order.
func (p *Printer) PrintPlanDetail(d *planner.PlanDetail) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resource: %s (%s)\n", d.Plan.ResourceName, d.Plan.ResourceKind))
	sb.WriteString(fmt.Sprintf("Progress: %d/%d  %.1f%%\n", d.Plan.CompletedTopicCount, d.Plan.TotalTopicCount, d.Plan.ProgressPercent()))

	statuses := make([]string, 0, len(d.Counts))
	for s := range d.Counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", s, d.Counts[s]))
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n\n", strings.Join(parts, " ")))

	count := min(len(d.Topics), maxTopicsToShow)
	for i := 0; i < count; i++ {
		t := d.Topics[i]
		mark := statusMarks[t.Status]
		if mark == "" {
			mark = "?"
		}
		sb.WriteString(fmt.Sprintf("%s %2d. %s\n", mark, t.Position, t.Title))
	}
	if len(d.Topics) > maxTopicsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more topics\n", len(d.Topics)-maxTopicsToShow))
	}

	p.printBox("PLAN "+d.Plan.ID.String(), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDrainSummary outputs how many topics each drained plan published.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDrainSummary(results map[uuid.UUID][]types.RunResult) {
	if len(results) == 0 {
		fmt.Fprintln(p.out, "No plans with pending topics.")
		return
	}

	ids := make([]uuid.UUID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var sb strings.Builder
	for _, id := range ids {
		published, failed := 0, 0
		for _, r := range results[id] {
			if r.Success {
				published++
			} else {
				failed++
			}
		}
		sb.WriteString(fmt.Sprintf("%s  published=%d failed=%d\n", id, published, failed))
	}
	p.printBox("DRAIN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
