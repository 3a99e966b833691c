// Package observability provides formatted output utilities for verbose mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/recruit-pipeline/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxEvaluationChars caps how much of a model evaluation is echoed
	maxEvaluationChars = 200
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStartup outputs the listening port and which integrations are
// configured, so a misconfigured deployment is visible at boot.
func (p *Printer) PrintStartup(port int, envSummary map[string]bool) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Listening on port %d\n\n", port))

	keys := make([]string, 0, len(envSummary))
	for key := range envSummary {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		mark := "✗"
		if envSummary[key] {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, key))
	}

	p.printBox("RECRUITMENT PIPELINE SERVER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDispatchResult outputs a human-readable summary of one processed
// callback.
func (p *Printer) PrintDispatchResult(result *pipeline.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Outcome:   %s\n", result.Outcome))
	if result.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage:     %s\n", result.Stage))
	}
	if result.CandidateName != "" {
		sb.WriteString(fmt.Sprintf("Candidate: %s\n", result.CandidateName))
	}
	if result.ConversationID != "" {
		sb.WriteString(fmt.Sprintf("Conv ID:   %s\n", result.ConversationID))
	}
	if result.Row > 0 {
		sb.WriteString(fmt.Sprintf("Row:       %d\n", result.Row))
	}
	if result.Score != "" {
		sb.WriteString(fmt.Sprintf("Score:     %s\n", result.Score))
	}
	if result.Evaluation != "" {
		evaluation := result.Evaluation
		if len(evaluation) > maxEvaluationChars {
			evaluation = evaluation[:maxEvaluationChars] + "..."
		}
		sb.WriteString("\nEvaluation:\n")
		sb.WriteString(evaluation)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n%s", result.Message))

	p.printBox("CALLBACK RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
