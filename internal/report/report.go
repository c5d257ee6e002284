// Package report compiles a terminal task state into a formatted final
// report. Section ordering is a presentation convention, not an
// orchestration invariant.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/vinayprograms/overseer/internal/task"
)

const reportWidth = 88

// sections lists the result keys in presentation order with their
// headings.
var sections = []struct {
	key     string
	heading string
}{
	{"researcher", "Research Findings"},
	{"analyst", "Analysis Insights"},
	{"writer", "Final Written Content"},
	{"reviewer", "Reviewer Assessment"},
}

// Generator renders final reports. Styled output colors the headings;
// plain output suits logs and piped destinations.
type Generator struct {
	styled bool
}

// New creates a report generator. styled enables terminal colors.
func New(styled bool) *Generator {
	return &Generator{styled: styled}
}

// Generate produces the final report for a terminal task state,
// concatenating each present result section in fixed order.
func (g *Generator) Generate(st *task.State) string {
	var body []string
	for _, sec := range sections {
		res, ok := st.Results[sec.key]
		if !ok {
			continue
		}
		content := wordwrap.String(res.Content, reportWidth)
		body = append(body, g.heading(sec.heading)+"\n"+content)
	}

	report := "No output generated."
	if len(body) > 0 {
		report = strings.Join(body, "\n\n")
	}

	var b strings.Builder
	rule := strings.Repeat("=", reportWidth)

	b.WriteString(g.title("FINAL REPORT") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Task ID:   %s\n", st.TaskID)
	fmt.Fprintf(&b, "Topic:     %s\n", st.Query)
	fmt.Fprintf(&b, "Status:    %s\n", st.Status)
	b.WriteString(rule + "\n\n")

	b.WriteString(report + "\n\n")

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Agents involved:  %s\n", joinOrNone(st.CompletedAgents))
	fmt.Fprintf(&b, "Errors:           %s\n", joinOrNone(st.Errors))
	fmt.Fprintf(&b, "Total iterations: %d\n", st.IterationCount)

	return b.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}
