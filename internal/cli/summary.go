package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/genoscope/genoscope/internal/plan"
	"github.com/genoscope/genoscope/internal/scheduler"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CEC9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// printSummary renders the per-task status table and the artifact listing
// for one run.
func printSummary(p *plan.Plan, result *scheduler.RunResult) {
	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("Run summary: "+p.Metadata.SampleName) + "\n\n")

	for _, task := range p.Ordered() {
		outcome, attempted := result.Outcome(task.Name)
		switch {
		case !attempted:
			fmt.Fprintf(&b, "  %s %s\n", skippedStyle.Render("-"), skippedStyle.Render(task.Name+" (not attempted)"))
		case outcome.Status == scheduler.TaskStatusSuccess:
			fmt.Fprintf(&b, "  %s %s\n", successStyle.Render("✓"), task.Name)
		default:
			fmt.Fprintf(&b, "  %s %s: %s\n", failedStyle.Render("✗"), task.Name, failedStyle.Render(outcome.Error))
		}
	}

	b.WriteString("\n" + headerStyle.Render("Artifacts") + "\n\n")
	for _, task := range p.Ordered() {
		outcome, attempted := result.Outcome(task.Name)
		if !attempted || outcome.Status != scheduler.TaskStatusSuccess {
			continue
		}
		for _, path := range outcome.Outputs {
			fmt.Fprintf(&b, "  %s\n", pathStyle.Render(path))
		}
	}
	fmt.Print(b.String())
}
