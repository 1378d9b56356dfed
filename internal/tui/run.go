// internal/tui/run.go
//
// Live progress view for one plan execution, following The Elm Architecture
// via bubbletea: scheduler events are forwarded to the program as messages,
// the model tracks per-task status, and the view renders one line per task.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/genoscope/genoscope/internal/plan"
	"github.com/genoscope/genoscope/internal/scheduler"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CEC9"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskSucceeded
	taskFailed
)

type taskRow struct {
	name        string
	description string
	state       taskState
	detail      string
}

type taskStartedMsg struct{ name string }

type taskFinishedMsg struct {
	name   string
	failed bool
	detail string
}

type planFinishedMsg struct{ result *scheduler.RunResult }

// model renders the run in progress.
type model struct {
	sample  string
	rows    []taskRow
	spinner spinner.Model
	done    bool
}

func newModel(p *plan.Plan) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle
	rows := make([]taskRow, 0, len(p.Tasks))
	for _, t := range p.Ordered() {
		rows = append(rows, taskRow{name: t.Name, description: t.Description})
	}
	return model{sample: p.Metadata.SampleName, rows: rows, spinner: sp}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case taskStartedMsg:
		m.setState(msg.name, taskRunning, "")
	case taskFinishedMsg:
		if msg.failed {
			m.setState(msg.name, taskFailed, msg.detail)
		} else {
			m.setState(msg.name, taskSucceeded, "")
		}
	case planFinishedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) setState(name string, state taskState, detail string) {
	for i := range m.rows {
		if m.rows[i].name == name {
			m.rows[i].state = state
			m.rows[i].detail = detail
			return
		}
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Genoscope: "+m.sample) + "\n\n")
	for _, row := range m.rows {
		switch row.state {
		case taskRunning:
			fmt.Fprintf(&b, " %s %s\n", m.spinner.View(), runningStyle.Render(row.name))
		case taskSucceeded:
			fmt.Fprintf(&b, " %s %s\n", successStyle.Render("✓"), row.name)
		case taskFailed:
			fmt.Fprintf(&b, " %s %s\n", failedStyle.Render("✗"), row.name)
			if row.detail != "" {
				fmt.Fprintf(&b, "   %s\n", detailStyle.Render(row.detail))
			}
		default:
			fmt.Fprintf(&b, " %s %s\n", pendingStyle.Render("·"), pendingStyle.Render(row.name))
		}
	}
	if !m.done {
		b.WriteString("\n" + detailStyle.Render("q to close the view (the run keeps going)") + "\n")
	}
	return b.String()
}

// events forwards scheduler callbacks into the bubbletea program.
type events struct {
	program *tea.Program
}

func (e events) TaskStarted(index, total int, task plan.Task) {
	e.program.Send(taskStartedMsg{name: task.Name})
}

func (e events) TaskSucceeded(task plan.Task, outcome scheduler.Outcome) {
	e.program.Send(taskFinishedMsg{name: task.Name})
}

func (e events) TaskFailed(task plan.Task, outcome scheduler.Outcome) {
	e.program.Send(taskFinishedMsg{name: task.Name, failed: true, detail: outcome.Error})
}

func (e events) PlanFinished(result *scheduler.RunResult) {
	e.program.Send(planFinishedMsg{result: result})
}

// Run executes the plan while displaying the live view. It returns the run
// record once execution finishes, whether or not the view was closed early.
func Run(ctx context.Context, sched *scheduler.Scheduler, p *plan.Plan) (*scheduler.RunResult, error) {
	program := tea.NewProgram(newModel(p), tea.WithContext(ctx))

	resultCh := make(chan *scheduler.RunResult, 1)
	go func() {
		result := sched.WithEvents(events{program: program}).ExecutePlan(ctx, p)
		resultCh <- result
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		// The view failing should not lose the run; keep waiting for the
		// scheduler to finish.
		fmt.Println("progress view closed:", err)
	}
	return <-resultCh, nil
}
