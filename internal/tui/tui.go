// Package tui renders the apply run as a small bubbletea program: a spinner
// while directives execute, then a styled summary.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okrent/llmapply/internal/executor"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

type reportMsg struct{ report *executor.Report }

type errorMsg struct{ err error }

// RunFunc executes the apply and returns its report.
type RunFunc func() (*executor.Report, error)

// Model drives the spinner-then-summary flow.
type Model struct {
	run     RunFunc
	spinner spinner.Model
	report  *executor.Report
	err     error
	done    bool
}

// New creates the program model around the apply function.
func New(run RunFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{run: run, spinner: s}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		report, err := m.run()
		if err != nil {
			return errorMsg{err}
		}
		return reportMsg{report}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case reportMsg:
		m.done = true
		m.report = msg.report
		return m, tea.Quit

	case errorMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if !m.done {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch {
	case !m.done:
		return fmt.Sprintf("%s Applying changes...", m.spinner.View())
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	default:
		return m.renderSummary()
	}
}

// Report returns the finished report, if any, for exit-code decisions.
func (m Model) Report() *executor.Report { return m.report }

// Err returns the fatal error, if any.
func (m Model) Err() error { return m.err }

func (m Model) renderSummary() string {
	var b strings.Builder

	if m.report == nil || len(m.report.Statuses) == 0 {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
		return b.String()
	}

	var applied, failed []executor.DirectiveStatus
	for _, s := range m.report.Statuses {
		if s.Success {
			applied = append(applied, s)
		} else {
			failed = append(failed, s)
		}
	}

	b.WriteString(headerStyle.Render("File changes"))
	b.WriteString("\n\n")

	if len(applied) > 0 {
		b.WriteString(successStyle.Render("Applied:"))
		b.WriteString("\n")
		for _, s := range applied {
			b.WriteString(fmt.Sprintf("  %-7s %s\n", s.Kind, s.FilePath))
		}
	}
	if len(failed) > 0 {
		b.WriteString(errorStyle.Render("Failed:"))
		b.WriteString("\n")
		for _, s := range failed {
			b.WriteString(fmt.Sprintf("  %-7s %s\n", s.Kind, s.FilePath))
			if s.Error != "" {
				b.WriteString(faintStyle.Render("          " + firstLine(s.Error)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Run starts the program and returns the final model.
func Run(run RunFunc) (Model, error) {
	p := tea.NewProgram(New(run))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
