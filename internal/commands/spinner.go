package commands

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/colonyops/todosync/internal/syncer"
)

// syncDoneMsg stops the spinner.
type syncDoneMsg struct{}

// syncEventMsg carries an orchestrator status event into the spinner.
type syncEventMsg syncer.Event

// spinnerModel shows a spinner with a label and the latest sync status until
// syncDoneMsg arrives.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	event   *syncer.Event
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.StatusSyncingStyle),
		),
		label: label,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncDoneMsg:
		m.done = true
		return m, tea.Quit
	case syncEventMsg:
		ev := syncer.Event(msg)
		m.event = &ev
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	line := m.spinner.View() + " " + styles.MutedStyle.Render(m.label)
	if m.event != nil {
		line += fmt.Sprintf(" %s %s", styles.MutedStyle.Render("·"), syncSummary(*m.event))
	}
	return line
}
