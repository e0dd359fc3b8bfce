package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

type taskDoneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	title   string
	task    func() error
	err     error
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
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
	return fmt.Sprintf("%s %s\n", m.spinner.View(), StyleMuted.Render(m.title))
}

// RunWithSpinner runs task while showing a spinner on out. When out is not a
// terminal the task runs without any animation.
func RunWithSpinner(out io.Writer, title string, task func() error) error {
	if !isTerminal(out) {
		return task()
	}

	model := spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(StylePrimary),
		),
		title: title,
		task:  task,
	}

	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil)).Run()
	if err != nil {
		return err
	}
	return final.(spinnerModel).err
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
