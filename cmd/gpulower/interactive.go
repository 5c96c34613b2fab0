package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/substratelabs/gpulower/conversion"
	"github.com/substratelabs/gpulower/interp"
	"github.com/substratelabs/gpulower/ir"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	demoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	paneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	demos    []demo
	selected int
	state    modelState

	demoName string
	before   string
	after    string
	lowered  *ir.Func
	args     []any
	pane     int
	result   string
	view     viewport.Model
	ready    bool
}

type modelState int

const (
	stateSelectDemo modelState = iota
	stateInspect
)

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{
		demos: demos(),
		state: stateSelectDemo,
	}
}

type loweredMsg struct {
	err    error
	name   string
	before string
	after  string
	fn     *ir.Func
	args   []any
}

type ranMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) lowerDemo() tea.Msg {
	d := m.demos[m.selected]
	f := d.build()
	before := ir.Sprint(f)

	if err := conversion.Apply(f, conversion.DefaultConfig()); err != nil {
		return loweredMsg{name: d.name, before: before, err: err}
	}

	return loweredMsg{
		name:   d.name,
		before: before,
		after:  ir.Sprint(f),
		fn:     f,
		args:   d.args(),
	}
}

func (m *interactiveModel) runLowered() tea.Msg {
	results, err := interp.New(interp.Config{}).Exec(m.lowered, m.args...)
	if err != nil {
		return ranMsg{err: err}
	}
	var parts []string
	for _, r := range results {
		parts = append(parts, formatResult(r))
	}
	return ranMsg{result: strings.Join(parts, ", ")}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - 6
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectDemo && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectDemo && m.selected < len(m.demos)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectDemo {
				return m, m.lowerDemo
			}

		case "tab":
			if m.state == stateInspect && m.after != "" {
				m.pane = 1 - m.pane
				m.setPane()
			}

		case "r":
			if m.state == stateInspect && m.lowered != nil {
				return m, m.runLowered
			}

		case "esc":
			if m.state == stateInspect {
				m.state = stateSelectDemo
				m.result = ""
				m.err = nil
			}
		}

	case loweredMsg:
		m.demoName = msg.name
		m.before = msg.before
		m.after = msg.after
		m.lowered = msg.fn
		m.args = msg.args
		m.err = msg.err
		m.pane = 0
		if msg.err == nil && msg.after != "" {
			m.pane = 1
		}
		m.result = ""
		m.state = stateInspect
		m.setPane()

	case ranMsg:
		m.result = msg.result
		m.err = msg.err
	}

	if m.state == stateInspect {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) setPane() {
	if m.pane == 0 {
		m.view.SetContent(m.before)
	} else {
		m.view.SetContent(m.after)
	}
	m.view.GotoTop()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("gpulower"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectDemo:
		b.WriteString("Select a demo to lower:\n\n")
		for i, d := range m.demos {
			line := fmt.Sprintf("%s  %s", demoStyle.Render(d.name), helpStyle.Render(d.describe))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter lower • q quit"))

	case stateInspect:
		pane := "source"
		if m.pane == 1 {
			pane = "lowered"
		}
		b.WriteString(demoStyle.Render(m.demoName))
		b.WriteString("  ")
		b.WriteString(paneStyle.Render(pane))
		b.WriteString("\n")
		if m.ready {
			b.WriteString(m.view.View())
		}
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else if m.result != "" {
			b.WriteString(resultStyle.Render("Result: " + m.result))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab switch pane • r run • ↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
