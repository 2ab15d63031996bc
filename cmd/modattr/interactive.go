package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/classfile/attribute"
)

type interactiveModel struct {
	filename string
	sections []section
	viewport viewport.Model
	selected int
	ready    bool
}

func newInteractiveModel(filename string, m attribute.ModuleAttribute) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		sections: buildSections(m, painter(true)),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "left", "h", "shift+tab":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case "right", "l", "tab":
			if m.selected < len(m.sections)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		// title, tab bar, blank line, help
		height := max(msg.Height-4, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *interactiveModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderSection(m.sections[m.selected], painter(true)))
	m.viewport.GotoTop()
}

func (m *interactiveModel) tabs() string {
	parts := make([]string, len(m.sections))
	for i, s := range m.sections {
		label := " " + s.title + " "
		if i == m.selected {
			parts[i] = selectedStyle.Render(label)
		} else {
			parts[i] = label
		}
	}
	return strings.Join(parts, "│")
}

func (m *interactiveModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Module attribute"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ section • ↑/↓ scroll • q quit"))
	return b.String()
}

func runInteractive(filename string, m attribute.ModuleAttribute) error {
	p := tea.NewProgram(newInteractiveModel(filename, m), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
