package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	title := m.styles.Error.Render("Something Went Wrong")
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("✗ " + m.err.Error()))
		b.WriteString("\n\n")
	}

	help := m.styles.Subtle.Render("Enter to start over from capture, Ctrl+C to quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) updateErrorState(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m.resetSession()
		}
	}
	return m, nil
}
