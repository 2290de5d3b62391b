package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) viewWelcome() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	title := m.styles.Title.Render("Room redesign studio")
	b.WriteString(title)
	b.WriteString("\n")

	overview := "Photograph your room (or load a photo), pick what to redesign,\n"
	overview += "then compare AI-generated variants side by side until one sticks.\n"
	b.WriteString(m.styles.Normal.Render(overview))
	b.WriteString("\n\n")

	help := m.styles.Subtle.Render("Press Enter to start the camera, Ctrl+C to quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) updateWelcomeState(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.state = StateCapture
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.startCamera())
		}
	}
	return m, nil
}
