package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tilevision/tilevision/internal/mailbox"
	"github.com/tilevision/tilevision/internal/photo"
)

func (m Model) viewSaved() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	if m.saveErr != nil {
		title := m.styles.Error.Render("Save Failed")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(m.styles.Error.Render("✗ " + m.saveErr.Error()))
		b.WriteString("\n\n")
		help := m.styles.Subtle.Render("n for a new session, Ctrl+C to quit")
		b.WriteString(help)
		return b.String()
	}

	if m.isLoading {
		title := m.styles.Title.Render("Saving Design")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.styles.Normal.Render("Writing to gallery...")))
		return b.String()
	}

	title := m.styles.Success.Render("Design Saved!")
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.savedDesign != nil {
		b.WriteString(m.renderPreview(m.savedDesign, m.previewWidth()))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Normal.Render("Saved to " + m.savedPath))
	b.WriteString("\n")

	if len(m.history) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Bold.Render("Gallery history"))
		b.WriteString("\n")
		shown := m.history
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, entry := range shown {
			b.WriteString(m.styles.Subtle.Render("  • " + strings.TrimSpace(entry)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	help := m.styles.Subtle.Render("n for a new session, Ctrl+C to quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) updateSavedState(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case designSavedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.saveErr = msg.err
			return m, nil
		}
		m.savedPath = msg.path
		m.history = msg.history

		// The saved screen renders from the mailbox handoff, same as the
		// capture-to-categories transfer.
		if raw, ok := m.box.TakeOnce(mailbox.KeyDesignPhoto); ok {
			if uri, ok := raw.(string); ok {
				if design, err := photo.ParseDataURI(uri); err == nil {
					m.savedDesign = design
				}
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			return m.resetSession()
		}
	}
	return m, nil
}
