package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tilevision/tilevision/internal/category"
	"github.com/tilevision/tilevision/internal/errdefs"
	"github.com/tilevision/tilevision/internal/mailbox"
	"github.com/tilevision/tilevision/internal/photo"
)

func (m Model) viewCategories() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	title := m.styles.Title.Render("What Should Change?")
	b.WriteString(title)
	b.WriteString("\n\n")

	for i, cat := range category.All {
		marker := "[ ]"
		if m.selection.Has(cat) {
			marker = "[x]"
		}
		line := fmt.Sprintf("%s %s", marker, cat.Label())
		if i == m.catIndex {
			b.WriteString(m.styles.SelectedOption.Render("▶ " + line))
		} else {
			b.WriteString(m.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.selection.Empty() {
		hint := m.styles.Warning.Render("Select at least one category to generate designs")
		b.WriteString(hint)
		b.WriteString("\n")
	} else {
		chosen := m.styles.Normal.Render("Selected: " + m.selection.String())
		b.WriteString(chosen)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := m.styles.Subtle.Render("↑/↓ to navigate, Space to toggle, Enter to generate, Esc to retake photo")
	b.WriteString(help)

	return b.String()
}

func (m Model) updateCategoriesState(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	all := category.All
	switch keyMsg.String() {
	case "up":
		if m.catIndex > 0 {
			m.catIndex--
		}
	case "down":
		if m.catIndex < len(all)-1 {
			m.catIndex++
		}
	case " ":
		m.selection.Toggle(all[m.catIndex])
	case "esc":
		m.box.Clear()
		m.state = StateCapture
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.startCamera())
	case "enter":
		if m.selection.Empty() {
			return m, nil
		}
		return m.beginGeneration()
	}
	return m, nil
}

// beginGeneration consumes the captured photo from the session mailbox,
// validates it, and kicks off the initial pair. A missing or corrupt handoff
// is shown to the user and sends them back to capture; it never generates
// from bad data.
func (m Model) beginGeneration() (tea.Model, tea.Cmd) {
	raw, ok := m.box.TakeOnce(mailbox.KeyCapturedPhoto)
	if !ok {
		m.err = fmt.Errorf("%w, please retake", errdefs.ErrNoUpstreamData)
		m.state = StateError
		return m, nil
	}

	uri, ok := raw.(string)
	if !ok {
		m.err = errdefs.NewCustomError(errdefs.ErrTypeInvalidImage, "captured photo is corrupt, please retake")
		m.state = StateError
		return m, nil
	}

	room, err := photo.ParseDataURI(uri)
	if err != nil {
		m.err = errdefs.NewCustomError(errdefs.ErrTypeInvalidImage, fmt.Sprintf("captured photo is not a valid image: %v", err))
		m.state = StateError
		return m, nil
	}

	m.room = room
	m.kept = 0
	seq := m.compare.BeginPair()
	m.state = StateCompare
	m.isLoading = true
	return m, tea.Batch(m.spinner.Tick, m.generatePair(seq, room))
}
