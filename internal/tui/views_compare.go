package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tilevision/tilevision/internal/compare"
	"github.com/tilevision/tilevision/internal/mailbox"
)

func (m Model) viewCompare() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	title := m.styles.Title.Render("Pick Your Favorite")
	b.WriteString(title)
	b.WriteString("\n\n")

	switch m.compare.Phase() {
	case compare.PhaseGeneratingPair:
		loading := m.styles.Normal.Render("Generating two designs...")
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), loading))

	case compare.PhaseFailed:
		errMsg := m.styles.Error.Render("✗ Generation failed: " + m.compare.PairErr().Error())
		b.WriteString(errMsg)
		b.WriteString("\n\n")
		help := m.styles.Subtle.Render("r to retry, Esc to change categories")
		b.WriteString(help)

	case compare.PhaseReady, compare.PhaseRegenerating:
		b.WriteString(m.renderSlots())
		b.WriteString("\n")

		if m.compare.Phase() == compare.PhaseRegenerating {
			regen := m.styles.Normal.Render(fmt.Sprintf("Regenerating design %d...", m.compare.RegeneratingSlot()+1))
			b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), regen))
		} else if err := m.compare.RegenErr(); err != nil {
			inline := m.styles.Error.Render("✗ Regeneration failed: " + err.Error())
			b.WriteString(inline)
			b.WriteString("\n")
			b.WriteString(m.styles.Subtle.Render("Showing the previous design instead"))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		help := m.styles.Subtle.Render("1/2 to keep a design and regenerate the other, s to save the kept one, Esc to change categories")
		b.WriteString(help)
	}

	return b.String()
}

func (m Model) renderSlots() string {
	cards := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		var card strings.Builder

		label := fmt.Sprintf("Design %d", i+1)
		if i == m.kept {
			label += "  ★ kept"
		}
		card.WriteString(m.styles.Bold.Render(label))
		card.WriteString("\n")

		design := m.compare.Slot(i)
		switch {
		case m.compare.Phase() == compare.PhaseRegenerating && i == m.compare.RegeneratingSlot():
			card.WriteString(m.styles.Subtle.Render("regenerating..."))
		case design != nil:
			card.WriteString(m.renderPreview(design.Image, m.slotWidth()))
			card.WriteString("\n")
			card.WriteString(m.styles.Subtle.Render(shortID(design.ID)))
		default:
			card.WriteString(m.styles.Subtle.Render("empty"))
		}

		frame := m.styles.SlotFrame
		if i == m.kept {
			frame = m.styles.SlotFrameKept
		}
		cards = append(cards, frame.Render(card.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards[0], " ", cards[1])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) updateCompareState(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pairGeneratedMsg:
		if !m.compare.CommitPair(msg.seq, msg.images, msg.err) {
			return m, nil
		}
		m.isLoading = false
		if m.compare.Phase() == compare.PhaseReady {
			return m, m.notifyReady()
		}
		return m, nil

	case slotRegeneratedMsg:
		if !m.compare.CommitRegenerate(msg.seq, msg.image, msg.err) {
			return m, nil
		}
		m.isLoading = false
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "1", "2":
		if m.compare.Phase() != compare.PhaseReady {
			return m, nil
		}
		keep := int(keyMsg.String()[0] - '1')
		_, seq, err := m.compare.Choose(keep)
		if err != nil {
			return m, nil
		}
		m.kept = keep
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.regenerateSlot(seq, m.room))

	case "s":
		if m.compare.Phase() != compare.PhaseReady {
			return m, nil
		}
		design := m.compare.Slot(m.kept)
		if design == nil {
			return m, nil
		}
		m.box.Put(mailbox.KeyDesignPhoto, design.Image.ToDataURI())
		m.state = StateSaved
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.saveDesign(design))

	case "r":
		if m.compare.Phase() != compare.PhaseFailed {
			return m, nil
		}
		seq := m.compare.BeginPair()
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.generatePair(seq, m.room))

	case "esc":
		// Back to categories with the same room photo. The mailbox slot was
		// consumed on the way in, so repopulate it for the next handoff.
		if m.room != nil {
			m.box.Put(mailbox.KeyCapturedPhoto, m.room.ToDataURI())
		}
		m.compare = compare.NewController()
		m.state = StateCategories
		return m, nil
	}

	return m, nil
}
