package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/tilevision/tilevision/internal/photo"
)

const (
	defaultPreviewWidth = 48
	maxPreviewRows      = 14
)

func (m Model) previewWidth() int {
	if m.width > 0 && m.width-8 < defaultPreviewWidth {
		return m.width - 8
	}
	return defaultPreviewWidth
}

func (m Model) slotWidth() int {
	w := m.previewWidth()/2 - 4
	if w < 12 {
		w = 12
	}
	return w
}

// renderPreview draws a photo as half-block cells, two pixels per terminal
// row. Good enough to tell two designs apart; not a faithful render.
func (m Model) renderPreview(enc *photo.Encoded, width int) string {
	if enc == nil {
		return m.styles.Subtle.Render("(no image)")
	}
	if width < 4 {
		width = 4
	}

	img, err := enc.Decode()
	if err != nil {
		return m.styles.Subtle.Render("(preview unavailable)")
	}

	thumb := imaging.Fit(img, width, maxPreviewRows*2, imaging.NearestNeighbor)
	bounds := thumb.Bounds()

	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexColor(thumb.At(x, y))
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = hexColor(thumb.At(x, y+1))
			}
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀")
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
