package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tilevision/tilevision/internal/capture"
	"github.com/tilevision/tilevision/internal/mailbox"
)

func (m Model) viewCapture() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")

	title := m.styles.Title.Render("Capture Your Room")
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.pickingFile {
		if m.cameraErr != nil {
			warning := m.styles.Warning.Render("⚠ Camera unavailable: " + m.cameraErr.Error())
			b.WriteString(warning)
			b.WriteString("\n\n")
		}
		b.WriteString(m.styles.Normal.Render("Load a photo from disk instead:"))
		b.WriteString("\n\n")
		b.WriteString(m.pathInput.View())
		b.WriteString("\n\n")
		help := m.styles.Subtle.Render("Enter to load, Esc to go back")
		b.WriteString(help)
		return b.String()
	}

	switch m.capture.State() {
	case capture.StateStreaming:
		status := m.styles.Success.Render("● Camera live")
		b.WriteString(status)
		b.WriteString("\n\n")
		help := m.styles.Subtle.Render("Space to capture, f to load a file instead")
		b.WriteString(help)

	case capture.StateFrozen:
		frame := m.capture.Frame()
		b.WriteString(m.renderPreview(frame, m.previewWidth()))
		b.WriteString("\n")
		info := fmt.Sprintf("Captured %dx%d (%s, %d KB)", frame.Width, frame.Height, frame.MIME, len(frame.Bytes)/1024)
		b.WriteString(m.styles.Normal.Render(info))
		b.WriteString("\n\n")
		help := m.styles.Subtle.Render("Enter to use this photo, r to retake, f to load a file")
		b.WriteString(help)

	default:
		if m.isLoading {
			loading := m.styles.Normal.Render("Starting camera...")
			b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), loading))
		} else if m.cameraErr != nil {
			errMsg := m.styles.Error.Render("✗ " + m.cameraErr.Error())
			b.WriteString(errMsg)
			b.WriteString("\n\n")
			help := m.styles.Subtle.Render("f to load a photo from disk, r to retry the camera")
			b.WriteString(help)
		}
	}

	return b.String()
}

func (m Model) updateCaptureState(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cameraStartedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.cameraErr = msg.err
			m.pickingFile = true
			m.pathInput.Focus()
			return m, textinput.Blink
		}
		m.cameraErr = nil
		return m, nil

	case frameCapturedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.cameraErr = msg.err
		}
		return m, nil

	case fileLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.cameraErr = msg.err
			return m, nil
		}
		m.pickingFile = false
		m.pathInput.Blur()
		return m, nil
	}

	if m.pickingFile {
		return m.updateFilePicker(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case " ":
			if m.capture.State() == capture.StateStreaming {
				m.isLoading = true
				return m, tea.Batch(m.spinner.Tick, m.captureFrame())
			}
		case "enter":
			if frame := m.capture.Frame(); frame != nil {
				m.box.Put(mailbox.KeyCapturedPhoto, frame.ToDataURI())
				m.state = StateCategories
				return m, nil
			}
		case "r":
			m.cameraErr = nil
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.startCamera())
		case "f":
			m.pickingFile = true
			m.pathInput.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return m, nil
			}
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.loadFile(path))
		case "esc":
			m.pickingFile = false
			m.pathInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}
