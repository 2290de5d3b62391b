// Package tui is the interactive studio: capture a room photo, pick redesign
// categories, compare two generated designs side by side, refine by choosing,
// and save the winner to the gallery.
package tui

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tilevision/tilevision/internal/capture"
	"github.com/tilevision/tilevision/internal/category"
	"github.com/tilevision/tilevision/internal/compare"
	"github.com/tilevision/tilevision/internal/config"
	"github.com/tilevision/tilevision/internal/gallery"
	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/mailbox"
	"github.com/tilevision/tilevision/internal/notify"
	"github.com/tilevision/tilevision/internal/photo"
)

type Model struct {
	styles  Styles
	spinner spinner.Model
	width   int
	height  int

	state ApplicationState
	err   error

	cfg       config.Studio
	capture   *capture.Controller
	compare   *compare.Controller
	selection *category.Selection
	box       *mailbox.Mailbox
	generator compare.Generator
	gallery   *gallery.Gallery
	notifier  *notify.Notifier

	// Decoded room photo backing the active comparison session.
	room *photo.Encoded

	// Capture screen.
	pathInput   textinput.Model
	pickingFile bool
	cameraErr   error

	// Categories screen.
	catIndex int

	// Compare screen. kept tracks the slot the user last preferred; the
	// save action writes that slot to the gallery.
	kept int

	// Saved screen.
	savedDesign *photo.Encoded
	savedPath   string
	history     []string
	saveErr     error

	isLoading bool
}

func NewModel(cfg config.Studio, camera capture.Camera, generator compare.Generator, gal *gallery.Gallery, notifier *notify.Notifier) Model {
	styles := NewStyles(TerracottaTheme())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	input := textinput.New()
	input.Placeholder = "/path/to/room-photo.jpg"
	input.CharLimit = 512
	input.Width = 48

	return Model{
		styles:    styles,
		spinner:   sp,
		state:     StateWelcome,
		cfg:       cfg,
		capture:   capture.NewController(camera, cfg.MaxDimension, cfg.JPEGQuality),
		compare:   compare.NewController(),
		selection: category.NewSelection(),
		box:       mailbox.New(),
		generator: generator,
		gallery:   gal,
		notifier:  notifier,
		pathInput: input,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.capture.Close()
			return m, tea.Quit
		}
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcomeState(msg)
	case StateCapture:
		return m.updateCaptureState(msg)
	case StateCategories:
		return m.updateCategoriesState(msg)
	case StateCompare:
		return m.updateCompareState(msg)
	case StateSaved:
		return m.updateSavedState(msg)
	case StateError:
		return m.updateErrorState(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case StateWelcome:
		return m.viewWelcome()
	case StateCapture:
		return m.viewCapture()
	case StateCategories:
		return m.viewCategories()
	case StateCompare:
		return m.viewCompare()
	case StateSaved:
		return m.viewSaved()
	case StateError:
		return m.viewError()
	default:
		return m.viewWelcome()
	}
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	timeout := m.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (m Model) startCamera() tea.Cmd {
	ctrl := m.capture
	return func() tea.Msg {
		return cameraStartedMsg{err: ctrl.StartCamera(context.Background())}
	}
}

func (m Model) captureFrame() tea.Cmd {
	ctrl := m.capture
	return func() tea.Msg {
		frame, err := ctrl.Capture(context.Background())
		return frameCapturedMsg{frame: frame, err: err}
	}
}

func (m Model) loadFile(path string) tea.Cmd {
	ctrl := m.capture
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return fileLoadedMsg{err: err}
		}
		frame, err := ctrl.LoadFile(data)
		return fileLoadedMsg{frame: frame, err: err}
	}
}

func (m Model) generatePair(seq uint64, room *photo.Encoded) tea.Cmd {
	gen := m.generator
	newCtx := m.requestContext
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		images, err := compare.GeneratePair(ctx, gen, room)
		return pairGeneratedMsg{seq: seq, images: images, err: err}
	}
}

func (m Model) regenerateSlot(seq uint64, room *photo.Encoded) tea.Cmd {
	gen := m.generator
	newCtx := m.requestContext
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		img, err := gen.Generate(ctx, room, nil)
		return slotRegeneratedMsg{seq: seq, image: img, err: err}
	}
}

// notifyReady fires a best-effort desktop notification when a pair lands.
func (m Model) notifyReady() tea.Cmd {
	notifier := m.notifier
	if notifier == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := notifier.Send("Designs ready", "Two new room designs are waiting"); err != nil {
			log.Debugf("desktop notification failed: %v", err)
		}
		return nil
	}
}

func (m Model) saveDesign(design *compare.Design) tea.Cmd {
	gal := m.gallery
	notifier := m.notifier
	return func() tea.Msg {
		path, err := gal.Save(design.Image, design.ID)
		if err != nil {
			return designSavedMsg{err: err}
		}

		history, histErr := gal.History()
		if histErr != nil {
			log.Warnf("gallery history unavailable: %v", histErr)
		}

		if notifier != nil {
			if _, err := notifier.Send("Design saved", path); err != nil {
				log.Debugf("desktop notification failed: %v", err)
			}
		}

		return designSavedMsg{path: path, history: history}
	}
}

// resetSession clears everything carried between screens and returns the
// studio to a fresh capture.
func (m Model) resetSession() (tea.Model, tea.Cmd) {
	m.box.Clear()
	m.selection = category.NewSelection()
	m.compare = compare.NewController()
	m.room = nil
	m.kept = 0
	m.catIndex = 0
	m.err = nil
	m.cameraErr = nil
	m.pickingFile = false
	m.savedDesign = nil
	m.savedPath = ""
	m.saveErr = nil
	m.state = StateCapture
	m.isLoading = true
	return m, tea.Batch(m.spinner.Tick, m.startCamera())
}
