// Package tui provides a Bubble Tea terminal user interface for manga-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	workStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// errCancelled is shown when the user aborts a running work.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDiscovering
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *slog.Logger
	logs      []LogEntry
	work      model.WorkRequest
	output    string
	err       error

	// Work context
	ctx    context.Context
	cancel context.CancelFunc
	events chan download.ProgressEvent

	manager *download.Manager

	// Download progress
	completedPages int64
	totalPages     int64
	receivedBytes  int64
	started        time.Time
	elapsed        time.Duration

	// Options
	reverse bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "one piece"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries a progress event from the running work.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// WorkDoneMsg is sent when the work finished, successfully or not.
	WorkDoneMsg struct {
		Output string
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateDiscovering {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				return m.start()
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.reverse = !m.reverse
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.listen())
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case WorkDoneMsg:
		if m.state != StateDiscovering && m.state != StateDownloading {
			break
		}
		m.refreshProgress()
		m.elapsed = time.Since(m.started)
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.output = msg.Output
		}

	case TickMsg:
		if m.manager != nil && (m.state == StateDiscovering || m.state == StateDownloading) {
			m.refreshProgress()
			if m.completedPages > 0 {
				m.state = StateDownloading
			}

			var percent float64
			if m.totalPages > 0 {
				percent = float64(m.completedPages) / float64(m.totalPages)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start validates the entered name and launches its processing.
func (m Model) start() (tea.Model, tea.Cmd) {
	work, err := model.NewWorkRequest(m.textInput.Value())
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}
	if err := config.ValidateSaveLocation(m.settings.SaveLocation); err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	events := make(chan download.ProgressEvent, 64)
	m.events = events
	m.work = work
	m.started = time.Now()
	m.state = StateDiscovering
	m.manager = download.NewManager(m.settings, func(event download.ProgressEvent) {
		// Drop events rather than stall downloads when the UI falls behind.
		select {
		case events <- event:
		default:
		}
	}, download.WithLogger(m.logger))

	return m, tea.Batch(m.processWork(), m.listen(), m.tickProgress(), m.spinner.Tick)
}

func (m *Model) reset() {
	m.cancel()
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.output = ""
	m.completedPages = 0
	m.totalPages = 0
	m.receivedBytes = 0
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) refreshProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.completedPages, m.totalPages = m.manager.GetProgress()
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listen waits for the next progress event of the current work.
func (m Model) listen() tea.Cmd {
	events, done := m.events, m.ctx.Done()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event := <-events:
			return ProgressMsg{Event: event}
		case <-done:
			return nil
		}
	}
}

// processWork runs the work in the background.
func (m Model) processWork() tea.Cmd {
	ctx, manager, work := m.ctx, m.manager, m.work
	order := model.OrderForward
	if m.reverse {
		order = model.OrderReverse
	}

	return func() tea.Msg {
		manager.Prepare()
		output, err := manager.ProcessWork(ctx, work, order)
		return WorkDoneMsg{Output: output, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Manga Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download a work into a single PDF"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateDiscovering:
		b.WriteString(m.viewDiscovering())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter work name:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Reverse page order (ctrl+r)\n", checkbox(m.reverse)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+t)\n", checkbox(m.verbose)))
	b.WriteString("\n")

	saveLocation := m.settings.SaveLocation
	if saveLocation == "" {
		saveLocation = "(not set, run manga-dl --save <dir>)"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Save location: %s", saveLocation)))
	b.WriteString("\n")

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewDiscovering() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Looking up %s...", m.work.DisplayName())))
	b.WriteString("\n")
	if m.totalPages > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d pages found so far", m.totalPages)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(workStyle.Render(fmt.Sprintf("  %s", m.work.DisplayName())))
	b.WriteString("\n\n")

	var percent float64
	if m.totalPages > 0 {
		percent = float64(m.completedPages) / float64(m.totalPages)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Pages: %d/%d | Downloaded: %.2f MB",
		m.completedPages,
		m.totalPages,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"Done!\n\n"+
			"Pages: %d\n"+
			"Size: %.2f MB\n"+
			"Time: %s\n"+
			"Saved to: %s",
		m.completedPages,
		float64(m.receivedBytes)/1024/1024,
		m.elapsed.Round(time.Second),
		m.output,
	))
	return box
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+r: reverse • ctrl+t: verbose • esc: quit"
	case StateDiscovering, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
