package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/export"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenEditor Screen = iota
	ScreenPreview
	ScreenHistory
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenEditor:
		return "Editor"
	case ScreenPreview:
		return "Preview"
	case ScreenHistory:
		return "Saved Invoices"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	editor   tea.Model
	preview  tea.Model
	history  tea.Model
	settings tea.Model

	// Error state
	err     error
	quitMsg string // shown when quit is blocked
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenEditor,
		editor:        NewEditorModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.editor.Init()
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }
	switch screen {
	case ScreenEditor:
		if m.editor == nil {
			m.editor = NewEditorModel(m.app)
			return m.editor.Init()
		}
		return refresh
	case ScreenPreview:
		if m.preview == nil {
			m.preview = NewPreviewModel(m.app)
			return tea.Batch(m.preview.Init(), m.sizeCmd())
		}
		return refresh
	case ScreenHistory:
		if m.history == nil {
			m.history = NewHistoryModel(m.app)
			return m.history.Init()
		}
		return refresh
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.app)
			return m.settings.Init()
		}
		return refresh
	}
	return nil
}

// sizeCmd replays the last window size to a freshly created screen
func (m *Model) sizeCmd() tea.Cmd {
	if m.width == 0 {
		return nil
	}
	w, h := m.width, m.height
	return func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (E, V, S, comma, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) activeScreen() tea.Model {
	switch m.currentScreen {
	case ScreenEditor:
		return m.editor
	case ScreenPreview:
		return m.preview
	case ScreenHistory:
		return m.history
	case ScreenSettings:
		return m.settings
	}
	return nil
}

func (m *Model) setActiveScreen(screen tea.Model) {
	switch m.currentScreen {
	case ScreenEditor:
		m.editor = screen
	case ScreenPreview:
		m.preview = screen
	case ScreenHistory:
		m.history = screen
	case ScreenSettings:
		m.settings = screen
	}
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.activeScreen().(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// exportRunning reports whether any export is still in progress
func (m *Model) exportRunning() bool {
	for _, s := range m.app.Exporter.Status().All() {
		if s.State == export.StateLoading {
			return true
		}
	}
	return false
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	m.err = nil
	return m.initScreen(screen)
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// the preview viewport tracks the terminal size even when hidden
		if m.preview != nil {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		// Clear quit warning on any keypress
		m.quitMsg = ""

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				if m.exportRunning() {
					m.quitMsg = "Export in progress. Wait for it to finish before quitting."
					return m, nil
				}
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Editor):
				return m, m.switchTo(ScreenEditor)

			case key.Matches(msg, DefaultKeyMap.Preview):
				return m, m.switchTo(ScreenPreview)

			case key.Matches(msg, DefaultKeyMap.History):
				return m, m.switchTo(ScreenHistory)

			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case exportDoneMsg:
		// results can arrive after the user left the preview
		if m.preview != nil {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Route message to current screen
	screen := m.activeScreen()
	if screen == nil {
		return m, nil
	}
	screen, cmd := screen.Update(msg)
	m.setActiveScreen(screen)
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("invoicer - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[E]ditor  [V]iew  [S]aved  [,] Settings  [Q]uit")

	content := "Loading..."
	if screen := m.activeScreen(); screen != nil {
		content = screen.View()
	}

	// Error/warning display
	errorDisplay := ""
	if m.quitMsg != "" {
		errorDisplay = lipgloss.NewStyle().
			Foreground(warningColor).
			Render(fmt.Sprintf("\n%s", m.quitMsg))
	} else if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
