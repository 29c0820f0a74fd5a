package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
)

type historyMode int

const (
	historyModeList          historyMode = iota
	historyModeConfirmDelete             // y/n confirmation before delete
)

// HistoryModel lists saved invoices
type HistoryModel struct {
	app        *app.App
	mode       historyMode
	invoices   []*domain.SavedInvoice
	cursor     int
	offset     int
	maxVisible int
	loading    bool
	err        error
	statusMsg  string
}

type historyDataMsg struct {
	invoices []*domain.SavedInvoice
	err      error
}

type historyDeletedMsg struct {
	number string
	err    error
}

type historyLoadedMsg struct {
	err error
}

// IsCapturingInput returns true while the delete confirmation is shown
func (m *HistoryModel) IsCapturingInput() bool {
	return m.mode == historyModeConfirmDelete
}

// NewHistoryModel creates the saved invoices screen
func NewHistoryModel(a *app.App) tea.Model {
	return &HistoryModel{
		app:        a,
		maxVisible: 15,
		loading:    true,
	}
}

func (m *HistoryModel) Init() tea.Cmd {
	return m.loadHistory()
}

func (m *HistoryModel) loadHistory() tea.Cmd {
	return func() tea.Msg {
		list, err := m.app.HistoryService.List(context.Background())
		return historyDataMsg{invoices: list, err: err}
	}
}

func (m *HistoryModel) deleteInvoice(inv *domain.SavedInvoice) tea.Cmd {
	return func() tea.Msg {
		err := m.app.HistoryService.Delete(context.Background(), inv.ID)
		return historyDeletedMsg{number: inv.InvoiceNumber, err: err}
	}
}

func (m *HistoryModel) loadIntoEditor(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.DraftService.LoadFromHistory(context.Background(), id)
		return historyLoadedMsg{err: err}
	}
}

func (m *HistoryModel) startNew() tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.DraftService.NewInvoice(context.Background())
		return historyLoadedMsg{err: err}
	}
}

func (m *HistoryModel) selected() *domain.SavedInvoice {
	if m.cursor < 0 || m.cursor >= len(m.invoices) {
		return nil
	}
	return m.invoices[m.cursor]
}

func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == historyModeConfirmDelete {
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadHistory()

	case historyDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			if m.cursor >= len(m.invoices) {
				m.cursor = len(m.invoices) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
			if m.offset > m.cursor {
				m.offset = m.cursor
			}
		}
		return m, nil

	case historyDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Deleted " + msg.number
		return m, m.loadHistory()

	case historyLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenEditor} }

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.invoices)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxVisible {
					m.offset = m.cursor - m.maxVisible + 1
				}
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if inv := m.selected(); inv != nil {
				return m, m.loadIntoEditor(inv.ID)
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.startNew()
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = historyModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *HistoryModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.mode = historyModeList
		if msg.String() == "y" {
			if inv := m.selected(); inv != nil {
				return m, m.deleteInvoice(inv)
			}
		}
		// Any other key cancels
		return m, nil
	}
	return m, nil
}

func (m *HistoryModel) View() string {
	if m.loading {
		return "Loading saved invoices..."
	}

	var s string
	s += titleStyle.Render("Saved Invoices") + "\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).Render("  "+m.statusMsg) + "\n"
	}

	if len(m.invoices) == 0 {
		s += "\n" + subtitleStyle.Render("  No saved invoices yet. Save or generate one in the editor.") + "\n\n"
		s += renderError(m.err)
		s += helpStyle.Render("  n: new invoice")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %d saved", len(m.invoices))) + "\n\n"
	s += subtitleStyle.Render(fmt.Sprintf("  %-12s  %-24s  %-12s  %12s  %s", "Number", "Client", "Date", "Total", "Saved")) + "\n"

	end := m.offset + m.maxVisible
	if end > len(m.invoices) {
		end = len(m.invoices)
	}
	for i := m.offset; i < end; i++ {
		s += m.renderInvoice(m.invoices[i], i == m.cursor) + "\n"
	}

	if m.offset > 0 {
		s += subtitleStyle.Render("  ... more above") + "\n"
	}
	if end < len(m.invoices) {
		s += subtitleStyle.Render("  ... more below") + "\n"
	}
	s += "\n"

	if m.mode == historyModeConfirmDelete {
		inv := m.selected()
		s += lipgloss.NewStyle().Foreground(warningColor).Render(
			fmt.Sprintf("  Delete %s for %s? (y/n)", inv.InvoiceNumber, inv.ClientName)) + "\n"
		return s
	}

	s += renderError(m.err)
	s += helpStyle.Render("  j/k: navigate  enter: load into editor  d: delete  n: new invoice")
	return s
}

func (m *HistoryModel) renderInvoice(inv *domain.SavedInvoice, selected bool) string {
	saved := ""
	if inv.SavedAt != nil {
		saved = humanize.Time(*inv.SavedAt)
	}
	line := fmt.Sprintf("%-12s  %-24s  %-12s  %12s  %s",
		truncateStr(inv.InvoiceNumber, 12),
		truncateStr(strings.TrimSpace(inv.ClientName), 24),
		inv.Date.String(),
		domain.FormatMoney(inv.Total.Decimal),
		saved,
	)
	if selected {
		return "  " + selectedStyle.Render(line)
	}
	return "  " + line
}
