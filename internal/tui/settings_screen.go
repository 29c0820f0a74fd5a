package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldIssuerName = iota
	settingsFieldIssuerEmail
	settingsFieldIssuerAddress
	settingsFieldPaymentNote
	settingsFieldOutputDir
	settingsFieldPrefix
	settingsFieldTax
	settingsFieldDiscount
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"Your Name / Company:",
	"Your Email:",
	"Your Address (; separates lines):",
	"Payment Note:",
	"Export Directory:",
	"Invoice Number Prefix:",
	"Default Tax (%):",
	"Default Discount (%):",
}

// addressSep joins address lines in the single-line input
const addressSep = "; "

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func newSettingsInput(placeholder string, limit, width int, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	ti.SetValue(value)
	return ti
}

func (m *SettingsModel) initForm() {
	cfg := m.app.Config
	m.fields = make([]textinput.Model, settingsFieldCount)

	m.fields[settingsFieldIssuerName] = newSettingsInput("Acme Studio", 100, 50, cfg.Issuer.Name)
	m.fields[settingsFieldIssuerEmail] = newSettingsInput("billing@example.com", 100, 50, cfg.Issuer.Email)
	m.fields[settingsFieldIssuerAddress] = newSettingsInput("1 Main St; Springfield", 300, 60,
		strings.ReplaceAll(cfg.Issuer.Address, "\n", addressSep))
	m.fields[settingsFieldPaymentNote] = newSettingsInput("Shown under the payment link", 300, 60, cfg.Issuer.PaymentNote)
	m.fields[settingsFieldOutputDir] = newSettingsInput("/path/to/invoices", 256, 60, cfg.Export.OutputDir)
	m.fields[settingsFieldPrefix] = newSettingsInput("INV-", 20, 20, cfg.Invoice.NumberPrefix)
	m.fields[settingsFieldTax] = newSettingsInput("0", 10, 10, strconv.FormatFloat(cfg.Invoice.DefaultTax, 'f', -1, 64))
	m.fields[settingsFieldDiscount] = newSettingsInput("0", 10, 10, strconv.FormatFloat(cfg.Invoice.DefaultDiscount, 'f', -1, 64))

	m.fieldFocus = settingsFieldIssuerName
	m.fields[settingsFieldIssuerName].Focus()
}

func splitAddress(s string) string {
	var lines []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, part)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	values := make([]string, settingsFieldCount)
	for i := range m.fields {
		values[i] = strings.TrimSpace(m.fields[i].Value())
	}

	return func() tea.Msg {
		if values[settingsFieldOutputDir] == "" {
			return settingsSavedMsg{err: fmt.Errorf("export directory is required")}
		}

		tax, err := strconv.ParseFloat(values[settingsFieldTax], 64)
		if err != nil {
			return settingsSavedMsg{err: fmt.Errorf("default tax must be a number")}
		}
		discount, err := strconv.ParseFloat(values[settingsFieldDiscount], 64)
		if err != nil {
			return settingsSavedMsg{err: fmt.Errorf("default discount must be a number")}
		}

		cfg := m.app.Config
		previous := *cfg

		cfg.Issuer.Name = values[settingsFieldIssuerName]
		cfg.Issuer.Email = values[settingsFieldIssuerEmail]
		cfg.Issuer.Address = splitAddress(values[settingsFieldIssuerAddress])
		cfg.Issuer.PaymentNote = values[settingsFieldPaymentNote]
		cfg.Export.OutputDir = values[settingsFieldOutputDir]
		cfg.Invoice.NumberPrefix = values[settingsFieldPrefix]
		cfg.Invoice.DefaultTax = tax
		cfg.Invoice.DefaultDiscount = discount

		if err := m.app.SaveConfig(); err != nil {
			*cfg = previous
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}
		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config
	label := lipgloss.NewStyle().Bold(true).Width(24)
	value := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(name, v string) string {
		if v == "" {
			v = "-"
		}
		return fmt.Sprintf("  %s %s\n", label.Render(name), value.Render(v))
	}

	s += subtitleStyle.Render("  Issuer") + "\n\n"
	s += row("Name:", cfg.Issuer.Name)
	s += row("Email:", cfg.Issuer.Email)
	s += row("Address:", oneLine(strings.ReplaceAll(cfg.Issuer.Address, "\n", addressSep)))
	s += row("Payment Note:", truncateStr(cfg.Issuer.PaymentNote, 60))

	s += "\n" + subtitleStyle.Render("  Invoices") + "\n\n"
	s += row("Export Directory:", cfg.Export.OutputDir)
	s += row("Number Prefix:", cfg.Invoice.NumberPrefix)
	s += row("Default Tax:", strconv.FormatFloat(cfg.Invoice.DefaultTax, 'f', -1, 64)+"%")
	s += row("Default Discount:", strconv.FormatFloat(cfg.Invoice.DefaultDiscount, 'f', -1, 64)+"%")

	s += "\n" + subtitleStyle.Render("  Prefix and defaults apply to invoices started after the next launch.") + "\n"
	s += "\n" + helpStyle.Render("  enter: edit settings")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	for i, label := range settingsLabels {
		indicator := "  "
		style := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			style = focusStyle
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, style.Render(label), m.fields[i].View())
	}

	s += renderError(m.err)
	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
