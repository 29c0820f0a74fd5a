package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
)

type editorMode int

const (
	editorModeBrowse        editorMode = iota
	editorModeField                    // editing one header field
	editorModeItem                     // line item form
	editorModeConfirmRemove            // y/n before removing a line item
	editorModeConfirmNew               // y/n before discarding the draft
)

// line item form field indices
const (
	itemFieldDescription = iota
	itemFieldQuantity
	itemFieldRate
	itemFieldCount
)

var itemFormFields = [itemFieldCount]domain.LineItemField{
	domain.LineItemDescription,
	domain.LineItemQuantity,
	domain.LineItemRate,
}

var fieldLabels = map[domain.DraftField]string{
	domain.FieldClientName:    "Client Name",
	domain.FieldClientEmail:   "Client Email",
	domain.FieldClientAddress: "Client Address",
	domain.FieldDate:          "Date",
	domain.FieldTax:           "Tax (%)",
	domain.FieldDiscount:      "Discount (%)",
	domain.FieldNotes:         "Notes",
	domain.FieldPaymentLink:   "Payment Link",
}

func isMultiline(f domain.DraftField) bool {
	return f == domain.FieldClientAddress || f == domain.FieldNotes
}

// EditorModel edits the active draft. The cursor walks the header fields
// first and then the line items.
type EditorModel struct {
	app       *app.App
	draft     *domain.InvoiceDraft
	cursor    int
	loading   bool
	err       error
	statusMsg string

	mode editorMode

	// Header field editing
	editField domain.DraftField
	input     textinput.Model
	area      textarea.Model

	// Line item form
	itemID     string
	itemFields []textinput.Model
	itemFocus  int
}

type draftLoadedMsg struct {
	draft *domain.InvoiceDraft
	err   error
}

// draftChangedMsg carries the draft after a mutation and a status line
type draftChangedMsg struct {
	draft  *domain.InvoiceDraft
	status string
	err    error
}

type draftCommittedMsg struct {
	saved    *domain.SavedInvoice
	generate bool
	err      error
}

// NewEditorModel creates the editor screen
func NewEditorModel(a *app.App) tea.Model {
	return &EditorModel{
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true while a form or confirmation is active
func (m *EditorModel) IsCapturingInput() bool {
	return m.mode != editorModeBrowse
}

func (m *EditorModel) Init() tea.Cmd {
	return m.loadDraft()
}

func (m *EditorModel) loadDraft() tea.Cmd {
	return func() tea.Msg {
		d, err := m.app.DraftService.Current(context.Background())
		return draftLoadedMsg{draft: d, err: err}
	}
}

func (m *EditorModel) rowCount() int {
	n := len(domain.DraftFields)
	if m.draft != nil {
		n += len(m.draft.LineItems)
	}
	return n
}

// selectedItem returns the line item under the cursor, if any
func (m *EditorModel) selectedItem() *domain.LineItem {
	i := m.cursor - len(domain.DraftFields)
	if m.draft == nil || i < 0 || i >= len(m.draft.LineItems) {
		return nil
	}
	return m.draft.LineItems[i]
}

func (m *EditorModel) clampCursor() {
	if m.cursor >= m.rowCount() {
		m.cursor = m.rowCount() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *EditorModel) openField(field domain.DraftField) tea.Cmd {
	m.editField = field
	m.mode = editorModeField
	value := m.draft.Get(field)

	if isMultiline(field) {
		ta := textarea.New()
		ta.SetWidth(50)
		ta.SetHeight(4)
		ta.CharLimit = 1000
		ta.ShowLineNumbers = false
		ta.SetValue(value)
		m.area = ta
		return m.area.Focus()
	}

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50
	switch field {
	case domain.FieldDate:
		ti.Placeholder = "2006-01-02"
		ti.CharLimit = 10
	case domain.FieldTax, domain.FieldDiscount:
		ti.Placeholder = "0"
		ti.CharLimit = 10
	case domain.FieldPaymentLink:
		ti.Placeholder = "https://"
	}
	ti.SetValue(value)
	m.input = ti
	return m.input.Focus()
}

func (m *EditorModel) openItem(item *domain.LineItem) tea.Cmd {
	m.itemID = item.ID
	m.mode = editorModeItem
	m.itemFields = make([]textinput.Model, itemFieldCount)

	m.itemFields[itemFieldDescription] = textinput.New()
	m.itemFields[itemFieldDescription].Placeholder = "Description of the work"
	m.itemFields[itemFieldDescription].CharLimit = 200
	m.itemFields[itemFieldDescription].Width = 50
	m.itemFields[itemFieldDescription].SetValue(item.Description)

	m.itemFields[itemFieldQuantity] = textinput.New()
	m.itemFields[itemFieldQuantity].Placeholder = "1"
	m.itemFields[itemFieldQuantity].CharLimit = 12
	m.itemFields[itemFieldQuantity].Width = 15
	m.itemFields[itemFieldQuantity].SetValue(item.Quantity.String())

	m.itemFields[itemFieldRate] = textinput.New()
	m.itemFields[itemFieldRate].Placeholder = "0.00"
	m.itemFields[itemFieldRate].CharLimit = 12
	m.itemFields[itemFieldRate].Width = 15
	m.itemFields[itemFieldRate].SetValue(item.Rate.String())

	m.itemFocus = itemFieldDescription
	return m.itemFields[m.itemFocus].Focus()
}

func (m *EditorModel) saveField() tea.Cmd {
	field := m.editField
	value := m.input.Value()
	if isMultiline(field) {
		value = m.area.Value()
	}
	return func() tea.Msg {
		d, err := m.app.DraftService.SetField(context.Background(), field, value)
		return draftChangedMsg{draft: d, status: fieldLabels[field] + " updated", err: err}
	}
}

func (m *EditorModel) saveItem() tea.Cmd {
	id := m.itemID
	values := make([]string, itemFieldCount)
	for i := range m.itemFields {
		values[i] = m.itemFields[i].Value()
	}
	return func() tea.Msg {
		ctx := context.Background()
		var d *domain.InvoiceDraft
		for i, field := range itemFormFields {
			var err error
			if d, err = m.app.DraftService.UpdateLineItem(ctx, id, field, values[i]); err != nil {
				return draftChangedMsg{err: err}
			}
		}
		return draftChangedMsg{draft: d, status: "Line item updated"}
	}
}

func (m *EditorModel) addItem() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := m.app.DraftService.AddLineItem(ctx); err != nil {
			return draftChangedMsg{err: err}
		}
		d, err := m.app.DraftService.Current(ctx)
		return draftChangedMsg{draft: d, status: "Line item added", err: err}
	}
}

func (m *EditorModel) removeItem(id string) tea.Cmd {
	return func() tea.Msg {
		d, err := m.app.DraftService.RemoveLineItem(context.Background(), id)
		return draftChangedMsg{draft: d, status: "Line item removed", err: err}
	}
}

func (m *EditorModel) newInvoice() tea.Cmd {
	return func() tea.Msg {
		d, err := m.app.DraftService.NewInvoice(context.Background())
		status := ""
		if d != nil {
			status = "Started " + d.InvoiceNumber
		}
		return draftChangedMsg{draft: d, status: status, err: err}
	}
}

func (m *EditorModel) commit(generate bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			saved *domain.SavedInvoice
			err   error
		)
		if generate {
			saved, err = m.app.DraftService.Generate(ctx)
		} else {
			saved, err = m.app.DraftService.Save(ctx)
		}
		return draftCommittedMsg{saved: saved, generate: generate, err: err}
	}
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.draft = msg.draft
			m.clampCursor()
		}
		return m, nil

	case draftChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = editorModeBrowse
		m.draft = msg.draft
		m.statusMsg = msg.status
		m.clampCursor()
		return m, nil

	case draftCommittedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if !msg.generate {
			m.statusMsg = fmt.Sprintf("Saved %s to history", msg.saved.InvoiceNumber)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Generated %s", msg.saved.InvoiceNumber)
		return m, tea.Batch(m.loadDraft(), func() tea.Msg { return SwitchScreenMsg{Screen: ScreenPreview} })
	}

	switch m.mode {
	case editorModeField:
		return m.updateField(msg)
	case editorModeItem:
		return m.updateItem(msg)
	case editorModeConfirmRemove, editorModeConfirmNew:
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.loadDraft()

	case tea.KeyMsg:
		if m.loading || m.draft == nil {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if item := m.selectedItem(); item != nil {
				return m, m.openItem(item)
			}
			return m, m.openField(domain.DraftFields[m.cursor])
		case key.Matches(msg, DefaultKeyMap.Add):
			m.cursor = m.rowCount() // lands on the new row after reload
			return m, m.addItem()
		case key.Matches(msg, DefaultKeyMap.Delete):
			if item := m.selectedItem(); item != nil {
				if len(m.draft.LineItems) <= 1 {
					m.err = fmt.Errorf("an invoice needs at least one line item")
					return m, nil
				}
				m.mode = editorModeConfirmRemove
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = editorModeConfirmNew
		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.commit(false)
		case key.Matches(msg, DefaultKeyMap.Generate):
			return m, m.commit(true)
		}
	}

	return m, nil
}

func (m *EditorModel) updateField(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.String() == "esc":
			m.mode = editorModeBrowse
			m.err = nil
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.saveField()
		case msg.String() == "enter" && !isMultiline(m.editField):
			return m, m.saveField()
		}
	}

	var cmd tea.Cmd
	if isMultiline(m.editField) {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *EditorModel) updateItem(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.mode = editorModeBrowse
			m.err = nil
			return m, nil

		case "tab", "down":
			m.itemFields[m.itemFocus].Blur()
			m.itemFocus = (m.itemFocus + 1) % itemFieldCount
			return m, m.itemFields[m.itemFocus].Focus()

		case "shift+tab", "up":
			m.itemFields[m.itemFocus].Blur()
			m.itemFocus = (m.itemFocus - 1 + itemFieldCount) % itemFieldCount
			return m, m.itemFields[m.itemFocus].Focus()

		case "enter":
			if m.itemFocus == itemFieldCount-1 {
				return m, m.saveItem()
			}
			m.itemFields[m.itemFocus].Blur()
			m.itemFocus++
			return m, m.itemFields[m.itemFocus].Focus()

		case "ctrl+s":
			return m, m.saveItem()
		}
	}

	var cmd tea.Cmd
	m.itemFields[m.itemFocus], cmd = m.itemFields[m.itemFocus].Update(msg)
	return m, cmd
}

func (m *EditorModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	mode := m.mode
	m.mode = editorModeBrowse
	if keyMsg.String() != "y" {
		// Any other key cancels
		return m, nil
	}
	if mode == editorModeConfirmNew {
		m.cursor = 0
		return m, m.newInvoice()
	}
	if item := m.selectedItem(); item != nil {
		return m, m.removeItem(item.ID)
	}
	return m, nil
}

func (m *EditorModel) View() string {
	if m.loading {
		return "Loading invoice..."
	}
	if m.draft == nil {
		return renderError(m.err)
	}

	switch m.mode {
	case editorModeField:
		return m.viewField()
	case editorModeItem:
		return m.viewItem()
	}

	var b strings.Builder

	status := "draft"
	if m.draft.Generated {
		status = "generated"
	}
	b.WriteString(titleStyle.Render("Invoice "+m.draft.InvoiceNumber) + "  " + subtitleStyle.Render(status) + "\n")
	if m.statusMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(successColor).Render("  "+m.statusMsg) + "\n")
	}
	b.WriteString("\n")

	for i, field := range domain.DraftFields {
		value := oneLine(m.draft.Get(field))
		if field == domain.FieldDate {
			value = m.draft.Date.Display()
		}
		if value == "" {
			value = subtitleStyle.Render("-")
		}
		line := fmt.Sprintf("%s %s", labelStyle.Render(fieldLabels[field]+":"), truncateStr(value, 50))
		b.WriteString(m.renderRow(line, i == m.cursor) + "\n")
	}

	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("    %-36s %8s %12s %12s", "Description", "Qty", "Rate", "Amount")) + "\n")
	for i, item := range m.draft.LineItems {
		desc := item.Description
		if desc == "" {
			desc = "—"
		}
		line := fmt.Sprintf("%-36s %8s %12s %12s",
			truncateStr(desc, 36),
			item.Quantity.String(),
			domain.FormatMoney(item.Rate.Decimal),
			domain.FormatMoney(item.Amount()),
		)
		b.WriteString(m.renderRow(line, len(domain.DraftFields)+i == m.cursor) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.totalLine("Subtotal", domain.FormatMoney(m.draft.Subtotal()), false))
	if m.draft.Tax.IsPositive() {
		b.WriteString(m.totalLine("Tax ("+domain.FormatPercent(m.draft.Tax.Decimal)+"%)", domain.FormatMoney(m.draft.TaxAmount()), false))
	}
	if m.draft.Discount.IsPositive() {
		b.WriteString(m.totalLine("Discount ("+domain.FormatPercent(m.draft.Discount.Decimal)+"%)", "-"+domain.FormatMoney(m.draft.DiscountAmount()), false))
	}
	b.WriteString(m.totalLine("Total", domain.FormatMoney(m.draft.Total()), true))
	b.WriteString("\n")

	switch m.mode {
	case editorModeConfirmRemove:
		b.WriteString(lipgloss.NewStyle().Foreground(warningColor).Render("  Remove this line item? (y/n)") + "\n")
	case editorModeConfirmNew:
		b.WriteString(lipgloss.NewStyle().Foreground(warningColor).Render(
			fmt.Sprintf("  Discard %s and start a new invoice? (y/n)", m.draft.InvoiceNumber)) + "\n")
	default:
		b.WriteString(renderError(m.err))
		b.WriteString(helpStyle.Render("  j/k: navigate  enter: edit  a: add item  d: remove item  n: new invoice  ctrl+s: save  g: generate"))
	}

	return b.String()
}

func (m *EditorModel) renderRow(line string, selected bool) string {
	if selected {
		return "  " + selectedStyle.Render(line)
	}
	return "  " + line
}

func (m *EditorModel) totalLine(label, value string, emphasis bool) string {
	line := padLeft(label, 58) + " " + padLeft(value, 12)
	if emphasis {
		line = lipgloss.NewStyle().Bold(true).Render(line)
	}
	return "  " + line + "\n"
}

func (m *EditorModel) viewField() string {
	var s string
	s += titleStyle.Render("Edit "+fieldLabels[m.editField]) + "\n\n"
	if isMultiline(m.editField) {
		s += m.area.View() + "\n\n"
	} else {
		s += "  " + m.input.View() + "\n\n"
	}
	s += renderError(m.err)
	if isMultiline(m.editField) {
		s += helpStyle.Render("  ctrl+s: save  esc: cancel")
	} else {
		s += helpStyle.Render("  enter: save  esc: cancel")
	}
	return s
}

func (m *EditorModel) viewItem() string {
	var s string
	s += titleStyle.Render("Edit Line Item") + "\n\n"

	labels := []string{"Description:", "Quantity:", "Rate:"}
	for i, label := range labels {
		indicator := "  "
		style := subtitleStyle
		if i == m.itemFocus {
			indicator = "> "
			style = focusStyle
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, style.Render(label), m.itemFields[i].View())
	}

	s += renderError(m.err)
	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}
