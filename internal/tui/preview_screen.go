package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/render"
)

var errNotGenerated = errors.New("generate the invoice first (g in the editor)")

const (
	maxPaperWidth = 96
	minPaperWidth = 48
)

// PreviewModel shows the rendered document and runs exports
type PreviewModel struct {
	app       *app.App
	page      *render.Page
	generated bool
	viewport  viewport.Model
	ready     bool
	loading   bool
	err       error
}

type previewDataMsg struct {
	page      *render.Page
	generated bool
	err       error
}

// NewPreviewModel creates the preview screen
func NewPreviewModel(a *app.App) tea.Model {
	return &PreviewModel{
		app:     a,
		loading: true,
	}
}

func (m *PreviewModel) Init() tea.Cmd {
	return m.loadPage()
}

func (m *PreviewModel) loadPage() tea.Cmd {
	return func() tea.Msg {
		d, err := m.app.DraftService.Current(context.Background())
		if err != nil {
			return previewDataMsg{err: err}
		}
		return previewDataMsg{page: m.app.RenderDraft(d), generated: d.Generated}
	}
}

func (m *PreviewModel) startExport(format export.Format) tea.Cmd {
	ch := m.app.Exporter.Start(context.Background(), format, m.page)
	return func() tea.Msg {
		res := <-ch
		return exportDoneMsg{results: []export.Result{res}, err: res.Err}
	}
}

func (m *PreviewModel) startExportAll() tea.Cmd {
	page := m.page
	return func() tea.Msg {
		results, err := m.app.Exporter.ExportAll(context.Background(), page)
		return exportDoneMsg{results: results, err: err}
	}
}

func (m *PreviewModel) paperWidth() int {
	w := m.viewport.Width - 2
	if w > maxPaperWidth {
		w = maxPaperWidth
	}
	if w < minPaperWidth {
		w = minPaperWidth
	}
	return w
}

func (m *PreviewModel) refreshContent() {
	if !m.ready || m.page == nil {
		return
	}
	m.viewport.SetContent(renderPageText(m.page, m.paperWidth()))
}

func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// frame, header, footer and the status lines take the rest
		w, h := msg.Width-10, msg.Height-16
		if h < 5 {
			h = 5
		}
		if !m.ready {
			m.viewport = viewport.New(w, h)
			m.ready = true
		} else {
			m.viewport.Width, m.viewport.Height = w, h
		}
		m.refreshContent()
		return m, nil

	case RefreshDataMsg:
		return m, m.loadPage()

	case previewDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.page = msg.page
			m.generated = msg.generated
			m.refreshContent()
		}
		return m, nil

	case exportDoneMsg:
		// outcomes are shown from the status board
		m.err = nil
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		var format export.Format
		switch {
		case key.Matches(msg, DefaultKeyMap.ExportPDF):
			format = export.FormatPDF
		case key.Matches(msg, DefaultKeyMap.ExportImage):
			format = export.FormatPNG
		case key.Matches(msg, DefaultKeyMap.ExportHTML):
			format = export.FormatHTML
		case key.Matches(msg, DefaultKeyMap.ExportAll):
			if !m.generated {
				m.err = errNotGenerated
				return m, nil
			}
			return m, m.startExportAll()
		}
		if format != "" {
			if !m.generated {
				m.err = errNotGenerated
				return m, nil
			}
			return m, m.startExport(format)
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *PreviewModel) View() string {
	if m.loading || !m.ready {
		return "Rendering invoice..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View() + "\n")
	if pct := m.viewport.ScrollPercent(); m.viewport.TotalLineCount() > m.viewport.Height {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %3.0f%%", pct*100)) + "\n")
	}

	b.WriteString(m.statusLines())
	b.WriteString(renderError(m.err))

	if m.generated {
		b.WriteString(helpStyle.Render("  j/k: scroll  p: export PDF  i: export image  h: export HTML  x: export all"))
	} else {
		b.WriteString(helpStyle.Render("  j/k: scroll  draft preview, generate the invoice in the editor to export"))
	}
	return b.String()
}

func (m *PreviewModel) statusLines() string {
	var b strings.Builder
	for _, s := range m.app.Exporter.Status().All() {
		switch s.State {
		case export.StateLoading:
			b.WriteString(statusLoading.Render("  ⋯ "+s.Message) + "\n")
		case export.StateSuccess:
			b.WriteString(statusSuccess.Render("  ✓ "+s.Message) + subtitleStyle.Render("  "+s.Path) + "\n")
		case export.StateError:
			b.WriteString(statusError.Render("  ✗ "+s.Message) + "\n")
		}
	}
	if b.Len() > 0 {
		return b.String() + "\n"
	}
	return ""
}

// renderPageText lays the page out as styled terminal text within width columns
func renderPageText(p *render.Page, width int) string {
	inner := width - paperStyle.GetHorizontalFrameSize()
	if inner < 20 {
		inner = 20
	}

	var sections []string
	for _, block := range p.Blocks {
		var s string
		switch block.Kind {
		case render.BlockHeader:
			s = renderHeaderText(block, inner)
		case render.BlockItems:
			s = renderTableText(block.Table, inner)
		case render.BlockTotals:
			s = renderTotalsText(block.Pairs, inner)
		case render.BlockFooter:
			s = lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Foreground(mutedColor).
				Render(strings.Join(block.Lines, "\n"))
		default:
			s = renderTextBlock(block, inner)
		}
		sections = append(sections, s)
	}

	return paperStyle.Width(width - paperStyle.GetHorizontalBorderSize()).Render(strings.Join(sections, "\n\n"))
}

func renderHeaderText(block render.Block, width int) string {
	var left []string
	for i, line := range block.Lines {
		if i == 0 {
			left = append(left, docTitleStyle.Render(line))
			continue
		}
		left = append(left, subtitleStyle.Render(line))
	}

	var right []string
	for i, line := range block.Aside {
		switch i {
		case 0:
			right = append(right, docTitleStyle.Render(line))
		case 2:
			right = append(right, docHeadStyle.Render(line))
		default:
			right = append(right, subtitleStyle.Render(line))
		}
	}

	leftBlock := lipgloss.NewStyle().Width(width / 2).Render(strings.Join(left, "\n"))
	rightBlock := lipgloss.NewStyle().Width(width - width/2).Align(lipgloss.Right).Render(strings.Join(right, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBlock, rightBlock)
}

func renderTextBlock(block render.Block, width int) string {
	var parts []string
	if block.Title != "" {
		parts = append(parts, docHeadStyle.Render(block.Title))
	}
	for _, line := range block.Lines {
		if block.Link != "" && strings.HasSuffix(line, block.Link) {
			label := strings.TrimSuffix(line, block.Link)
			parts = append(parts, label+docLinkStyle.Render(block.Link))
			continue
		}
		parts = append(parts, lipgloss.NewStyle().Width(width).Render(line))
	}
	return strings.Join(parts, "\n")
}

func renderTableText(t *render.Table, width int) string {
	if t == nil {
		return ""
	}
	widths := make([]int, len(t.Columns))
	used := 0
	for i, col := range t.Columns {
		widths[i] = int(col.Width * float64(width))
		used += widths[i]
	}
	if len(widths) > 0 {
		widths[0] += width - used
	}

	cell := func(text string, i int) string {
		w := widths[i] - 1
		text = truncateStr(text, w)
		if t.Columns[i].Align == render.AlignRight {
			return padLeft(text, w) + " "
		}
		return padRight(text, w) + " "
	}

	var b strings.Builder
	var head strings.Builder
	for i, col := range t.Columns {
		head.WriteString(cell(col.Title, i))
	}
	b.WriteString(docHeadStyle.Render(head.String()) + "\n")
	b.WriteString(subtitleStyle.Render(strings.Repeat("─", width)) + "\n")
	for r, row := range t.Rows {
		var line strings.Builder
		for i := range t.Columns {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			line.WriteString(cell(text, i))
		}
		b.WriteString(line.String())
		if r < len(t.Rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderTotalsText(pairs []render.Pair, width int) string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		line := padLeft(pair.Label, 20) + padLeft(pair.Value, 16)
		if pair.Emphasis {
			line = docTotalStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(strings.Join(lines, "\n"))
}
