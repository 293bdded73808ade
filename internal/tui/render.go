package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

// maxColumnWidth truncates long cells such as descriptions and tag lists.
const maxColumnWidth = 28

var (
	headerBarStyle   = lipgloss.NewStyle().Foreground(colorText).Background(colorMantle).Padding(0, 2)
	headerAppStyle   = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	activeTabStyle   = lipgloss.NewStyle().Foreground(colorPink).Background(colorSurface0).Bold(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Background(colorMantle).Padding(0, 1)
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorSubtext0).Bold(true)
	cursorStyle      = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(colorOverlay1)
	filterOnStyle    = lipgloss.NewStyle().Foreground(colorTeal).Bold(true)
	suggestStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	statusStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle       = lipgloss.NewStyle().Foreground(colorRed)
	footerStyle      = lipgloss.NewStyle().Foreground(colorSubtext0).Background(colorMantle).Padding(0, 2)
	helpKeyStyle     = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	modalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorLavender).Padding(0, 1)
	columnStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1).Width(24)
)

func (m Model) View() string {
	f := m.view().Frame()

	var body string
	switch {
	case f.FormOpen:
		body = m.renderForm(f)
	case f.DetailOpen:
		body = m.renderDetail(f)
	case m.board:
		body = m.renderBoard()
	default:
		body = m.renderList(f)
	}

	parts := []string{m.renderHeader(), m.renderSearch(f), body}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, statusStyle.Render(m.status))
		}
	}
	parts = append(parts, m.renderFooter())
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(m.views))
	for i, v := range m.views {
		title := schema.Titles[v.Name()]
		if title == "" {
			title = v.Name()
		}
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	line := headerAppStyle.Render("Фокус") + "  " + strings.Join(tabs, "│")
	if m.width > 0 {
		return headerBarStyle.Width(m.width).Render(line)
	}
	return headerBarStyle.Render(line)
}

func (m Model) renderSearch(f listing.Frame) string {
	search := "Поиск: " + f.Query
	if m.searching {
		search += "▏"
	}
	filters := make([]string, 0, len(f.Filters))
	for _, name := range m.view().FilterNames() {
		val := f.Filters[name]
		if listing.IsActive(val) {
			filters = append(filters, filterOnStyle.Render(name+": "+val))
		} else {
			filters = append(filters, mutedStyle.Render(name+": "+val))
		}
	}
	return search + "   " + strings.Join(filters, "  ")
}

func (m Model) renderList(f listing.Frame) string {
	if f.Count == 0 {
		out := mutedStyle.Render("Ничего не найдено")
		if f.Suggestion != "" {
			out += "\n" + suggestStyle.Render("Возможно, вы искали: "+f.Suggestion)
		}
		return out
	}

	widths := columnWidths(f.Headers, f.Rows)
	var b strings.Builder
	b.WriteString("  " + tableHeaderStyle.Render(formatRow(f.Headers, widths)) + "\n")

	end := len(f.Rows)
	if rows := m.visibleRows(); rows > 0 && m.top+rows < end {
		end = m.top + rows
	}
	for i := m.top; i < end; i++ {
		line := formatRow(f.Rows[i], widths)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Показано %d из %d", f.Count, f.Total)))
	return b.String()
}

func (m Model) renderDetail(f listing.Frame) string {
	width := 0
	for _, c := range f.Detail {
		width = max(width, lipgloss.Width(c.Header))
	}
	lines := make([]string, 0, len(f.Detail))
	for _, c := range f.Detail {
		lines = append(lines, tableHeaderStyle.Render(padRight(c.Header, width))+"  "+c.Value)
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

// renderForm draws the create form scaffold: one empty field per column.
func (m Model) renderForm(f listing.Frame) string {
	lines := []string{headerAppStyle.Render("Новая запись: " + schema.Titles[f.Collection]), ""}
	for _, h := range f.Headers {
		lines = append(lines, tableHeaderStyle.Render(padRight(h, 22))+"  "+mutedStyle.Render("________"))
	}
	lines = append(lines, "", mutedStyle.Render("esc закрыть"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderBoard() string {
	v := m.view()
	q := listing.Query{Text: v.Query(), Filters: v.Frame().Filters}
	res, err := m.store.Board(v.Name(), "status", q)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	groups, ok := res.([]listing.Group[schema.Task])
	if !ok {
		return errorStyle.Render("Доска недоступна")
	}

	cols := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := []string{headerAppStyle.Render(fmt.Sprintf("%s (%d)", schema.TaskStatusLabel(g.Key), len(g.Records)))}
		for _, t := range g.Records {
			lines = append(lines, "", truncate(t.Title, 22), mutedStyle.Render(schema.PriorityLabel(t.Priority)+" · "+t.Assignee))
		}
		cols = append(cols, columnStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, 10)
	for _, b := range m.keys.help() {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+h.Desc)
	}
	line := strings.Join(parts, "  ")
	if m.width > 0 {
		return footerStyle.Width(m.width).Render(line)
	}
	return footerStyle.Render(line)
}

// visibleRows is the number of table rows that fit the window, or 0 when the
// size is not known yet.
func (m Model) visibleRows() int {
	if m.height == 0 {
		return 0
	}
	// header, search, table header, count, status, footer
	return max(m.height-6, 1)
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	out := make([]string, 0, len(cells))
	for i, c := range cells {
		if i >= len(widths) {
			break
		}
		out = append(out, padRight(truncate(c, widths[i]), widths[i]))
	}
	return strings.Join(out, "  ")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
