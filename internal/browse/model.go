// Package browse provides the Bubble Tea report browser.
package browse

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"

	"github.com/verte-zerg/complaintstat/internal/model"
	"github.com/verte-zerg/complaintstat/internal/stats"
)

const (
	tabReport = iota
	tabTrends
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea report browser.
type Model struct {
	source string
	all    []model.ReportRow
	rows   []model.ReportRow
	query  string

	tabs      []string
	activeTab int
	table     table.Model
	trends    viewport.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
}

// NewModel constructs a browser over finished report rows.
func NewModel(rows []model.ReportRow, source string) *Model {
	m := &Model{
		source: source,
		all:    rows,
		rows:   rows,
		tabs:   []string{"Report", "Trends"},
		trends: viewport.New(0, 0),
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Product: "
	m.filterInput.Placeholder = "substring"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	m.table = table.New(
		table.WithColumns(reportColumns(80)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.table.SetStyles(reportTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.query)
			return m, m.filterInput.Focus()
		case "esc":
			if m.query != "" {
				m.query = ""
				m.refresh()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabReport {
				m.table.GotoTop()
			} else {
				m.trends.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabReport {
				m.table.GotoBottom()
			} else {
				m.trends.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabReport {
			m.table, cmd = m.table.Update(msg)
		} else {
			m.trends, cmd = m.trends.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Rows returns the rows currently shown after filtering.
func (m *Model) Rows() []model.ReportRow {
	return m.rows
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.query = strings.TrimSpace(m.filterInput.Value())
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabReport {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.trends.Width = m.width
	m.trends.Height = bodyHeight
	m.table.SetColumns(reportColumns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-1))
	m.filterInput.Width = max(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func (m *Model) refresh() {
	m.rows = filterRows(m.all, m.query)
	m.table.SetRows(tableRows(m.rows))
	m.table.GotoTop()

	width := m.width
	if width <= 0 {
		width = 80
	}
	m.trends.SetContent(renderTrends(m.rows, width))
	m.trends.GotoTop()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderSummary(), m.width)
}

func (m *Model) renderSummary() string {
	s := stats.Summarize(m.rows)
	filter := "none"
	if m.query != "" {
		filter = strconv.Quote(m.query)
	}
	line := fmt.Sprintf("Source: %s  complaints=%d  products=%d  groups=%d  filter=%s",
		m.source, s.Complaints, s.Products, s.Groups, filter)
	return headerStyle.Render(truncateLine(line, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Clear: esc  Quit: q")
}

func (m *Model) renderBody() string {
	if len(m.rows) == 0 {
		return "No complaints found."
	}
	if m.activeTab == tabReport {
		return tableMutedStyle.Render(m.table.View())
	}
	return m.trends.View()
}

func renderTrends(rows []model.ReportRow, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderTrends(&buf, stats.ProductTrends(rows), width); err != nil {
		return fmt.Sprintf("Failed to render trends: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func reportColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Product", Width: 0},
		{Title: "Year", Width: 6},
		{Title: "Complaints", Width: 11},
		{Title: "Companies", Width: 10},
		{Title: "Max Share", Width: 10},
	}
	fixed := 0
	for _, c := range cols[1:] {
		fixed += c.Width + 1
	}
	cols[0].Width = max(12, width-fixed-2)
	return cols
}

func tableRows(rows []model.ReportRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.Product,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Complaints),
			strconv.Itoa(r.Companies),
			fmt.Sprintf("%d%%", r.MaxSharePct),
		})
	}
	return out
}

func reportTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// filterRows keeps rows whose product contains query after case folding.
func filterRows(rows []model.ReportRow, query string) []model.ReportRow {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]model.ReportRow, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(fold.String(r.Product), needle) {
			out = append(out, r)
		}
	}
	return out
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
