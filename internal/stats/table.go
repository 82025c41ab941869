package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/complaintstat/internal/model"
)

const (
	terminalWidthBackup = 80
	minProductWidth     = 12
	ellipsis            = "..."
)

var reportHeaders = []string{"Product", "Year", "Complaints", "Companies", "Max Share"}

// RenderTable prints report rows as an aligned table. When maxWidth is
// positive the product column is truncated so lines fit within it.
func RenderTable(w io.Writer, rows []model.ReportRow, maxWidth int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No complaints found.")
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Product,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Complaints),
			strconv.Itoa(r.Companies),
			fmt.Sprintf("%d%%", r.MaxSharePct),
		})
	}
	if maxWidth > 0 {
		truncateColumn(tableRows, 0, productBudget(reportHeaders, tableRows, maxWidth))
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(reportHeaders, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRuns prints saved runs, newest first as given.
func RenderRuns(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No saved runs.")
		return err
	}
	headers := []string{"ID", "Created", "Source", "Rows", "Accepted", "Rejected", "Groups"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Accepted),
			strconv.Itoa(r.Rejected),
			strconv.Itoa(r.Groups),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TerminalWidth returns the width of w when it is a terminal, or 0.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// productBudget returns how wide column 0 may be so a row fits maxWidth.
func productBudget(headers []string, rows [][]string, maxWidth int) int {
	widths := columnWidths(headers, rows)
	rest := 0
	for i := 1; i < len(widths); i++ {
		rest += widths[i] + 1
	}
	budget := maxWidth - rest
	if budget < minProductWidth {
		budget = minProductWidth
	}
	return budget
}

func truncateColumn(rows [][]string, col, width int) {
	for _, row := range rows {
		if col < len(row) && displayWidth(row[col]) > width {
			row[col] = runewidth.Truncate(row[col], width, ellipsis)
		}
	}
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	widths := columnWidths(headers, rows)
	if len(widths) == 0 {
		return nil
	}
	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func columnWidths(headers []string, rows [][]string) []int {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
