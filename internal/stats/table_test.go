package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/complaintstat/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Product", "Year", "Complaints"}
	rows := [][]string{
		{"mortgage", "2019", "12"},
		{"debt collection", "2020", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Product         Year Complaints", lines[0])
	assert.Equal(t, "mortgage        2019         12", lines[1])
	assert.Equal(t, "debt collection 2020          3", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"銀行", "1"}, {"bank", "22"}}, map[int]bool{1: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "銀行  1", lines[1])
	assert.Equal(t, "bank 22", lines[2])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.ReportRow{
		{Product: "debt collection", Year: 2019, Complaints: 1, Companies: 1, MaxSharePct: 100},
	}
	require.NoError(t, RenderTable(&buf, rows, 0))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Product         Year Complaints Companies Max Share", lines[0])
	assert.Equal(t, "debt collection 2019          1         1      100%", lines[1])
}

func TestRenderTableTruncatesProduct(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.ReportRow{
		{Product: creditProduct, Year: 2019, Complaints: 3, Companies: 2, MaxSharePct: 67},
	}
	require.NoError(t, RenderTable(&buf, rows, 60))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, displayWidth(line), 60, line)
	}
	assert.Contains(t, buf.String(), "credit reporting, cre...")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, nil, 0))
	assert.Equal(t, "No complaints found.\n", buf.String())
}

func TestTerminalWidthNonTerminal(t *testing.T) {
	assert.Equal(t, 0, TerminalWidth(&bytes.Buffer{}))
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	runs := []model.Run{
		{ID: "b2", CreatedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Source: "new.csv", Rows: 12, Accepted: 10, Rejected: 2, Groups: 4},
		{ID: "a1", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Source: "old.csv", Rows: 5, Accepted: 5, Groups: 3},
	}
	require.NoError(t, RenderRuns(&buf, runs))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "b2"))
	assert.Contains(t, lines[1], "new.csv")
	assert.True(t, strings.HasSuffix(lines[2], " 3"))
}

func TestRenderRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRuns(&buf, nil))
	assert.Equal(t, "No saved runs.\n", buf.String())
}
