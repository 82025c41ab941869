package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/complaintstat/internal/model"
)

const creditProduct = "credit reporting, credit repair services, or other personal consumer reports"

var sampleRows = []model.ReportRow{
	{Product: creditProduct, Year: 2019, Complaints: 3, Companies: 2, MaxSharePct: 67},
	{Product: creditProduct, Year: 2020, Complaints: 1, Companies: 1, MaxSharePct: 100},
	{Product: "debt collection", Year: 2019, Complaints: 1, Companies: 1, MaxSharePct: 100},
}

func TestWriteCSVMatchesSampleReport(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("..", "..", "testdata", "report_sample.csv"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows))
	assert.Equal(t, string(want), buf.String())
}

func TestWriteCSVQuotesOnlyWhenNeeded(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.ReportRow{
		{Product: `bank "accounts"`, Year: 2018, Complaints: 2, Companies: 2, MaxSharePct: 50},
		{Product: "mortgage", Year: 2018, Complaints: 1, Companies: 1, MaxSharePct: 100},
	}
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "\"bank \"\"accounts\"\"\",2018,2,2,50\nmortgage,2018,1,1,100\n", buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"product", "year", "complaints", "companies", "max_share_pct"}, rows[0])
	assert.Equal(t, []string{creditProduct, "2019", "3", "2", "67"}, rows[1])
	assert.Equal(t, []string{"debt collection", "2019", "1", "1", "100"}, rows[3])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "csv", input: "csv", want: FormatCSV},
		{name: "xlsx upper", input: " XLSX ", want: FormatXLSX},
		{name: "unknown", input: "json", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatForPath("out/report.XLSX"))
	assert.Equal(t, FormatCSV, FormatForPath("out/report.csv"))
	assert.Equal(t, FormatCSV, FormatForPath("out/report"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output", "report.csv")
	require.NoError(t, WriteFile(path, FormatCSV, sampleRows))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "debt collection,2019,1,1,100\n")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be gone")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.out")
	err := WriteFile(path, Format("json"), sampleRows)
	require.ErrorIs(t, err, ErrUnknownFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
