package complaint

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/complaintstat/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readAll(t *testing.T, input string) ([]model.Complaint, ReadStats, error) {
	t.Helper()
	var got []model.Complaint
	r := NewReader(model.DefaultColumns(), quietLogger())
	stats, err := r.Read(context.Background(), strings.NewReader(input), func(c model.Complaint) {
		got = append(got, c)
	})
	return got, stats, err
}

func TestReadSampleFile(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "testdata", "complaints_sample.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	var got []model.Complaint
	r := NewReader(model.DefaultColumns(), quietLogger())
	stats, err := r.Read(context.Background(), f, func(c model.Complaint) {
		got = append(got, c)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 5, stats.Accepted)
	assert.Equal(t, 0, stats.RejectedTotal())
	require.Len(t, got, 5)
	assert.Equal(t, model.Complaint{Product: "debt collection", Company: "transworld systems inc", Year: 2019}, got[0])
	assert.Equal(t, "transunion intermediate holdings, inc.", got[3].Company)
}

func TestReadSkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"Date received,Product,Company",
		"2019-01-02,Mortgage,Bank A",
		",Mortgage,Bank A",
		"2019-01-02,,Bank A",
		"2019-01-02,Mortgage,",
		"2019-02-30,Mortgage,Bank A",
		"2019-01-02,Mortgage",
		"2019-01-03,Mortgage,Bank B",
	}, "\n") + "\n"

	got, stats, err := readAll(t, input)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Rows)
	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, 5, stats.RejectedTotal())
	assert.Equal(t, map[Reject]int{
		RejectMissingDate:    1,
		RejectMissingProduct: 1,
		RejectMissingCompany: 1,
		RejectBadDate:        1,
		RejectFieldCount:     1,
	}, stats.Rejected)
	require.Len(t, got, 2)
	assert.Equal(t, "bank b", got[1].Company)
}

func TestReadBareQuoteInNarrative(t *testing.T) {
	input := "Date received,Product,Company,Consumer complaint narrative\n" +
		"2019-01-02,Mortgage,Bank,My 5\" phone was charged\n" +
		"2019-01-03,Mortgage,Bank,\"quoted \"\"fine\"\" text\"\n"

	got, stats, err := readAll(t, input)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Accepted)
	assert.Empty(t, stats.Rejected)
	require.Len(t, got, 2)
	assert.Equal(t, model.Complaint{Product: "mortgage", Company: "bank", Year: 2019}, got[0])
}

func TestReadStrayQuoteAfterQuotedFieldDoesNotFail(t *testing.T) {
	input := "Date received,Product,Company\n" +
		"2019-01-03,Mortgage,Bank\n" +
		"2019-01-02,\"Mortgage\"x,Bank\n"

	got, stats, err := readAll(t, input)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.RejectedTotal())
	require.Len(t, got, 1)
	assert.Equal(t, 2019, got[0].Year)
}

func TestReadHeaderOnly(t *testing.T) {
	got, stats, err := readAll(t, "Date received,Product,Company\n")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, stats.Rows)
}

func TestReadEmptyInput(t *testing.T) {
	_, _, err := readAll(t, "")
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestReadMissingColumn(t *testing.T) {
	_, _, err := readAll(t, "Date received,Product\n2019-01-01,Mortgage\n")
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReader(model.DefaultColumns(), quietLogger())
	_, err := r.Read(ctx, strings.NewReader("Date received,Product,Company\n2019-01-01,a,b\n"), func(model.Complaint) {})
	require.ErrorIs(t, err, context.Canceled)
}
