package complaint

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/verte-zerg/complaintstat/internal/model"
)

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("input has no header row")

// ReadStats counts what happened to the input rows.
type ReadStats struct {
	Rows     int
	Accepted int
	Rejected map[Reject]int
}

// RejectedTotal returns the number of skipped rows.
func (s ReadStats) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// Reader streams complaint rows from CSV input.
type Reader struct {
	Columns model.Columns
	Logger  *slog.Logger
}

// NewReader returns a reader for the given header names.
func NewReader(cols model.Columns, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{Columns: cols, Logger: logger}
}

// Read parses every row of in and hands accepted complaints to sink in input
// order. Bad rows are counted and skipped; only a missing header or an I/O
// failure aborts the pass.
func (r *Reader) Read(ctx context.Context, in io.Reader, sink func(model.Complaint)) (ReadStats, error) {
	stats := ReadStats{Rejected: map[Reject]int{}}

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, ErrNoHeader
		}
		return stats, fmt.Errorf("failed to read header: %w", err)
	}
	schema, err := NewSchema(header, r.Columns)
	if err != nil {
		return stats, err
	}
	parser := NewParser(schema)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return stats, fmt.Errorf("failed to read row %d: %w", stats.Rows, err)
			}
			r.skip(&stats, RejectMalformed, perr.StartLine)
			continue
		}
		c, reject := parser.Parse(record)
		if reject != RejectNone {
			line, _ := cr.FieldPos(0)
			r.skip(&stats, reject, line)
			continue
		}
		stats.Accepted++
		sink(c)
	}
	return stats, nil
}

func (r *Reader) skip(stats *ReadStats, reason Reject, line int) {
	stats.Rejected[reason]++
	r.Logger.Debug("skipping row", slog.Int("line", line), slog.String("reason", reason.String()))
}
