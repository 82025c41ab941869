package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/complaintstat/internal/complaint"
	"github.com/verte-zerg/complaintstat/internal/model"
	"github.com/verte-zerg/complaintstat/internal/store"
)

// Report contains the finished rows plus how the input was consumed.
type Report struct {
	Rows  []model.ReportRow
	Input complaint.ReadStats
	Run   model.Run
}

// BuildReport reads all complaints from in and aggregates them in one pass.
func BuildReport(ctx context.Context, reader *complaint.Reader, in io.Reader) (Report, error) {
	agg := NewAggregator()
	input, err := reader.Read(ctx, in, agg.Add)
	if err != nil {
		return Report{}, err
	}
	rows := agg.Finalize()
	return Report{
		Rows:  rows,
		Input: input,
		Run: model.Run{
			Rows:     input.Rows,
			Accepted: input.Accepted,
			Rejected: input.RejectedTotal(),
			Groups:   len(rows),
		},
	}, nil
}

// LoadReport rebuilds a saved report from the store.
func LoadReport(ctx context.Context, st *store.Store, runID string) (Report, error) {
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return Report{}, err
	}
	rows, err := st.RunRows(ctx, runID)
	if err != nil {
		return Report{}, err
	}
	return Report{Rows: rows, Run: run}, nil
}
