package stats

import (
	"testing"

	"github.com/verte-zerg/complaintstat/internal/model"
)

func TestTopProducts(t *testing.T) {
	rows := []model.ReportRow{
		{Product: "a", Year: 2019, Complaints: 2},
		{Product: "a", Year: 2020, Complaints: 2},
		{Product: "b", Year: 2019, Complaints: 4},
		{Product: "c", Year: 2019, Complaints: 1},
	}
	top := TopProducts(rows, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 products, got %d", len(top))
	}
	if top[0] != "a" || top[1] != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
	if got := TopProducts(rows, 10); len(got) != 3 {
		t.Fatalf("expected all 3 products, got %v", got)
	}
	if got := TopProducts(rows, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func TestFilterProducts(t *testing.T) {
	rows := []model.ReportRow{
		{Product: "a", Year: 2019},
		{Product: "b", Year: 2019},
		{Product: "a", Year: 2020},
	}
	got := FilterProducts(rows, []string{"a"})
	if len(got) != 2 || got[0].Year != 2019 || got[1].Year != 2020 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}
