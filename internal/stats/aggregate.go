package stats

import (
	"sort"

	"github.com/verte-zerg/complaintstat/internal/model"
)

// Tally accumulates the complaints of one product and year.
type Tally struct {
	Complaints int
	Companies  map[string]int
}

// MaxCompany returns the largest per-company complaint count.
func (t Tally) MaxCompany() int {
	maxCount := 0
	for _, n := range t.Companies {
		if n > maxCount {
			maxCount = n
		}
	}
	return maxCount
}

// Row derives the report row for key.
func (t Tally) Row(key model.GroupKey) model.ReportRow {
	return model.ReportRow{
		Product:     key.Product,
		Year:        key.Year,
		Complaints:  t.Complaints,
		Companies:   len(t.Companies),
		MaxSharePct: MaxSharePercent(t.MaxCompany(), t.Complaints),
	}
}

// Aggregator folds complaints into per-group tallies.
// It is not safe for concurrent use.
type Aggregator struct {
	groups map[model.GroupKey]*Tally
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{groups: map[model.GroupKey]*Tally{}}
}

// Add counts one complaint. Identical complaints are counted every time.
func (a *Aggregator) Add(c model.Complaint) {
	key := c.Key()
	t, ok := a.groups[key]
	if !ok {
		t = &Tally{Companies: map[string]int{}}
		a.groups[key] = t
	}
	t.Complaints++
	t.Companies[c.Company]++
}

// Len returns the number of groups seen so far.
func (a *Aggregator) Len() int {
	return len(a.groups)
}

// Tally returns a copy of the tally for key.
func (a *Aggregator) Tally(key model.GroupKey) (Tally, bool) {
	t, ok := a.groups[key]
	if !ok {
		return Tally{}, false
	}
	companies := make(map[string]int, len(t.Companies))
	for name, n := range t.Companies {
		companies[name] = n
	}
	return Tally{Complaints: t.Complaints, Companies: companies}, true
}

// Finalize builds the report rows sorted by product, then year.
func (a *Aggregator) Finalize() []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(a.groups))
	for key, t := range a.groups {
		if t.Complaints == 0 {
			continue
		}
		rows = append(rows, t.Row(key))
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by product, then year.
func SortRows(rows []model.ReportRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Product == rows[j].Product {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Product < rows[j].Product
	})
}

// MaxSharePercent returns 100*top/total rounded to the nearest integer with
// halves rounded up. Integer arithmetic keeps .5 boundaries exact.
func MaxSharePercent(top, total int) int {
	if total <= 0 || top <= 0 {
		return 0
	}
	return (200*top + total) / (2 * total)
}
