// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/complaintstat/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary describes a report at a glance.
type Summary struct {
	Groups     int
	Products   int
	Complaints int
	FirstYear  int
	LastYear   int
}

// Summarize computes headline numbers for rows.
func Summarize(rows []model.ReportRow) Summary {
	var s Summary
	products := map[string]struct{}{}
	for i, r := range rows {
		products[r.Product] = struct{}{}
		s.Complaints += r.Complaints
		if i == 0 || r.Year < s.FirstYear {
			s.FirstYear = r.Year
		}
		if i == 0 || r.Year > s.LastYear {
			s.LastYear = r.Year
		}
	}
	s.Groups = len(rows)
	s.Products = len(products)
	return s
}

// RenderSummary prints a summary block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Groups == 0 {
		_, err := fmt.Fprintln(w, "No complaints found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Complaints: %d", s.Complaints),
		fmt.Sprintf("Products: %d", s.Products),
		fmt.Sprintf("Groups: %d", s.Groups),
		fmt.Sprintf("Years: %s", yearSpan(s.FirstYear, s.LastYear)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func yearSpan(first, last int) string {
	if first == last {
		return strconv.Itoa(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// Trend holds yearly complaint totals for one product. Years without
// complaints inside the span are present with a zero total.
type Trend struct {
	Product string
	Years   []int
	Totals  []float64
}

// ProductTrends groups rows into one trend per product, in product order.
func ProductTrends(rows []model.ReportRow) []Trend {
	byProduct := map[string]map[int]int{}
	for _, r := range rows {
		years, ok := byProduct[r.Product]
		if !ok {
			years = map[int]int{}
			byProduct[r.Product] = years
		}
		years[r.Year] += r.Complaints
	}
	products := make([]string, 0, len(byProduct))
	for p := range byProduct {
		products = append(products, p)
	}
	sort.Strings(products)

	trends := make([]Trend, 0, len(products))
	for _, p := range products {
		years := byProduct[p]
		first, last := math.MaxInt, math.MinInt
		for y := range years {
			first = min(first, y)
			last = max(last, y)
		}
		tr := Trend{Product: p}
		for y := first; y <= last; y++ {
			tr.Years = append(tr.Years, y)
			tr.Totals = append(tr.Totals, float64(years[y]))
		}
		trends = append(trends, tr)
	}
	return trends
}

// RenderTrends prints one sparkline per product.
func RenderTrends(w io.Writer, trends []Trend, maxWidth int) error {
	if len(trends) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(trends))
	for _, tr := range trends {
		peak := 0.0
		for _, v := range tr.Totals {
			peak = math.Max(peak, v)
		}
		rows = append(rows, []string{
			tr.Product,
			yearSpan(tr.Years[0], tr.Years[len(tr.Years)-1]),
			"[" + Sparkline(tr.Totals) + "]",
			fmt.Sprintf("peak %d", int(peak)),
		})
	}
	if maxWidth > 0 {
		truncateColumn(rows, 0, productBudget(nil, rows, maxWidth))
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
