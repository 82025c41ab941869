package stats

import (
	"sort"

	"github.com/verte-zerg/complaintstat/internal/model"
)

// TopProducts returns the top N products by total complaints across years.
func TopProducts(rows []model.ReportRow, n int) []string {
	if n <= 0 || len(rows) == 0 {
		return nil
	}
	totals := map[string]int{}
	for _, r := range rows {
		totals[r.Product] += r.Complaints
	}
	type item struct {
		product string
		total   int
	}
	items := make([]item, 0, len(totals))
	for p, total := range totals {
		items = append(items, item{product: p, total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].product < items[j].product
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].product)
	}
	return out
}

// FilterProducts keeps the rows whose product is in products, preserving order.
func FilterProducts(rows []model.ReportRow, products []string) []model.ReportRow {
	keep := make(map[string]struct{}, len(products))
	for _, p := range products {
		keep[p] = struct{}{}
	}
	out := make([]model.ReportRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := keep[r.Product]; ok {
			out = append(out, r)
		}
	}
	return out
}
