// Package model defines shared data structures.
package model

import "time"

// Default header names of the complaints export.
const (
	DefaultDateColumn    = "Date received"
	DefaultProductColumn = "Product"
	DefaultCompanyColumn = "Company"
)

// Columns names the header cells holding the fields the report needs.
type Columns struct {
	Date    string
	Product string
	Company string
}

// DefaultColumns returns the column names used by the public complaints export.
func DefaultColumns() Columns {
	return Columns{
		Date:    DefaultDateColumn,
		Product: DefaultProductColumn,
		Company: DefaultCompanyColumn,
	}
}

// Complaint is one accepted input row, already normalized.
type Complaint struct {
	Product string
	Company string
	Year    int
}

// Key returns the report group the complaint belongs to.
func (c Complaint) Key() GroupKey {
	return GroupKey{Product: c.Product, Year: c.Year}
}

// GroupKey identifies one report row.
type GroupKey struct {
	Product string
	Year    int
}

// ReportRow holds the statistics for one product and year.
type ReportRow struct {
	Product     string
	Year        int
	Complaints  int
	Companies   int
	MaxSharePct int
}

// Key returns the group the row summarizes.
func (r ReportRow) Key() GroupKey {
	return GroupKey{Product: r.Product, Year: r.Year}
}

// Run describes a saved report run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Source    string
	Rows      int
	Accepted  int
	Rejected  int
	Groups    int
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// ReportConfig defines settings for a report run.
type ReportConfig struct {
	Columns Columns
	Format  string
	Save    bool
	DBPath  string
}
