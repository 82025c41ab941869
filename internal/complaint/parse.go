// Package complaint turns raw complaint CSV rows into normalized records.
package complaint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/verte-zerg/complaintstat/internal/model"
)

const dateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ErrMissingColumn reports a header without one of the required columns.
var ErrMissingColumn = errors.New("missing required column")

// Reject explains why a row was skipped.
type Reject int

// Reject reasons, in the order they are checked.
const (
	RejectNone Reject = iota
	RejectMalformed
	RejectFieldCount
	RejectMissingDate
	RejectMissingProduct
	RejectMissingCompany
	RejectBadDate
)

func (r Reject) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectMalformed:
		return "malformed csv"
	case RejectFieldCount:
		return "field count"
	case RejectMissingDate:
		return "missing date"
	case RejectMissingProduct:
		return "missing product"
	case RejectMissingCompany:
		return "missing company"
	case RejectBadDate:
		return "invalid date"
	default:
		return fmt.Sprintf("reject(%d)", int(r))
	}
}

// Schema holds the positions of the required columns within a header.
type Schema struct {
	Width   int
	Date    int
	Product int
	Company int
}

// NewSchema locates the configured columns in header. Names match after
// trimming and ignoring case; a leading UTF-8 BOM is dropped.
func NewSchema(header []string, cols model.Columns) (Schema, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	lookup := func(name string) (int, error) {
		pos, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return pos, nil
	}

	s := Schema{Width: len(header)}
	var err error
	if s.Date, err = lookup(cols.Date); err != nil {
		return Schema{}, err
	}
	if s.Product, err = lookup(cols.Product); err != nil {
		return Schema{}, err
	}
	if s.Company, err = lookup(cols.Company); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// Parser converts rows matching a schema into complaints.
// A Parser is not safe for concurrent use.
type Parser struct {
	schema Schema
	fold   cases.Caser
}

// NewParser returns a parser for rows laid out as schema.
func NewParser(schema Schema) *Parser {
	return &Parser{schema: schema, fold: cases.Fold()}
}

// Parse validates and normalizes one row. It never fails loudly: a row that
// cannot be used is reported through the returned Reject.
func (p *Parser) Parse(fields []string) (model.Complaint, Reject) {
	if len(fields) != p.schema.Width {
		return model.Complaint{}, RejectFieldCount
	}
	date := strings.TrimSpace(fields[p.schema.Date])
	product := strings.TrimSpace(fields[p.schema.Product])
	company := strings.TrimSpace(fields[p.schema.Company])
	switch {
	case date == "":
		return model.Complaint{}, RejectMissingDate
	case product == "":
		return model.Complaint{}, RejectMissingProduct
	case company == "":
		return model.Complaint{}, RejectMissingCompany
	}
	year, ok := parseYear(date)
	if !ok {
		return model.Complaint{}, RejectBadDate
	}
	return model.Complaint{
		Product: p.normalize(product),
		Company: p.normalize(company),
		Year:    year,
	}, RejectNone
}

func (p *Parser) normalize(s string) string {
	p.fold.Reset()
	return p.fold.String(s)
}

func parseYear(date string) (int, bool) {
	if !dateRe.MatchString(date) {
		return 0, false
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil || t.Year() < 1 {
		return 0, false
	}
	return t.Year(), true
}
