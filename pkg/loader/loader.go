package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrUnknownSource = errors.New("unknown data source")
)

var RequiredColumns = []string{
	models.ColBookTitle,
	models.ColGenre,
	models.ColBorrowerID,
	models.ColBorrowerType,
	models.ColIssueDate,
	models.ColDueDate,
	models.ColReturnDate,
	models.ColOverdueStatus,
	models.ColDaysOnLoan,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// LoadFile reads a CSV loan table from disk.
func LoadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// ParseCSV reads a loan table. The header order becomes the schema order.
// Any structural problem fails the whole load.
func ParseCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = h
	}

	if err := checkRequired(headers); err != nil {
		return nil, err
	}

	var records []models.Loan
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		loan, err := parseRow(headers, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		loan.Position = len(records)
		records = append(records, loan)
	}

	return table.New(headers, records), nil
}

func checkRequired(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func parseRow(headers, row []string) (models.Loan, error) {
	var loan models.Loan
	for i, raw := range row {
		col := headers[i]
		val := strings.TrimSpace(raw)
		switch col {
		case models.ColBookTitle:
			loan.BookTitle = val
		case models.ColGenre:
			loan.Genre = val
		case models.ColBorrowerID:
			loan.BorrowerID = val
		case models.ColBorrowerType:
			loan.BorrowerType = val
		case models.ColStudentBatch:
			loan.StudentBatch = val
		case models.ColStudentMajor:
			loan.StudentMajor = val
		case models.ColBorrowerAgeGroup:
			loan.BorrowerAgeGroup = val
		case models.ColOverdueStatus:
			loan.OverdueStatus = val
		case models.ColIssueDate:
			d, err := ParseDate(val)
			if err != nil {
				return loan, fmt.Errorf("%s: %w", col, err)
			}
			loan.IssueDate = d
		case models.ColDueDate:
			d, err := ParseDate(val)
			if err != nil {
				return loan, fmt.Errorf("%s: %w", col, err)
			}
			loan.DueDate = d
		case models.ColReturnDate:
			// An unreadable return date means the loan is still open.
			if d, err := ParseDate(val); err == nil {
				loan.ReturnDate = &d
			}
		case models.ColDaysOnLoan:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				loan.DaysOnLoan = &f
			}
		default:
			if loan.Extra == nil {
				loan.Extra = make(map[string]string)
			}
			loan.Extra[col] = val
		}
	}
	return loan, nil
}

// ParseDate parses a date in any of the accepted layouts. The result is in
// UTC with the wall-clock fields of the input.
func ParseDate(s string) (time.Time, error) {
	if isAbsent(s) {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return wallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// wallClock keeps the date and clock as written, dropping any offset, so
// the calendar day of a timestamp never shifts.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

func isAbsent(s string) bool {
	switch strings.ToLower(s) {
	case "", "nat", "nan", "null", "none":
		return true
	}
	return false
}
