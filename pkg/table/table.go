package table

import (
	"library_stats/pkg/models"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// Table is an ordered set of loans sharing one column schema. It is never
// modified after construction; filters derive new tables from it.
type Table struct {
	columns []string
	schema  map[string]bool
	records []models.Loan
}

// New builds a table over records with the given column order.
func New(columns []string, records []models.Loan) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	schema := make(map[string]bool, len(cols))
	for _, c := range cols {
		schema[c] = true
	}
	return &Table{columns: cols, schema: schema, records: records}
}

// Derive returns a table with the same schema holding the given records.
func (t *Table) Derive(records []models.Loan) *Table {
	return &Table{columns: t.columns, schema: t.schema, records: records}
}

func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Has reports whether column is part of the schema.
func (t *Table) Has(column string) bool {
	return t.schema[column]
}

func (t *Table) Len() int {
	return len(t.records)
}

// Record returns a pointer into the table; callers must not modify it.
func (t *Table) Record(i int) *models.Loan {
	return &t.records[i]
}

func (t *Table) Records() []models.Loan {
	return t.records
}

// Text renders a column value of a loan as text. Absent values render empty.
func Text(l *models.Loan, column string) string {
	switch column {
	case models.ColBookTitle:
		return l.BookTitle
	case models.ColGenre:
		return l.Genre
	case models.ColBorrowerID:
		return l.BorrowerID
	case models.ColBorrowerType:
		return l.BorrowerType
	case models.ColStudentBatch:
		return l.StudentBatch
	case models.ColStudentMajor:
		return l.StudentMajor
	case models.ColBorrowerAgeGroup:
		return l.BorrowerAgeGroup
	case models.ColIssueDate:
		return l.IssueDate.Format(DateLayout)
	case models.ColDueDate:
		return l.DueDate.Format(DateLayout)
	case models.ColReturnDate:
		if l.ReturnDate == nil {
			return ""
		}
		return l.ReturnDate.Format(DateLayout)
	case models.ColOverdueStatus:
		return l.OverdueStatus
	case models.ColDaysOnLoan:
		if l.DaysOnLoan == nil {
			return ""
		}
		return strconv.FormatFloat(*l.DaysOnLoan, 'f', -1, 64)
	}
	return l.Extra[column]
}

// Date returns the value of a date column, or false when the column is not
// a date column or the value is absent.
func Date(l *models.Loan, column string) (time.Time, bool) {
	switch column {
	case models.ColIssueDate:
		return l.IssueDate, true
	case models.ColDueDate:
		return l.DueDate, true
	case models.ColReturnDate:
		if l.ReturnDate == nil {
			return time.Time{}, false
		}
		return *l.ReturnDate, true
	}
	return time.Time{}, false
}

// Number returns the numeric value of a column, or false when it is absent
// or not numeric.
func Number(l *models.Loan, column string) (float64, bool) {
	if column == models.ColDaysOnLoan {
		if l.DaysOnLoan == nil {
			return 0, false
		}
		return *l.DaysOnLoan, true
	}
	v, err := strconv.ParseFloat(Text(l, column), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
