package filter

import (
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"time"
)

// Dimensions lists the categorical columns that can be filtered, in the
// order the dashboard shows their selectors.
var Dimensions = []string{
	models.ColGenre,
	models.ColBorrowerType,
	models.ColStudentBatch,
	models.ColStudentMajor,
	models.ColBorrowerAgeGroup,
	models.ColOverdueStatus,
}

// Selection is the set of active constraints. A zero From or To leaves that
// side of the date range open; a dimension with no values is unconstrained.
type Selection struct {
	From   time.Time
	To     time.Time
	Values map[string][]string
}

type Predicate func(l *models.Loan) bool

// DateRange keeps loans issued on a calendar day within [from, to].
func DateRange(from, to time.Time) Predicate {
	from, to = day(from), day(to)
	return func(l *models.Loan) bool {
		d := day(l.IssueDate)
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	}
}

// OneOf keeps loans whose column value is one of values.
func OneOf(column string, values []string) Predicate {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(l *models.Loan) bool {
		return set[table.Text(l, column)]
	}
}

// Predicates builds one predicate per active constraint of sel. Dimensions
// absent from the schema of t are skipped.
func Predicates(t *table.Table, sel Selection) []Predicate {
	var preds []Predicate
	if !sel.From.IsZero() || !sel.To.IsZero() {
		preds = append(preds, DateRange(sel.From, sel.To))
	}
	for _, dim := range Dimensions {
		values := sel.Values[dim]
		if len(values) == 0 || !t.Has(dim) {
			continue
		}
		preds = append(preds, OneOf(dim, values))
	}
	return preds
}

// Where returns the loans of t passing every predicate, in table order.
func Where(t *table.Table, preds ...Predicate) *table.Table {
	if len(preds) == 0 {
		return t
	}
	kept := make([]models.Loan, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		l := t.Record(i)
		pass := true
		for _, p := range preds {
			if !p(l) {
				pass = false
				break
			}
		}
		if pass {
			kept = append(kept, *l)
		}
	}
	return t.Derive(kept)
}

func Apply(t *table.Table, sel Selection) *table.Table {
	return Where(t, Predicates(t, sel)...)
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
