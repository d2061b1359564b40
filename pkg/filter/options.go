package filter

import (
	"library_stats/pkg/table"
	"time"
)

type DimensionOptions struct {
	Column string
	Values []string
}

// Options describes what a dashboard can offer as selector choices for t.
type Options struct {
	EarliestIssue time.Time
	LatestIssue   time.Time
	Dimensions    []DimensionOptions
}

// OptionsFor collects the issue date bounds of t and, for each filterable
// dimension present, its distinct values in first-encountered order.
func OptionsFor(t *table.Table) Options {
	var opts Options
	for i := 0; i < t.Len(); i++ {
		d := t.Record(i).IssueDate
		if opts.EarliestIssue.IsZero() || d.Before(opts.EarliestIssue) {
			opts.EarliestIssue = d
		}
		if opts.LatestIssue.IsZero() || d.After(opts.LatestIssue) {
			opts.LatestIssue = d
		}
	}

	for _, dim := range Dimensions {
		if !t.Has(dim) {
			continue
		}
		seen := make(map[string]bool)
		values := make([]string, 0)
		for i := 0; i < t.Len(); i++ {
			v := table.Text(t.Record(i), dim)
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		opts.Dimensions = append(opts.Dimensions, DimensionOptions{Column: dim, Values: values})
	}
	return opts
}
