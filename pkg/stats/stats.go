package stats

import (
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"sort"
	"time"
)

// Bucket is one distinct value of a column and how often it occurs.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

func Count(t *table.Table) int {
	return t.Len()
}

func DistinctCount(t *table.Table, column string) int {
	seen := make(map[string]bool)
	for i := 0; i < t.Len(); i++ {
		seen[table.Text(t.Record(i), column)] = true
	}
	return len(seen)
}

// DistinctPresent is DistinctCount ignoring blank values.
func DistinctPresent(t *table.Table, column string) int {
	seen := make(map[string]bool)
	for i := 0; i < t.Len(); i++ {
		if v := table.Text(t.Record(i), column); v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

func CountWhere(t *table.Table, pred func(l *models.Loan) bool) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if pred(t.Record(i)) {
			n++
		}
	}
	return n
}

// MonthlyHistogram counts loans per calendar month of issue. Months between
// the first and last populated month are present with a zero count.
func MonthlyHistogram(t *table.Table) []MonthCount {
	if t.Len() == 0 {
		return []MonthCount{}
	}

	counts := make(map[time.Time]int)
	var first, last time.Time
	for i := 0; i < t.Len(); i++ {
		m := monthOf(t.Record(i).IssueDate)
		counts[m]++
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}

	var result []MonthCount
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		result = append(result, MonthCount{Month: m, Count: counts[m]})
	}
	return result
}

// ValueCounts returns every distinct value of column once, most frequent
// first. Equal counts keep the order in which values were first seen.
func ValueCounts(t *table.Table, column string) []Bucket {
	index := make(map[string]int)
	buckets := make([]Bucket, 0)
	for i := 0; i < t.Len(); i++ {
		v := table.Text(t.Record(i), column)
		pos, ok := index[v]
		if !ok {
			pos = len(buckets)
			index[v] = pos
			buckets = append(buckets, Bucket{Value: v})
		}
		buckets[pos].Count++
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

func TopN(t *table.Table, column string, n int) []Bucket {
	buckets := ValueCounts(t, column)
	if n >= 0 && len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

// GroupMeans averages a numeric column per group value, in first-seen group
// order. Rows without a numeric value are ignored and groups left with no
// values are omitted.
func GroupMeans(t *table.Table, groupColumn, numericColumn string) []GroupMean {
	type acc struct {
		sum   float64
		count int
	}
	index := make(map[string]int)
	groups := make([]string, 0)
	accs := make([]acc, 0)

	for i := 0; i < t.Len(); i++ {
		l := t.Record(i)
		v, ok := table.Number(l, numericColumn)
		if !ok {
			continue
		}
		g := table.Text(l, groupColumn)
		pos, seen := index[g]
		if !seen {
			pos = len(groups)
			index[g] = pos
			groups = append(groups, g)
			accs = append(accs, acc{})
		}
		accs[pos].sum += v
		accs[pos].count++
	}

	result := make([]GroupMean, 0, len(groups))
	for i, g := range groups {
		result = append(result, GroupMean{
			Group: g,
			Mean:  accs[i].sum / float64(accs[i].count),
			Count: accs[i].count,
		})
	}
	return result
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
