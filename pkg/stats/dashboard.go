package stats

import (
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"sort"
)

const TopTitles = 10

// Summary holds the headline metrics. Loans with a blank borrower id do not
// count as a borrower.
type Summary struct {
	TotalLoans        int `json:"totalLoans"`
	DistinctBorrowers int `json:"distinctBorrowers"`
	NotReturned       int `json:"notReturned"`
	Late              int `json:"late"`
}

// Charts holds every data series the dashboard draws. AgeGroups is nil when
// the table has no borrower_age_group column.
type Charts struct {
	Monthly         []MonthCount `json:"monthly"`
	TopTitles       []Bucket     `json:"topTitles"`
	Genres          []Bucket     `json:"genres"`
	BorrowerTypes   []Bucket     `json:"borrowerTypes"`
	AgeGroups       []Bucket     `json:"ageGroups,omitempty"`
	OverdueStatuses []Bucket     `json:"overdueStatuses"`
	MeanDaysByGenre []GroupMean  `json:"meanDaysByGenre"`
}

func Summarize(t *table.Table) Summary {
	return Summary{
		TotalLoans:        Count(t),
		DistinctBorrowers: DistinctPresent(t, models.ColBorrowerID),
		NotReturned:       CountWhere(t, (*models.Loan).IsOpen),
		Late:              CountWhere(t, (*models.Loan).IsLate),
	}
}

func BuildCharts(t *table.Table) Charts {
	c := Charts{
		Monthly:         MonthlyHistogram(t),
		TopTitles:       TopN(t, models.ColBookTitle, TopTitles),
		Genres:          ValueCounts(t, models.ColGenre),
		BorrowerTypes:   ValueCounts(t, models.ColBorrowerType),
		OverdueStatuses: ValueCounts(t, models.ColOverdueStatus),
		MeanDaysByGenre: GroupMeans(t, models.ColGenre, models.ColDaysOnLoan),
	}

	if t.Has(models.ColBorrowerAgeGroup) {
		c.AgeGroups = ValueCounts(t, models.ColBorrowerAgeGroup)
		sort.SliceStable(c.AgeGroups, func(i, j int) bool {
			return c.AgeGroups[i].Value < c.AgeGroups[j].Value
		})
	}

	sort.SliceStable(c.MeanDaysByGenre, func(i, j int) bool {
		return c.MeanDaysByGenre[i].Mean > c.MeanDaysByGenre[j].Mean
	})
	return c
}
