package export

import (
	"bytes"
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func date(s string) time.Time {
	d, err := time.Parse(table.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleTable() *table.Table {
	returned := date("2024-02-20")
	days := 12.5
	cols := []string{
		models.ColBookTitle, models.ColGenre, models.ColBorrowerID, models.ColBorrowerType,
		models.ColIssueDate, models.ColDueDate, models.ColReturnDate, models.ColOverdueStatus,
		models.ColDaysOnLoan, "branch",
	}
	return table.New(cols, []models.Loan{
		{BookTitle: "Dune", Genre: "Fiction", BorrowerID: "B1", BorrowerType: "Student",
			IssueDate: date("2024-01-05"), DueDate: date("2024-01-19"), OverdueStatus: models.StatusOverdue,
			Extra: map[string]string{"branch": "North"}},
		{BookTitle: "Sapiens", Genre: "History", BorrowerID: "B2", BorrowerType: "Teacher",
			IssueDate: date("2024-02-10"), DueDate: date("2024-02-24"), ReturnDate: &returned,
			OverdueStatus: models.StatusOnTime, DaysOnLoan: &days, Extra: map[string]string{"branch": "South"}},
	})
}

func readSheet(t *testing.T, data []byte) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestToXLSXRoundTrip(t *testing.T) {
	tbl := sampleTable()

	data, err := ToXLSX(tbl)
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, tbl.Len()+1)
	assert.Equal(t, tbl.Columns(), rows[0])

	for i := 0; i < tbl.Len(); i++ {
		row := rows[i+1]
		for j, col := range tbl.Columns() {
			got := ""
			if j < len(row) {
				got = row[j]
			}
			if _, isDate := table.Date(tbl.Record(i), col); isDate && got != "" {
				serial, err := strconv.ParseFloat(got, 64)
				require.NoError(t, err)
				d, err := excelize.ExcelDateToTime(serial, false)
				require.NoError(t, err)
				got = d.Format(table.DateLayout)
			}
			assert.Equal(t, table.Text(tbl.Record(i), col), got, "row %d column %s", i, col)
		}
	}
}

func TestToXLSXEmptyTable(t *testing.T) {
	tbl := table.New(sampleTable().Columns(), nil)

	data, err := ToXLSX(tbl)
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, tbl.Columns(), rows[0])
}

func TestToXLSXDatesAreFormatted(t *testing.T) {
	data, err := ToXLSX(sampleTable())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	issued, err := f.GetCellValue(SheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", issued)

	returned, err := f.GetCellValue(SheetName, "G2")
	require.NoError(t, err)
	assert.Equal(t, "", returned)
}
