package export

import (
	"fmt"
	"library_stats/pkg/models"
	"library_stats/pkg/table"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Filtered_Library_Data"
	FileName    = "my_library_filtered_data.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const dateFormat = "yyyy-mm-dd"

// ToXLSX renders t as a single-sheet workbook held in memory: one header row
// with the column names in schema order, then one row per loan.
func ToXLSX(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	fmtCode := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}

	columns := t.Columns()
	for j, col := range columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(SheetName, cell, col); err != nil {
			return nil, err
		}
	}

	for i := 0; i < t.Len(); i++ {
		l := t.Record(i)
		for j, col := range columns {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := writeCell(f, cell, l, col, dateStyle); err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeCell leaves absent values blank.
func writeCell(f *excelize.File, cell string, l *models.Loan, column string, dateStyle int) error {
	if d, ok := table.Date(l, column); ok {
		if err := f.SetCellValue(SheetName, cell, d); err != nil {
			return err
		}
		return f.SetCellStyle(SheetName, cell, cell, dateStyle)
	}
	if column == models.ColDaysOnLoan {
		if l.DaysOnLoan == nil {
			return nil
		}
		return f.SetCellFloat(SheetName, cell, *l.DaysOnLoan, -1, 64)
	}
	v := table.Text(l, column)
	if v == "" {
		return nil
	}
	return f.SetCellStr(SheetName, cell, v)
}
