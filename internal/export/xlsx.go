// Package export renders transaction listings as Excel workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []string{"Title", "Amount", "Category", "Date"}

// Filename is the attachment name offered for a kind's download.
func Filename(k core.Kind) string {
	return k.Plural() + ".xlsx"
}

// Workbook renders txs onto a single sheet named after the kind.
func Workbook(kind core.Kind, txs []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheets.TabName(kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{tx.Title, tx.Amount.Float64(), tx.Category, tx.Date.UTC().Format(core.DayLayout)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "D", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
