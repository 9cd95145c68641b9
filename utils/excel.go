package utils

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter maintains a report workbook with one sheet per derived table.
// Sheets are rewritten wholesale on every update; the tables are small.
type ExcelWriter struct {
	filePath string
	file     *excelize.File
}

func NewExcelWriter(filePath string) (*ExcelWriter, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			f = excelize.NewFile()
		} else {
			return nil, fmt.Errorf("error opening Excel file: %w", err)
		}
	}
	return &ExcelWriter{filePath: filePath, file: f}, nil
}

// WriteSheet replaces the named sheet with a header row followed by the data
// rows.
func (w *ExcelWriter) WriteSheet(sheet string, headers []string, rows [][]interface{}) error {
	// Sheet names are capped at 31 chars by the format.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	if idx, _ := w.file.GetSheetIndex(sheet); idx >= 0 {
		if err := w.file.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("error clearing sheet %s: %w", sheet, err)
		}
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.file.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("error writing header %s: %w", h, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := w.file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("error writing cell %s!%s: %w", sheet, cell, err)
			}
		}
	}

	// Drop the default sheet once real content exists.
	if sheet != "Sheet1" {
		if idx, _ := w.file.GetSheetIndex("Sheet1"); idx >= 0 {
			w.file.DeleteSheet("Sheet1")
		}
	}
	return nil
}

func (w *ExcelWriter) Save() error {
	if err := w.file.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("error saving Excel file: %w", err)
	}
	return nil
}

func (w *ExcelWriter) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
