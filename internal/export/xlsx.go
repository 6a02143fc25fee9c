package export

import (
	"fmt"
	"io"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the worksheet holding the report rows.
	SheetName = "Prices"
	// ListingsSheetName holds every listing with its anchor diagnostics.
	ListingsSheetName = "Listings"
)

// WriteXLSX writes the reports to the Prices sheet and their listings to the
// Listings sheet, each with a bold header row. Missing prices are blank
// cells.
func WriteXLSX(w io.Writer, reports []model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(ListingsSheetName); err != nil {
		return fmt.Errorf("failed to add listings sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, len(reports))
	var listings [][]interface{}
	for i, r := range reports {
		rows[i] = values(r)
		for _, l := range r.Listings {
			listings = append(listings, listingValues(r.ItemID, l))
		}
	}

	if err := writeSheet(f, SheetName, Columns, rows, bold); err != nil {
		return err
	}
	if err := writeSheet(f, ListingsSheetName, ListingColumns, listings, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s headers: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s headers: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 14); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return nil
}
