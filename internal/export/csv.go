package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Alias1177/Pricer/internal/model"
)

// utf8BOM lets spreadsheet software detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM, the header and one row per report. Missing prices
// are empty cells.
func WriteCSV(w io.Writer, reports []model.Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(Columns))
	for _, r := range reports {
		for i, v := range values(r) {
			record[i] = text(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write item %d: %w", r.ItemID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
