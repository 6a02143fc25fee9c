package orderbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Alias1177/Pricer/internal/model"
)

const utf8BOM = "\ufeff"

type wideLayout struct {
	itemID, itemName, itemType, averagePrice, myQuantity int
	prices, amounts                                      map[int]int // slot index -> column
	slots                                                int
}

// ReadWideCSV parses a wide snapshot table: one row per item with
// price_1..price_K and amount_1..amount_K columns. Blank or non-numeric cells
// become absent slots.
func ReadWideCSV(r io.Reader) ([]model.MarketRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading header: empty input")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	layout, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []model.MarketRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		row, err := layout.row(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseHeader(header []string) (*wideLayout, error) {
	layout := &wideLayout{
		itemID: -1, itemName: -1, itemType: -1, averagePrice: -1, myQuantity: -1,
		prices:  make(map[int]int),
		amounts: make(map[int]int),
	}

	for col, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
		switch {
		case name == "item_id":
			layout.itemID = col
		case name == "item_name":
			layout.itemName = col
		case name == "item_type":
			layout.itemType = col
		case name == "average_price":
			layout.averagePrice = col
		case name == "my_quantity":
			layout.myQuantity = col
		case strings.HasPrefix(name, "price_"):
			if idx, ok := slotIndex(name, "price_"); ok {
				layout.prices[idx] = col
				layout.slots = max(layout.slots, idx)
			}
		case strings.HasPrefix(name, "amount_"):
			if idx, ok := slotIndex(name, "amount_"); ok {
				layout.amounts[idx] = col
				layout.slots = max(layout.slots, idx)
			}
		}
	}

	if layout.itemID < 0 {
		return nil, fmt.Errorf("header is missing item_id column")
	}
	return layout, nil
}

func slotIndex(name, prefix string) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}

func (l *wideLayout) row(record []string) (model.MarketRow, error) {
	cell := func(col int) string {
		if col < 0 || col >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[col])
	}

	idText := cell(l.itemID)
	itemID, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(idText, 64)
		if ferr != nil {
			return model.MarketRow{}, fmt.Errorf("invalid item_id %q", idText)
		}
		itemID = int64(f)
	}

	row := model.MarketRow{
		ItemID:       itemID,
		ItemName:     cell(l.itemName),
		ItemType:     cell(l.itemType),
		AveragePrice: parseOptionalFloat(cell(l.averagePrice)),
		MyQuantity:   1,
		Slots:        make([]model.Slot, l.slots),
	}
	if q := parseOptionalFloat(cell(l.myQuantity)); q != nil && *q > 0 {
		row.MyQuantity = int(*q)
	}

	for i := 1; i <= l.slots; i++ {
		slot := model.Slot{}
		if col, ok := l.prices[i]; ok {
			slot.Price = parseOptionalFloat(cell(col))
		}
		if col, ok := l.amounts[i]; ok {
			slot.Amount = parseOptionalFloat(cell(col))
		}
		row.Slots[i-1] = slot
	}

	return row, nil
}

func parseOptionalFloat(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// WriteWideCSV writes rows in the layout ReadWideCSV accepts, padding every
// row to the same number of slots.
func WriteWideCSV(w io.Writer, rows []model.MarketRow) error {
	slots := 0
	for _, row := range rows {
		slots = max(slots, len(row.Slots))
	}

	header := []string{"item_id", "item_name", "item_type", "average_price", "my_quantity"}
	for i := 1; i <= slots; i++ {
		header = append(header, fmt.Sprintf("price_%d", i), fmt.Sprintf("amount_%d", i))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ItemID, 10),
			row.ItemName,
			row.ItemType,
			formatOptionalFloat(row.AveragePrice),
			strconv.Itoa(row.MyQuantity),
		}
		for i := 0; i < slots; i++ {
			var slot model.Slot
			if i < len(row.Slots) {
				slot = row.Slots[i]
			}
			record = append(record, formatOptionalFloat(slot.Price), formatOptionalFloat(slot.Amount))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing item %d: %w", row.ItemID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
