// Package orderbook turns raw fixed-width listing slots into typed order books.
package orderbook

import (
	"math"
	"sort"

	"github.com/Alias1177/Pricer/internal/model"
)

// Normalize keeps the slots that carry a positive finite price and a positive
// quantity, in slot order. Rank is the 1-based slot index. Fractional
// quantities are truncated; a quantity that truncates to zero is dropped.
func Normalize(row model.MarketRow) model.ItemOrderBook {
	book := model.ItemOrderBook{ItemID: row.ItemID}

	for i, slot := range row.Slots {
		if slot.Price == nil || slot.Amount == nil {
			continue
		}
		price, amount := *slot.Price, *slot.Amount
		if !isFinite(price) || !isFinite(amount) || price <= 0 {
			continue
		}
		qty := int64(amount)
		if qty <= 0 {
			continue
		}
		book.Listings = append(book.Listings, model.Listing{
			ItemID:   row.ItemID,
			Price:    price,
			Quantity: qty,
			Rank:     i + 1,
		})
	}

	return book
}

// NormalizeAll normalizes every row, keeping input order.
func NormalizeAll(rows []model.MarketRow) []model.ItemOrderBook {
	books := make([]model.ItemOrderBook, len(rows))
	for i, row := range rows {
		books[i] = Normalize(row)
	}
	return books
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SortedByPrice returns a copy of listings in ascending price order. Equal
// prices keep their input order.
func SortedByPrice(listings []model.Listing) []model.Listing {
	sorted := make([]model.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	return sorted
}
