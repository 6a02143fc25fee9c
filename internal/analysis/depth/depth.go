// Package depth locates each listing within the cumulative volume of its book.
package depth

import (
	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
)

// Profile sorts listings by ascending price (ties keep input order) and
// attaches the running quantity and its share of the book total. The share is
// zero for a book without quantity.
func Profile(listings []model.Listing) []model.AnnotatedListing {
	sorted := orderbook.SortedByPrice(listings)

	var total int64
	for _, l := range sorted {
		total += l.Quantity
	}

	profile := make([]model.AnnotatedListing, len(sorted))
	var cum int64
	for i, l := range sorted {
		cum += l.Quantity
		profile[i] = model.AnnotatedListing{Listing: l, CumQty: cum}
		if total > 0 {
			profile[i].CumQtyPct = float64(cum) / float64(total)
		}
	}

	return profile
}

// IsShallow reports whether a cumulative share sits in the thin front or back
// tail of the book.
func IsShallow(cumQtyPct, frontPct, backPct float64) bool {
	return cumQtyPct < frontPct || cumQtyPct > 1.0-backPct
}
