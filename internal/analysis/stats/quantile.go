// Package stats provides quantity-weighted and plain order statistics over
// order-book listings.
package stats

import (
	"math"
	"sort"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
)

// WeightedQuantile returns the price at the first listing, in ascending price
// order, whose cumulative quantity reaches q of the total. q <= 0 yields the
// minimum price and q >= 1 the maximum. Returns NaN for no listings.
func WeightedQuantile(listings []model.Listing, q float64) float64 {
	if len(listings) == 0 {
		return math.NaN()
	}

	sorted := orderbook.SortedByPrice(listings)
	if q <= 0 {
		return sorted[0].Price
	}
	if q >= 1 {
		return sorted[len(sorted)-1].Price
	}

	var total int64
	for _, l := range sorted {
		total += l.Quantity
	}
	target := q * float64(total)

	var cum int64
	for _, l := range sorted {
		cum += l.Quantity
		if float64(cum) >= target {
			return l.Price
		}
	}
	return sorted[len(sorted)-1].Price
}

// WeightedMedian is WeightedQuantile at one half.
func WeightedMedian(listings []model.Listing) float64 {
	return WeightedQuantile(listings, 0.5)
}

// Quantile returns the q-quantile of values with linear interpolation between
// the closest order statistics. Returns NaN for no values.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median is Quantile at one half; even counts average the two middle values.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Prices extracts the listing prices in input order.
func Prices(listings []model.Listing) []float64 {
	prices := make([]float64, len(listings))
	for i, l := range listings {
		prices[i] = l.Price
	}
	return prices
}
