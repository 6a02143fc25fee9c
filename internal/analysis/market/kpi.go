package market

import (
	"math"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
)

// FirstUnitsDepth is how many of the cheapest units the entry-cost KPI buys.
const FirstUnitsDepth = 20

// CalculateKPI summarizes the raw book: extremes, volume-weighted mean,
// the cost of the first units, dispersion and total stock. Prices are NaN for
// an empty book.
func CalculateKPI(listings []model.Listing) model.BookKPI {
	nan := math.NaN()
	kpi := model.BookKPI{
		MinPrice:         nan,
		MaxPrice:         nan,
		WeightedMean:     nan,
		MeanFirstUnits:   nan,
		FirstUnitsCost:   nan,
		PriceRange:       nan,
		SpreadPct:        nan,
		CoefficientOfVar: nan,
	}
	if len(listings) == 0 {
		return kpi
	}

	kpi.MinPrice, kpi.MaxPrice = listings[0].Price, listings[0].Price
	kpi.AmountAtMin = listings[0].Quantity
	var weighted float64
	for _, l := range listings {
		if l.Price < kpi.MinPrice {
			kpi.MinPrice = l.Price
			kpi.AmountAtMin = l.Quantity
		}
		kpi.MaxPrice = math.Max(kpi.MaxPrice, l.Price)
		kpi.TotalStock += l.Quantity
		weighted += l.Price * float64(l.Quantity)
	}

	if kpi.TotalStock > 0 {
		kpi.WeightedMean = math.Ceil(weighted / float64(kpi.TotalStock))
	}

	kpi.MeanFirstUnits, kpi.UnitsUsed, kpi.FirstUnitsCost = meanFirstUnits(listings, FirstUnitsDepth)

	kpi.PriceRange = kpi.MaxPrice - kpi.MinPrice
	if kpi.MinPrice > 0 {
		kpi.SpreadPct = kpi.PriceRange / kpi.MinPrice
	}
	kpi.CoefficientOfVar = coefficientOfVariation(listings)

	return kpi
}

// meanFirstUnits walks the book from the cheapest listing buying up to n
// units and returns the rounded-up mean price, units bought and total cost.
func meanFirstUnits(listings []model.Listing, n int64) (float64, int64, float64) {
	remain := n
	var used int64
	var cost float64
	for _, l := range orderbook.SortedByPrice(listings) {
		if remain <= 0 {
			break
		}
		take := min(l.Quantity, remain)
		cost += l.Price * float64(take)
		used += take
		remain -= take
	}
	if used == 0 {
		return math.NaN(), 0, math.NaN()
	}
	return math.Ceil(cost / float64(used)), used, cost
}

// coefficientOfVariation is the sample standard deviation of listing prices
// over their mean. A single listing has none.
func coefficientOfVariation(listings []model.Listing) float64 {
	if len(listings) == 1 {
		return 0
	}

	var sum float64
	for _, l := range listings {
		sum += l.Price
	}
	mean := sum / float64(len(listings))
	if mean == 0 {
		return math.NaN()
	}

	var sq float64
	for _, l := range listings {
		d := l.Price - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(listings)-1))
	return std / mean
}
