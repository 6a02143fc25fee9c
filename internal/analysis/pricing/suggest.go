// Package pricing turns an anchor-flagged book into fast-sell, fair and
// greedy price suggestions.
package pricing

import (
	"math"

	"github.com/Alias1177/Pricer/internal/analysis/market"
	"github.com/Alias1177/Pricer/internal/analysis/stats"
	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
)

// Suggest prices one item from its flagged depth profile. regime is the
// full-book regime and is only carried through as a diagnostic; the pricing
// formulas use the regime of the cleaned book.
func Suggest(itemID int64, flagged []model.AnnotatedListing, regime model.MarketRegime, th model.Thresholds) model.PriceSuggestion {
	if len(flagged) == 0 {
		return model.NoDataSuggestion(itemID, 0, 0)
	}

	anchors := 0
	for _, l := range flagged {
		if l.IsSuspectedAnchor {
			anchors++
		}
	}

	clean := market.CleanListings(flagged)
	cleanRegime := market.ClassifyMarketRegime(clean, th).Regime

	s := model.PriceSuggestion{
		ItemID:              itemID,
		NumListings:         len(flagged),
		NumSuspectedAnchors: anchors,
		Regime:              regime,
		CleanRegime:         cleanRegime,
	}

	if cleanRegime.IsExclusive() {
		prices := stats.Prices(clean)
		s.FairPrice = stats.Median(prices)
		s.CleanQ1Price = stats.Quantile(prices, 0.25)
		s.CleanQ3Price = stats.Quantile(prices, 0.75)
	} else {
		s.FairPrice = stats.WeightedMedian(clean)
		s.CleanQ1Price = stats.WeightedQuantile(clean, 0.25)
		s.CleanQ3Price = stats.WeightedQuantile(clean, 0.75)
	}
	s.GreedyPrice = s.CleanQ3Price
	s.CleanMedianPrice = s.FairPrice

	s.FastSellPrice = FastSell(RawFastSell(clean, cleanRegime, th))

	return s
}

// RawFastSell picks the book level a quick sale should undercut.
//
// Exclusive books use the ExclusiveFastIndex-th cheapest listing. Normal
// books with a low average quantity per listing use the
// FastSellListings-th cheapest listing; bulk books use the first price whose
// cumulative quantity reaches FastSellUnits. Indexes clamp to the first and last
// listing. Returns NaN for no listings.
func RawFastSell(clean []model.Listing, regime model.MarketRegime, th model.Thresholds) float64 {
	if len(clean) == 0 {
		return math.NaN()
	}
	sorted := orderbook.SortedByPrice(clean)
	last := len(sorted) - 1

	if regime.IsExclusive() {
		return sorted[min(max(th.ExclusiveFastIndex, 1)-1, last)].Price
	}

	var total int64
	for _, l := range sorted {
		total += l.Quantity
	}

	avgQty := float64(total) / float64(len(sorted))
	if avgQty <= th.UnitStyleMaxAvgQty {
		return sorted[min(max(th.FastSellListings, 1), len(sorted))-1].Price
	}

	target := math.Min(th.FastSellUnits, float64(total))
	var cum int64
	for _, l := range sorted {
		cum += l.Quantity
		if float64(cum) >= target {
			return l.Price
		}
	}
	return sorted[last].Price
}

// FastSell undercuts a raw level by one currency unit after flooring,
// never going below zero. NaN passes through.
func FastSell(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return math.NaN()
	}
	return math.Max(math.Floor(raw)-1, 0)
}
