package market

import (
	"sort"

	"github.com/Alias1177/Pricer/internal/model"
)

// RegimeAnalysis is the regime of one book together with the figures it was
// derived from.
type RegimeAnalysis struct {
	Regime        model.MarketRegime `json:"regime"`
	TotalQty      int64              `json:"total_qty"`
	MaxLevelShare float64            `json:"max_level_share"`
	Levels        []model.PriceLevel `json:"levels"`
}

// PriceLevels aggregates quantity by exact price, ascending.
func PriceLevels(listings []model.Listing) []model.PriceLevel {
	byPrice := make(map[float64]int64, len(listings))
	for _, l := range listings {
		byPrice[l.Price] += l.Quantity
	}

	levels := make([]model.PriceLevel, 0, len(byPrice))
	for price, qty := range byPrice {
		levels = append(levels, model.PriceLevel{Price: price, Quantity: qty})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
	return levels
}

// ClassifyMarketRegime labels a book Exclusive when its total volume is small
// or a single price level holds a dominant share of it, and Normal otherwise.
//
// The pricing pipeline calls this twice: on the full book to parameterize
// anchor detection, and on the cleaned book to pick the pricing formulas. The
// two answers may differ.
func ClassifyMarketRegime(listings []model.Listing, th model.Thresholds) *RegimeAnalysis {
	analysis := &RegimeAnalysis{
		Regime: model.RegimeNormal,
		Levels: PriceLevels(listings),
	}

	var maxLevel int64
	for _, level := range analysis.Levels {
		analysis.TotalQty += level.Quantity
		if level.Quantity > maxLevel {
			maxLevel = level.Quantity
		}
	}
	if analysis.TotalQty > 0 {
		analysis.MaxLevelShare = float64(maxLevel) / float64(analysis.TotalQty)
	}

	if float64(analysis.TotalQty) <= th.ExclusiveTotalUnits ||
		analysis.MaxLevelShare >= th.ExclusiveDominanceShare {
		analysis.Regime = model.RegimeExclusive
	}

	return analysis
}
