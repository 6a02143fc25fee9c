package model

import "math"

// PriceSuggestion is the pricing result for one item. Price fields are NaN
// when the item has no listings.
type PriceSuggestion struct {
	ItemID              int64        `json:"item_id"`
	NumListings         int          `json:"num_listings"`
	NumSuspectedAnchors int          `json:"num_suspected_anchors"`
	FastSellPrice       float64      `json:"fast_sell_price"`
	FairPrice           float64      `json:"fair_price"`
	GreedyPrice         float64      `json:"greedy_price"`
	CleanQ1Price        float64      `json:"clean_q1_price"`
	CleanMedianPrice    float64      `json:"clean_median_price"`
	CleanQ3Price        float64      `json:"clean_q3_price"`
	Regime              MarketRegime `json:"regime,omitempty"`
	CleanRegime         MarketRegime `json:"clean_regime,omitempty"`
}

// NoDataSuggestion returns the sentinel record for an item without listings.
func NoDataSuggestion(itemID int64, numListings, numAnchors int) PriceSuggestion {
	nan := math.NaN()
	return PriceSuggestion{
		ItemID:              itemID,
		NumListings:         numListings,
		NumSuspectedAnchors: numAnchors,
		FastSellPrice:       nan,
		FairPrice:           nan,
		GreedyPrice:         nan,
		CleanQ1Price:        nan,
		CleanMedianPrice:    nan,
		CleanQ3Price:        nan,
	}
}

// HasData reports whether the suggestion carries real prices.
func (s PriceSuggestion) HasData() bool {
	return !math.IsNaN(s.FairPrice)
}

// Revenue is the fee-adjusted proceeds of selling a quantity at one price.
type Revenue struct {
	Price      float64 `json:"price"`
	Gross      float64 `json:"gross"`
	Fee        float64 `json:"fee"`
	Net        float64 `json:"net"`
	NetPerUnit float64 `json:"net_per_unit"`
}

// BookKPI holds descriptive figures for a raw book.
type BookKPI struct {
	MinPrice         float64 `json:"price_min"`
	AmountAtMin      int64   `json:"amount_at_min"`
	MaxPrice         float64 `json:"price_max"`
	WeightedMean     float64 `json:"weighted_mean_all_units"`
	MeanFirstUnits   float64 `json:"price_mean_20u"`
	UnitsUsed        int64   `json:"units_used_for_20u"`
	FirstUnitsCost   float64 `json:"depth20_total_cost"`
	PriceRange       float64 `json:"price_range"`
	SpreadPct        float64 `json:"spread_pct"`
	CoefficientOfVar float64 `json:"cv_price"`
	TotalStock       int64   `json:"total_stock"`
}

// Report is the exported row for one item.
type Report struct {
	PriceSuggestion
	ItemName             string   `json:"item_name"`
	ItemType             string   `json:"item_type"`
	AveragePriceReported *float64 `json:"average_price_reported"`
	MyQuantity           int      `json:"my_quantity"`
	KPI                  BookKPI  `json:"kpi"`
	FairRevenue          Revenue  `json:"fair_revenue"`

	// Listings is the scored and flagged book in ascending price order.
	Listings []AnnotatedListing `json:"listings,omitempty"`
}
