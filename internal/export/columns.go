// Package export writes pricing reports as CSV or XLSX.
package export

import (
	"math"
	"strconv"

	"github.com/Alias1177/Pricer/internal/model"
)

// Columns is the header row shared by every export format.
var Columns = []string{
	"item_id", "item_name", "item_type", "my_quantity",
	"num_listings", "num_suspected_anchors", "regime", "clean_regime",
	"fast_sell_price", "fair_price", "greedy_price",
	"clean_q1_price", "clean_median_price", "clean_q3_price",
	"average_price_reported",
	"price_min", "amount_at_min", "price_max", "weighted_mean_all_units",
	"price_mean_20u", "cv_price", "total_stock",
	"gross_revenue", "market_fee", "net_revenue", "net_per_unit",
}

// ListingColumns is the header of the per-listing sheet.
var ListingColumns = []string{
	"item_id", "rank", "price", "quantity", "cum_qty", "cum_qty_pct",
	"robust_z", "is_extreme_price", "is_suspected_anchor",
}

func listingValues(itemID int64, l model.AnnotatedListing) []interface{} {
	return []interface{}{
		itemID, l.Rank, l.Price, l.Quantity, l.CumQty, l.CumQtyPct,
		num(l.RobustZ), l.IsExtremePrice, l.IsSuspectedAnchor,
	}
}

// values renders one report in column order. Missing numbers are nil.
func values(r model.Report) []interface{} {
	return []interface{}{
		r.ItemID, r.ItemName, r.ItemType, r.MyQuantity,
		r.NumListings, r.NumSuspectedAnchors, string(r.Regime), string(r.CleanRegime),
		num(r.FastSellPrice), num(r.FairPrice), num(r.GreedyPrice),
		num(r.CleanQ1Price), num(r.CleanMedianPrice), num(r.CleanQ3Price),
		optional(r.AveragePriceReported),
		num(r.KPI.MinPrice), r.KPI.AmountAtMin, num(r.KPI.MaxPrice), num(r.KPI.WeightedMean),
		num(r.KPI.MeanFirstUnits), num(r.KPI.CoefficientOfVar), r.KPI.TotalStock,
		num(r.FairRevenue.Gross), num(r.FairRevenue.Fee), num(r.FairRevenue.Net), num(r.FairRevenue.NetPerUnit),
	}
}

func num(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return num(*v)
}

// text renders a cell value for CSV.
func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
