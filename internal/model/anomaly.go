package model

// AnnotatedListing is a Listing together with the diagnostics derived for it
// in a single evaluation pass.
type AnnotatedListing struct {
	Listing
	RobustZ           float64 `json:"robust_z"`
	IsExtremePrice    bool    `json:"is_extreme_price"` // |z| above the extreme cutoff, diagnostic only
	CumQty            int64   `json:"cum_qty"`
	CumQtyPct         float64 `json:"cum_qty_pct"`
	IsSuspectedAnchor bool    `json:"is_suspected_anchor"`
}
