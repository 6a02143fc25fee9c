package model

// Thresholds holds the heuristic cutoffs used by anchor detection, regime
// classification and fast-sell pricing. They are empirical and tunable.
type Thresholds struct {
	ZThreshold              float64 `envconfig:"Z_THRESHOLD" default:"5.0" validate:"gt=0"`
	ExtremeZ                float64 `envconfig:"EXTREME_Z" default:"3.0" validate:"gt=0"`
	FrontDepthPct           float64 `envconfig:"FRONT_DEPTH_PCT" default:"0.02" validate:"gte=0,lte=1"`
	BackDepthPct            float64 `envconfig:"BACK_DEPTH_PCT" default:"0.02" validate:"gte=0,lte=1"`
	AnchorMaxUnits          float64 `envconfig:"ANCHOR_MAX_UNITS" default:"50" validate:"gte=0"`
	ExclusiveTotalUnits     float64 `envconfig:"EXCLUSIVE_TOTAL_UNITS" default:"200" validate:"gte=0"`
	ExclusiveDominanceShare float64 `envconfig:"EXCLUSIVE_DOMINANCE_SHARE" default:"0.50" validate:"gt=0,lte=1"`
	ExclusiveHighFactor     float64 `envconfig:"EXCLUSIVE_HIGH_FACTOR" default:"10" validate:"gt=1"`
	ExclusiveFastIndex      int     `envconfig:"EXCLUSIVE_FAST_INDEX" default:"3" validate:"gte=1"`
	FastSellListings        int     `envconfig:"FAST_SELL_LISTINGS" default:"10" validate:"gte=1"`
	FastSellUnits           float64 `envconfig:"FAST_SELL_UNITS" default:"100" validate:"gt=0"`
	UnitStyleMaxAvgQty      float64 `envconfig:"UNIT_STYLE_MAX_AVG_QTY" default:"2.0" validate:"gt=0"`
}

// DefaultThresholds returns the tuned production values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ZThreshold:              5.0,
		ExtremeZ:                3.0,
		FrontDepthPct:           0.02,
		BackDepthPct:            0.02,
		AnchorMaxUnits:          50,
		ExclusiveTotalUnits:     200,
		ExclusiveDominanceShare: 0.50,
		ExclusiveHighFactor:     10,
		ExclusiveFastIndex:      3,
		FastSellListings:        10,
		FastSellUnits:           100,
		UnitStyleMaxAvgQty:      2.0,
	}
}
