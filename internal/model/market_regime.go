package model

// MarketRegime classifies how thin or single-price-dominated a book is.
type MarketRegime string

const (
	RegimeNormal    MarketRegime = "NORMAL"
	RegimeExclusive MarketRegime = "EXCLUSIVE"
)

func (r MarketRegime) String() string {
	if r == "" {
		return "NO_DATA"
	}
	return string(r)
}

// IsExclusive reports whether the book is thin or dominated by one price level.
func (r MarketRegime) IsExclusive() bool {
	return r == RegimeExclusive
}

// PriceLevel aggregates the quantity listed at one exact price.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}
