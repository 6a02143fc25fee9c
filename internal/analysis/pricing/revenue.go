package pricing

import (
	"math"

	"github.com/Alias1177/Pricer/internal/model"
)

// DefaultMarketFee is the marketplace's cut of every sale.
const DefaultMarketFee = 0.05

// Revenue computes the proceeds of selling qty units at price. The price is
// truncated to whole currency units and the fee is rounded up. Every figure
// is NaN when there is no usable price or quantity.
func Revenue(price float64, qty int, feeRate float64) model.Revenue {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || qty <= 0 {
		nan := math.NaN()
		return model.Revenue{Price: nan, Gross: nan, Fee: nan, Net: nan, NetPerUnit: nan}
	}

	unit := math.Trunc(price)
	gross := unit * float64(qty)
	fee := math.Ceil(gross * feeRate)
	net := gross - fee

	return model.Revenue{
		Price:      unit,
		Gross:      gross,
		Fee:        fee,
		Net:        net,
		NetPerUnit: math.Ceil(net / float64(qty)),
	}
}
