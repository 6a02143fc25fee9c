package stats

import (
	"math"
	"sort"

	"github.com/Alias1177/Pricer/internal/model"
)

// madScale makes the MAD-based z-score comparable to a normal z-score.
const madScale = 0.6745

// Summary holds the robust location and spread of one book.
type Summary struct {
	TotalQty int64
	Median   float64
	Q1       float64
	Q3       float64
	IQR      float64
	MAD      float64
	Weighted bool // false when the book had no quantity and plain statistics were used
}

// Describe computes the quantity-weighted median, quartiles and MAD of a
// book. A book without quantity falls back to plain statistics over prices.
func Describe(listings []model.Listing) Summary {
	s := Summary{Median: math.NaN(), Q1: math.NaN(), Q3: math.NaN(), IQR: math.NaN(), MAD: math.NaN()}
	if len(listings) == 0 {
		return s
	}

	for _, l := range listings {
		s.TotalQty += l.Quantity
	}

	if s.TotalQty <= 0 {
		prices := Prices(listings)
		s.Median = Median(prices)
		s.Q1 = Quantile(prices, 0.25)
		s.Q3 = Quantile(prices, 0.75)
		deviations := make([]float64, len(prices))
		for i, p := range prices {
			deviations[i] = math.Abs(p - s.Median)
		}
		s.MAD = Median(deviations)
	} else {
		s.Weighted = true
		s.Median = WeightedMedian(listings)
		s.Q1 = WeightedQuantile(listings, 0.25)
		s.Q3 = WeightedQuantile(listings, 0.75)
		s.MAD = expandedMAD(listings, s.Median)
	}

	s.IQR = s.Q3 - s.Q1
	return s
}

// expandedMAD is the median absolute deviation of the multiset holding
// quantity copies of each price, without materializing the copies.
func expandedMAD(listings []model.Listing, median float64) float64 {
	type dev struct {
		value float64
		count int64
	}

	devs := make([]dev, 0, len(listings))
	var n int64
	for _, l := range listings {
		if l.Quantity <= 0 {
			continue
		}
		devs = append(devs, dev{value: math.Abs(l.Price - median), count: l.Quantity})
		n += l.Quantity
	}
	if n == 0 {
		return 0
	}

	sort.SliceStable(devs, func(i, j int) bool { return devs[i].value < devs[j].value })

	// at returns the k-th smallest element (0-based) of the expanded multiset.
	at := func(k int64) float64 {
		var cum int64
		for _, d := range devs {
			cum += d.count
			if k < cum {
				return d.value
			}
		}
		return devs[len(devs)-1].value
	}

	if n%2 == 1 {
		return at(n / 2)
	}
	return (at(n/2-1) + at(n/2)) / 2
}

// RobustZ scores a price against the book median in MAD units. A flat book
// (MAD of zero) scores every price as zero.
func RobustZ(price float64, s Summary) float64 {
	if !(s.MAD > 0) {
		return 0
	}
	return madScale * (price - s.Median) / s.MAD
}

// Score fills RobustZ and IsExtremePrice on a copy of the annotated listings.
// The extreme flag is a diagnostic and feeds no other rule.
func Score(listings []model.AnnotatedListing, s Summary, extremeZ float64) []model.AnnotatedListing {
	scored := make([]model.AnnotatedListing, len(listings))
	for i, l := range listings {
		l.RobustZ = RobustZ(l.Price, s)
		l.IsExtremePrice = math.Abs(l.RobustZ) > extremeZ
		scored[i] = l
	}
	return scored
}
