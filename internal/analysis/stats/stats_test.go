package stats

import (
	"math"
	"testing"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/stretchr/testify/assert"
)

func book(pairs ...float64) []model.Listing {
	listings := make([]model.Listing, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		listings = append(listings, model.Listing{
			ItemID:   1,
			Price:    pairs[i],
			Quantity: int64(pairs[i+1]),
			Rank:     i/2 + 1,
		})
	}
	return listings
}

func TestWeightedQuantile(t *testing.T) {
	listings := book(120, 10, 100, 30, 110, 60)

	tests := []struct {
		name     string
		q        float64
		expected float64
	}{
		{name: "below zero returns min", q: -0.5, expected: 100},
		{name: "zero returns min", q: 0, expected: 100},
		{name: "first quartile", q: 0.25, expected: 100},
		{name: "median", q: 0.5, expected: 110},
		{name: "third quartile", q: 0.75, expected: 110},
		{name: "upper tail", q: 0.95, expected: 120},
		{name: "one returns max", q: 1, expected: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeightedQuantile(listings, tt.q))
		})
	}

	assert.True(t, math.IsNaN(WeightedQuantile(nil, 0.5)))
}

func TestWeightedQuantileDoesNotReorderInput(t *testing.T) {
	listings := book(300, 1, 100, 1, 200, 1)
	_ = WeightedMedian(listings)
	assert.Equal(t, []float64{300, 100, 200}, Prices(listings))
}

func TestQuantileInterpolates(t *testing.T) {
	values := []float64{100, 200, 1000}

	assert.Equal(t, 200.0, Median(values))
	assert.Equal(t, 150.0, Quantile(values, 0.25))
	assert.Equal(t, 600.0, Quantile(values, 0.75))
	assert.Equal(t, 100.0, Quantile(values, 0))
	assert.Equal(t, 1000.0, Quantile(values, 1))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestEqualQuantitiesMatchPlainStatistics(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
	}{
		{name: "five listings", prices: []float64{50, 10, 40, 20, 30}},
		{name: "nine listings", prices: []float64{9, 1, 8, 2, 7, 3, 6, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pairs []float64
			for _, p := range tt.prices {
				pairs = append(pairs, p, 7)
			}
			listings := book(pairs...)

			assert.Equal(t, Median(tt.prices), WeightedMedian(listings))
			assert.Equal(t, Quantile(tt.prices, 0.25), WeightedQuantile(listings, 0.25))
			assert.Equal(t, Quantile(tt.prices, 0.75), WeightedQuantile(listings, 0.75))
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		listings []model.Listing
		expected Summary
	}{
		{
			name:     "flat market",
			listings: book(100, 10, 100, 10, 100, 10, 100, 10),
			expected: Summary{TotalQty: 40, Median: 100, Q1: 100, Q3: 100, IQR: 0, MAD: 0, Weighted: true},
		},
		{
			name: "tail decoy barely moves the spread",
			listings: book(
				100, 50, 102, 50, 105, 50, 108, 50, 110, 50,
				112, 50, 115, 50, 118, 50, 120, 50, 100000, 1,
			),
			expected: Summary{TotalQty: 451, Median: 110, Q1: 105, Q3: 115, IQR: 10, MAD: 5, Weighted: true},
		},
		{
			name:     "odd unit book",
			listings: book(1, 1, 2, 1, 3, 1, 4, 1, 100, 1),
			expected: Summary{TotalQty: 5, Median: 3, Q1: 2, Q3: 4, IQR: 2, MAD: 1, Weighted: true},
		},
		{
			name:     "even expansion averages the middle deviations",
			listings: book(10, 2, 20, 2),
			expected: Summary{TotalQty: 4, Median: 10, Q1: 10, Q3: 20, IQR: 10, MAD: 5, Weighted: true},
		},
		{
			name:     "no quantity falls back to plain statistics",
			listings: book(10, 0, 20, 0, 30, 0, 40, 0),
			expected: Summary{TotalQty: 0, Median: 25, Q1: 17.5, Q3: 32.5, IQR: 15, MAD: 10, Weighted: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.listings))
		})
	}
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe(nil)
	assert.True(t, math.IsNaN(s.Median))
	assert.True(t, math.IsNaN(s.MAD))
	assert.Zero(t, s.TotalQty)
}

func TestRobustZ(t *testing.T) {
	s := Summary{Median: 110, MAD: 5}
	assert.InDelta(t, 0.6745*2, RobustZ(120, s), 1e-12)
	assert.InDelta(t, -0.6745*2, RobustZ(100, s), 1e-12)
	assert.InDelta(t, 13475.161, RobustZ(100000, s), 1e-3)

	flat := Summary{Median: 100, MAD: 0}
	assert.Zero(t, RobustZ(100000, flat))
}

func TestScore(t *testing.T) {
	s := Summary{Median: 110, MAD: 5}
	input := []model.AnnotatedListing{
		{Listing: model.Listing{Price: 110}},
		{Listing: model.Listing{Price: 140}},
		{Listing: model.Listing{Price: 100000}},
	}

	scored := Score(input, s, 3.0)

	assert.Zero(t, scored[0].RobustZ)
	assert.False(t, scored[0].IsExtremePrice)
	assert.InDelta(t, 4.047, scored[1].RobustZ, 1e-9)
	assert.True(t, scored[1].IsExtremePrice)
	assert.True(t, scored[2].IsExtremePrice)
	assert.Zero(t, input[2].RobustZ)
}
