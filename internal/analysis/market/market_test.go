package market

import (
	"math"
	"testing"

	"github.com/Alias1177/Pricer/internal/analysis/depth"
	"github.com/Alias1177/Pricer/internal/analysis/stats"
	"github.com/Alias1177/Pricer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(pairs ...float64) []model.Listing {
	listings := make([]model.Listing, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		listings = append(listings, model.Listing{
			ItemID:   9,
			Price:    pairs[i],
			Quantity: int64(pairs[i+1]),
			Rank:     i/2 + 1,
		})
	}
	return listings
}

// annotate runs the stages that precede anchor detection.
func annotate(listings []model.Listing, th model.Thresholds) ([]model.AnnotatedListing, stats.Summary) {
	summary := stats.Describe(listings)
	return stats.Score(depth.Profile(listings), summary, th.ExtremeZ), summary
}

func decoyBook() []model.Listing {
	return book(
		100, 50, 102, 50, 105, 50, 108, 50, 110, 50,
		112, 50, 115, 50, 118, 50, 120, 50, 100000, 1,
	)
}

func TestClassifyMarketRegime(t *testing.T) {
	th := model.DefaultThresholds()

	tests := []struct {
		name      string
		listings  []model.Listing
		expected  model.MarketRegime
		totalQty  int64
		maxShare  float64
		numLevels int
	}{
		{
			name:      "thin book",
			listings:  book(100, 5, 200, 5, 1000, 5),
			expected:  model.RegimeExclusive,
			totalQty:  15,
			maxShare:  1.0 / 3.0,
			numLevels: 3,
		},
		{
			name:      "deep book without a dominant level",
			listings:  decoyBook(),
			expected:  model.RegimeNormal,
			totalQty:  451,
			maxShare:  50.0 / 451.0,
			numLevels: 10,
		},
		{
			name:      "dominant level",
			listings:  book(100, 300, 110, 100, 120, 100),
			expected:  model.RegimeExclusive,
			totalQty:  500,
			maxShare:  0.6,
			numLevels: 3,
		},
		{
			name:      "dominance boundary is inclusive",
			listings:  book(100, 150, 110, 150),
			expected:  model.RegimeExclusive,
			totalQty:  300,
			maxShare:  0.5,
			numLevels: 2,
		},
		{
			name:      "volume boundary is inclusive",
			listings:  book(100, 50, 101, 50, 102, 50, 103, 50),
			expected:  model.RegimeExclusive,
			totalQty:  200,
			maxShare:  0.25,
			numLevels: 4,
		},
		{
			name:      "just above the volume boundary",
			listings:  book(100, 67, 101, 67, 102, 67),
			expected:  model.RegimeNormal,
			totalQty:  201,
			maxShare:  1.0 / 3.0,
			numLevels: 3,
		},
		{
			name:      "split listings at one price form one level",
			listings:  book(100, 120, 150, 50, 100, 130),
			expected:  model.RegimeExclusive,
			totalQty:  300,
			maxShare:  250.0 / 300.0,
			numLevels: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := ClassifyMarketRegime(tt.listings, th)
			assert.Equal(t, tt.expected, analysis.Regime)
			assert.Equal(t, tt.totalQty, analysis.TotalQty)
			assert.InDelta(t, tt.maxShare, analysis.MaxLevelShare, 1e-12)
			assert.Len(t, analysis.Levels, tt.numLevels)
		})
	}
}

func TestClassifyMarketRegimeEmpty(t *testing.T) {
	analysis := ClassifyMarketRegime(nil, model.DefaultThresholds())
	assert.Equal(t, model.RegimeExclusive, analysis.Regime)
	assert.Zero(t, analysis.MaxLevelShare)
}

func TestPriceLevelsSorted(t *testing.T) {
	levels := PriceLevels(book(300, 1, 100, 2, 200, 3, 100, 4))
	assert.Equal(t, []model.PriceLevel{
		{Price: 100, Quantity: 6},
		{Price: 200, Quantity: 3},
		{Price: 300, Quantity: 1},
	}, levels)
}

func TestDetectAnchors(t *testing.T) {
	th := model.DefaultThresholds()

	tests := []struct {
		name          string
		listings      []model.Listing
		expectedCount int
		flaggedPrices []float64
	}{
		{
			name:          "normal book tail decoy",
			listings:      decoyBook(),
			expectedCount: 1,
			flaggedPrices: []float64{100000},
		},
		{
			name: "normal book large tail listing is kept",
			listings: book(
				100, 50, 102, 50, 105, 50, 108, 50, 110, 50,
				112, 50, 115, 50, 118, 50, 120, 50, 100000, 60,
			),
			expectedCount: 0,
		},
		{
			name:          "exclusive book small overpriced listing",
			listings:      book(100, 5, 110, 5, 5000, 1),
			expectedCount: 1,
			flaggedPrices: []float64{5000},
		},
		{
			name:          "exclusive book keeps a deep wall but flags the tail",
			listings:      book(100, 150, 5000, 60, 6000, 60),
			expectedCount: 1,
			flaggedPrices: []float64{6000},
		},
		{
			name: "normal book tail listing of exactly 50 units is kept",
			listings: book(
				100, 50, 102, 50, 105, 50, 108, 50, 110, 50,
				112, 50, 115, 50, 118, 50, 120, 50, 100000, 50,
			),
			expectedCount: 0,
		},
		{
			name:          "exclusive book flags a mid-book listing of exactly 50 units",
			listings:      book(100, 150, 5000, 50, 6000, 60),
			expectedCount: 2,
			flaggedPrices: []float64{5000, 6000},
		},
		{
			name: "normal book cheap front decoy",
			listings: book(
				1, 1, 100, 50, 102, 50, 105, 50, 108, 50, 110, 50,
				112, 50, 115, 50, 118, 50, 120, 50,
			),
			expectedCount: 1,
			flaggedPrices: []float64{1},
		},
		{
			name:          "single listing cannot flag itself",
			listings:      book(500, 1),
			expectedCount: 0,
		},
		{
			name:          "flat book",
			listings:      book(100, 10, 100, 10, 100, 10, 100, 10, 100, 10),
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, summary := annotate(tt.listings, th)
			regime := ClassifyMarketRegime(tt.listings, th).Regime

			flagged, count := DetectAnchors(profile, summary.Median, regime, th)
			require.Len(t, flagged, len(tt.listings))
			assert.Equal(t, tt.expectedCount, count)

			var prices []float64
			for _, l := range flagged {
				if l.IsSuspectedAnchor {
					prices = append(prices, l.Price)
				}
			}
			assert.Equal(t, tt.flaggedPrices, prices)

			for _, l := range profile {
				assert.False(t, l.IsSuspectedAnchor, "input profile must stay unflagged")
			}
		})
	}
}

func TestDetectAnchorsUsesGivenRegime(t *testing.T) {
	th := model.DefaultThresholds()
	listings := book(100, 5, 110, 5, 5000, 1)
	profile, summary := annotate(listings, th)

	// Under the Normal rule the MAD-based z decides; the median rule is not applied.
	_, exclusiveCount := DetectAnchors(profile, summary.Median, model.RegimeExclusive, th)
	_, normalCount := DetectAnchors(profile, summary.Median, model.RegimeNormal, th)

	assert.Equal(t, 1, exclusiveCount)
	assert.Equal(t, 1, normalCount)

	th.ZThreshold = math.Inf(1)
	_, normalCount = DetectAnchors(profile, summary.Median, model.RegimeNormal, th)
	assert.Zero(t, normalCount)
	_, exclusiveCount = DetectAnchors(profile, summary.Median, model.RegimeExclusive, th)
	assert.Equal(t, 1, exclusiveCount)
}

func TestCleanListings(t *testing.T) {
	profile := []model.AnnotatedListing{
		{Listing: model.Listing{Price: 1, Rank: 1}},
		{Listing: model.Listing{Price: 2, Rank: 2}, IsSuspectedAnchor: true},
	}
	clean := CleanListings(profile)
	require.Len(t, clean, 1)
	assert.Equal(t, 1, clean[0].Rank)

	allFlagged := []model.AnnotatedListing{
		{Listing: model.Listing{Price: 1, Rank: 1}, IsSuspectedAnchor: true},
		{Listing: model.Listing{Price: 2, Rank: 2}, IsSuspectedAnchor: true},
	}
	assert.Len(t, CleanListings(allFlagged), 2)
	assert.Empty(t, CleanListings(nil))
}

func TestCalculateKPI(t *testing.T) {
	kpi := CalculateKPI(book(120, 10, 100, 30, 110, 60))

	assert.Equal(t, 100.0, kpi.MinPrice)
	assert.Equal(t, int64(30), kpi.AmountAtMin)
	assert.Equal(t, 120.0, kpi.MaxPrice)
	assert.Equal(t, 108.0, kpi.WeightedMean)
	assert.Equal(t, 100.0, kpi.MeanFirstUnits)
	assert.Equal(t, int64(20), kpi.UnitsUsed)
	assert.Equal(t, 2000.0, kpi.FirstUnitsCost)
	assert.Equal(t, 20.0, kpi.PriceRange)
	assert.InDelta(t, 0.2, kpi.SpreadPct, 1e-12)
	assert.InDelta(t, 10.0/110.0, kpi.CoefficientOfVar, 1e-12)
	assert.Equal(t, int64(100), kpi.TotalStock)
}

func TestCalculateKPIPartialDepth(t *testing.T) {
	kpi := CalculateKPI(book(10, 3, 11, 4))
	assert.Equal(t, int64(7), kpi.UnitsUsed)
	assert.Equal(t, 74.0, kpi.FirstUnitsCost)
	assert.Equal(t, 11.0, kpi.MeanFirstUnits) // ceil(74/7)
}

func TestCalculateKPIEdgeCases(t *testing.T) {
	empty := CalculateKPI(nil)
	assert.True(t, math.IsNaN(empty.MinPrice))
	assert.True(t, math.IsNaN(empty.MeanFirstUnits))
	assert.Zero(t, empty.TotalStock)

	single := CalculateKPI(book(50, 2))
	assert.Zero(t, single.CoefficientOfVar)
	assert.Zero(t, single.PriceRange)
}
