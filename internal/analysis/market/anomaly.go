package market

import (
	"math"

	"github.com/Alias1177/Pricer/internal/analysis/depth"
	"github.com/Alias1177/Pricer/internal/model"
)

// DetectAnchors flags listings that look like decoys posted to distort the
// book rather than to sell. It returns a flagged copy of the profile and the
// number of suspected anchors.
//
// Exclusive books flag a listing priced above ExclusiveHighFactor times the
// median that is either in a shallow tail or small (<= AnchorMaxUnits).
// Normal books flag a listing whose |z| exceeds ZThreshold, that sits in a
// shallow tail and is small (< AnchorMaxUnits).
func DetectAnchors(profile []model.AnnotatedListing, median float64, regime model.MarketRegime, th model.Thresholds) ([]model.AnnotatedListing, int) {
	flagged := make([]model.AnnotatedListing, len(profile))
	anchors := 0

	exclusive := regime.IsExclusive() && median > 0

	for i, l := range profile {
		shallow := depth.IsShallow(l.CumQtyPct, th.FrontDepthPct, th.BackDepthPct)
		qty := float64(l.Quantity)

		if exclusive {
			extremeHigh := l.Price > median*th.ExclusiveHighFactor
			l.IsSuspectedAnchor = extremeHigh && (shallow || qty <= th.AnchorMaxUnits)
		} else {
			extreme := math.Abs(l.RobustZ) > th.ZThreshold
			l.IsSuspectedAnchor = extreme && shallow && qty < th.AnchorMaxUnits
		}

		if l.IsSuspectedAnchor {
			anchors++
		}
		flagged[i] = l
	}

	return flagged, anchors
}

// CleanListings drops suspected anchors. If that would leave nothing, every
// listing is kept so a non-empty book is never priced against zero listings.
func CleanListings(profile []model.AnnotatedListing) []model.Listing {
	clean := make([]model.Listing, 0, len(profile))
	for _, l := range profile {
		if !l.IsSuspectedAnchor {
			clean = append(clean, l.Listing)
		}
	}

	if len(clean) == 0 {
		for _, l := range profile {
			clean = append(clean, l.Listing)
		}
	}
	return clean
}
