// Package analyze runs the per-item pricing pipeline and maps it over a
// collection of market rows.
package analyze

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/Alias1177/Pricer/internal/analysis/depth"
	"github.com/Alias1177/Pricer/internal/analysis/market"
	"github.com/Alias1177/Pricer/internal/analysis/pricing"
	"github.com/Alias1177/Pricer/internal/analysis/stats"
	"github.com/Alias1177/Pricer/internal/metrics"
	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options tune a Run.
type Options struct {
	Thresholds model.Thresholds
	Workers    int
	FeeRate    float64
	Metrics    *metrics.Metrics
}

// DefaultOptions returns production thresholds, the standard market fee and
// one worker per CPU.
func DefaultOptions() Options {
	return Options{
		Thresholds: model.DefaultThresholds(),
		Workers:    runtime.NumCPU(),
		FeeRate:    pricing.DefaultMarketFee,
	}
}

// BookAnalysis is everything the pipeline derives for one book.
type BookAnalysis struct {
	Suggestion model.PriceSuggestion
	Summary    stats.Summary
	Regime     *market.RegimeAnalysis
	Listings   []model.AnnotatedListing
}

// AnalyzeBook runs statistics, depth profiling, regime classification,
// anchor detection and pricing over one book.
func AnalyzeBook(book model.ItemOrderBook, th model.Thresholds) BookAnalysis {
	if book.IsEmpty() {
		return BookAnalysis{
			Suggestion: model.NoDataSuggestion(book.ItemID, 0, 0),
			Summary:    stats.Describe(nil),
			Regime:     market.ClassifyMarketRegime(nil, th),
		}
	}

	summary := stats.Describe(book.Listings)
	profile := stats.Score(depth.Profile(book.Listings), summary, th.ExtremeZ)
	regime := market.ClassifyMarketRegime(book.Listings, th)
	flagged, _ := market.DetectAnchors(profile, summary.Median, regime.Regime, th)

	return BookAnalysis{
		Suggestion: pricing.Suggest(book.ItemID, flagged, regime.Regime, th),
		Summary:    summary,
		Regime:     regime,
		Listings:   flagged,
	}
}

// BuildReport normalizes a row, prices it and attaches the pass-through
// fields, book KPIs, the fee-adjusted revenue at the fair price and the
// flagged listings.
func BuildReport(row model.MarketRow, th model.Thresholds, feeRate float64) model.Report {
	book := orderbook.Normalize(row)
	analysis := AnalyzeBook(book, th)

	return model.Report{
		PriceSuggestion:      analysis.Suggestion,
		ItemName:             row.ItemName,
		ItemType:             row.ItemType,
		AveragePriceReported: row.AveragePrice,
		MyQuantity:           row.MyQuantity,
		KPI:                  market.CalculateKPI(book.Listings),
		FairRevenue:          pricing.Revenue(analysis.Suggestion.FairPrice, row.MyQuantity, feeRate),
		Listings:             analysis.Listings,
	}
}

// Run prices every row concurrently. Reports come back in input order. The
// only error is cancellation of ctx, checked between items. Zero-value
// thresholds mean the production defaults.
func Run(ctx context.Context, rows []model.MarketRow, opts Options) ([]model.Report, error) {
	logger := log.With().Str("component", "analyze").Logger()
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Thresholds == (model.Thresholds{}) {
		opts.Thresholds = model.DefaultThresholds()
	}

	start := time.Now()
	reports := make([]model.Report, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range rows {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r := BuildReport(rows[i], opts.Thresholds, opts.FeeRate)
			reports[i] = r
			opts.Metrics.RecordItem(r.CleanRegime.String(), r.NumSuspectedAnchors)

			logger.Debug().
				Int64("item_id", r.ItemID).
				Int("listings", r.NumListings).
				Int("anchors", r.NumSuspectedAnchors).
				Str("regime", r.CleanRegime.String()).
				Float64("fair", r.FairPrice).
				Msg("item priced")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}

	var anchors, empty int
	for _, r := range reports {
		anchors += r.NumSuspectedAnchors
		if !r.HasData() {
			empty++
		}
	}
	logger.Info().
		Int("items", len(rows)).
		Int("no_data", empty).
		Int("anchors", anchors).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis run complete")

	return reports, nil
}
