// Package bot prices pasted inventories for the Telegram front end.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/Alias1177/Pricer/internal/analyze"
	"github.com/Alias1177/Pricer/internal/api/torn"
	"github.com/Alias1177/Pricer/internal/export"
	"github.com/Alias1177/Pricer/internal/inventory"
	"github.com/Alias1177/Pricer/internal/model"
)

// ErrNothingMatched is returned when no line of a message names a known item.
var ErrNothingMatched = errors.New("no known items in the message")

// Fetcher loads order books for a batch of items.
type Fetcher interface {
	FetchAll(ctx context.Context, requests []torn.ItemRequest) []torn.FetchResult
}

// Service runs paste -> match -> fetch -> analyze -> workbook.
type Service struct {
	dict      *inventory.Dictionary
	fetcher   Fetcher
	threshold int
	opts      analyze.Options
}

func NewService(dict *inventory.Dictionary, fetcher Fetcher, threshold int, opts analyze.Options) *Service {
	if threshold <= 0 {
		threshold = inventory.DefaultFuzzyThreshold
	}
	return &Service{dict: dict, fetcher: fetcher, threshold: threshold, opts: opts}
}

// Result is everything a reply is built from.
type Result struct {
	Reports   []model.Report
	Unmatched []string
	Failed    []torn.FetchResult
	Workbook  []byte
}

// Price parses a pasted inventory and prices every recognized item. Items
// that fail to fetch are reported in Failed and do not fail the call.
func (s *Service) Price(ctx context.Context, text string) (*Result, error) {
	lines := inventory.Parse(text, s.dict, s.threshold)
	items := inventory.Aggregate(lines)

	res := &Result{Unmatched: inventory.Unmatched(lines)}
	if len(items) == 0 {
		return res, ErrNothingMatched
	}

	requests := make([]torn.ItemRequest, len(items))
	for i, it := range items {
		requests[i] = torn.ItemRequest{ItemID: it.ItemID, MyQuantity: it.Quantity}
	}

	rows, failed := torn.Rows(s.fetcher.FetchAll(ctx, requests))
	res.Failed = failed

	reports, err := analyze.Run(ctx, rows, s.opts)
	if err != nil {
		return nil, err
	}
	res.Reports = reports

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, reports); err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	res.Workbook = buf.Bytes()

	return res, nil
}
