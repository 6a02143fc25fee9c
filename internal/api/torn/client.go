// Package torn fetches item-market order books from the Torn API.
package torn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Alias1177/Pricer/internal/metrics"
	"github.com/Alias1177/Pricer/internal/model"
	httpClient "github.com/Alias1177/Pricer/internal/platform/http"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL = "https://api.torn.com/v2"
	listingsLimit  = 100
)

// Client is the Torn item-market client
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *httpClient.Client
	retries        int
	maxWorkers     int
	slotCount      int
	initialBackoff time.Duration
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// ClientOptions holds options for creating a new Torn client
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerMin float64
	BucketCapacity int
	Retries        int
	MaxWorkers     int
	SlotCount      int
	InitialBackoff time.Duration
	Metrics        *metrics.Metrics
}

// NewClient creates a new Torn API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.Retries <= 0 {
		options.Retries = 3
	}
	if options.MaxWorkers <= 0 {
		options.MaxWorkers = 5
	}
	if options.SlotCount <= 0 {
		options.SlotCount = listingsLimit
	}
	if options.InitialBackoff == 0 {
		options.InitialBackoff = 800 * time.Millisecond
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: options.BaseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerMin:  options.RequestsPerMin,
			BucketCapacity:  options.BucketCapacity,
			MaxConnsPerHost: options.MaxWorkers * 10,
			UserAgent:       "torn-itemmarket-pricer/1.0",
		}),
		retries:        options.Retries,
		maxWorkers:     options.MaxWorkers,
		slotCount:      options.SlotCount,
		initialBackoff: options.InitialBackoff,
		metrics:        options.Metrics,
		logger:         log.With().Str("component", "torn_client").Logger(),
	}
}

// FetchListings fetches the visible sell listings of one item. Each attempt
// walks the auth modes while the provider answers with an incorrect-key
// error; transient failures are retried with exponential backoff.
func (c *Client) FetchListings(ctx context.Context, itemID int64, myQuantity int) (model.MarketRow, error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveFetchDuration(float64(time.Since(start).Milliseconds()))
	}()

	var row model.MarketRow
	operation := func() error {
		var err error
		row, err = c.tryModes(ctx, itemID, myQuantity)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.Multiplier = 1.6
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.Debug().Err(err).Int64("item_id", itemID).Dur("wait", wait).Msg("Retrying item")
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.retries-1)), ctx),
		notify)
	if err != nil {
		return model.MarketRow{}, fmt.Errorf("fetch item %d: %w", itemID, err)
	}
	return row, nil
}

// tryModes performs one attempt. Errors wrapped in backoff.Permanent stop
// the retry loop.
func (c *Client) tryModes(ctx context.Context, itemID int64, myQuantity int) (model.MarketRow, error) {
	for i, mode := range authModes {
		last := i == len(authModes)-1

		status, body, err := c.httpClient.Get(ctx, c.itemURL(itemID, mode), c.headers(mode))
		if err != nil {
			if ctx.Err() != nil {
				return model.MarketRow{}, backoff.Permanent(ctx.Err())
			}
			c.metrics.RecordFetch(mode.String(), "transport_error")
			return model.MarketRow{}, err
		}

		var resp marketResponse
		decodeErr := json.Unmarshal(body, &resp)

		if decodeErr == nil && resp.Error != nil {
			apiErr := &APIError{Code: resp.Error.Code, Message: resp.Error.Message}
			switch {
			case apiErr.Code == CodeIncorrectKey && !last:
				c.metrics.RecordFetch(mode.String(), "auth_fallback")
				c.logger.Debug().Int64("item_id", itemID).Stringer("mode", mode).Msg("Key rejected, trying next auth mode")
				continue
			case apiErr.Transient() || httpClient.IsTransientStatus(status):
				c.metrics.RecordFetch(mode.String(), "transient")
				return model.MarketRow{}, apiErr
			default:
				c.metrics.RecordFetch(mode.String(), "api_error")
				return model.MarketRow{}, backoff.Permanent(apiErr)
			}
		}

		if status < 200 || status > 299 {
			statusErr := &httpClient.HTTPStatusError{StatusCode: status}
			if statusErr.Transient() {
				c.metrics.RecordFetch(mode.String(), "transient")
				return model.MarketRow{}, statusErr
			}
			c.metrics.RecordFetch(mode.String(), "http_error")
			return model.MarketRow{}, backoff.Permanent(statusErr)
		}

		if decodeErr != nil {
			c.metrics.RecordFetch(mode.String(), "decode_error")
			return model.MarketRow{}, backoff.Permanent(fmt.Errorf("parsing JSON: %w", decodeErr))
		}

		c.metrics.RecordFetch(mode.String(), "ok")
		return c.toRow(resp, itemID, myQuantity), nil
	}

	// authModes is never empty.
	return model.MarketRow{}, backoff.Permanent(errors.New("no auth mode succeeded"))
}

// FetchAll fetches every requested item with at most MaxWorkers requests in
// flight. A failed item is recorded in its result and never aborts the
// batch. Results follow request order.
func (c *Client) FetchAll(ctx context.Context, requests []ItemRequest) []FetchResult {
	runID := uuid.New().String()
	logger := c.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("items", len(requests)).Int("workers", c.maxWorkers).Msg("Fetching item markets")

	start := time.Now()
	results := make([]FetchResult, len(requests))

	g := new(errgroup.Group)
	g.SetLimit(c.maxWorkers)

	for i, req := range requests {
		i, req := i, req
		results[i].Request = req
		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("fetch item %d: %w", req.ItemID, err)
			continue
		}
		g.Go(func() error {
			row, err := c.FetchListings(ctx, req.ItemID, req.MyQuantity)
			results[i].Row = row
			results[i].Err = err
			if err != nil {
				logger.Warn().Err(err).Int64("item_id", req.ItemID).Msg("Item fetch failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info().
		Int("items", len(requests)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch complete")

	return results
}

// Rows splits batch results into fetched rows and failures.
func Rows(results []FetchResult) ([]model.MarketRow, []FetchResult) {
	rows := make([]model.MarketRow, 0, len(results))
	var failed []FetchResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		rows = append(rows, r.Row)
	}
	return rows, failed
}

func (c *Client) itemURL(itemID int64, mode AuthMode) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(listingsLimit))
	q.Set("offset", "0")
	if mode == AuthQueryKey {
		q.Set("key", c.apiKey)
	}
	return fmt.Sprintf("%s/market/%d/itemmarket?%s", c.baseURL, itemID, q.Encode())
}

func (c *Client) headers(mode AuthMode) map[string]string {
	switch mode {
	case AuthHeaderApikey:
		return map[string]string{"Authorization": "Apikey " + c.apiKey}
	case AuthHeaderApiKey:
		return map[string]string{"Authorization": "ApiKey " + c.apiKey}
	}
	return nil
}

// toRow maps a response onto a fixed-width row of slotCount slots.
func (c *Client) toRow(resp marketResponse, itemID int64, myQuantity int) model.MarketRow {
	row := model.MarketRow{
		ItemID:     itemID,
		MyQuantity: myQuantity,
		Slots:      make([]model.Slot, c.slotCount),
	}
	if resp.ItemMarket == nil {
		return row
	}

	item := resp.ItemMarket.Item
	if item.ID != 0 {
		row.ItemID = item.ID
	}
	row.ItemName = item.Name
	row.ItemType = item.Type
	row.AveragePrice = item.AveragePrice

	for i, l := range resp.ItemMarket.Listings {
		if i >= c.slotCount {
			break
		}
		row.Slots[i] = model.Slot{Price: l.Price, Amount: l.Amount}
	}
	return row
}
