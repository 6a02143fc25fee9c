package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Alias1177/Pricer/internal/platform/ratelimit"
)

// Client is a wrapper for HTTP client gated by a shared token bucket
type Client struct {
	HTTPClient *http.Client
	Bucket     *ratelimit.TokenBucket
	UserAgent  string
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerMin  float64
	BucketCapacity  int
	MaxConnsPerHost int
	UserAgent       string
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerMin == 0 {
		opts.RequestsPerMin = 90
	}
	if opts.MaxConnsPerHost == 0 {
		opts.MaxConnsPerHost = 50
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "pricer/1.0"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		Bucket:    ratelimit.NewTokenBucket(opts.RequestsPerMin, opts.BucketCapacity),
		UserAgent: opts.UserAgent,
	}
}

// Get takes one token and performs a GET. Any status is returned together
// with the body; only transport failures are errors.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	if err := c.Bucket.Acquire(ctx, 1); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(urlErr.URL)
		}
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// secretParams are query parameters never written to errors or logs.
var secretParams = []string{"key"}

// RedactURL masks credential query parameters in raw.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparsable url)"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// HTTPStatusError represents an error due to a non-2xx HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Transient reports whether retrying the request may succeed.
func (e *HTTPStatusError) Transient() bool {
	return IsTransientStatus(e.StatusCode)
}

// IsTransientStatus is true for throttling and upstream failures.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
