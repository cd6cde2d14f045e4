package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/opsboard/pkg/types"
)

// StatusPath is the aggregator endpoint polled by the client
const StatusPath = "/api/status"

const maxSnapshotBytes = 4 << 20

// HTTPDoer is the subset of *http.Client used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError reports a non-2xx response from the status endpoint
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("status fetch failed (%d)", e.StatusCode)
}

// Client fetches status snapshots from an opsboard server
type Client struct {
	baseURL string
	http    HTTPDoer
	now     func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithNow sets the time source used for the cache-busting parameter
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the server at baseURL (e.g.,
// "http://127.0.0.1:3000")
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves one snapshot. The request carries a unique t=<unix ms>
// parameter so no intermediary can answer it from cache. Cancellation of
// ctx surfaces as an error wrapping context.Canceled.
func (c *Client) Fetch(ctx context.Context) (*types.StatusSnapshot, error) {
	u, err := url.Parse(c.baseURL + StatusPath)
	if err != nil {
		return nil, fmt.Errorf("status fetch failed: invalid url: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("status fetch failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSnapshotBytes))
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	var snapshot types.StatusSnapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSnapshotBytes)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("status fetch failed: malformed snapshot: %w", err)
	}
	return &snapshot, nil
}
