package aggregation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
)

// EventSource pulls events from the events API.
type EventSource interface {
	// FetchSince returns events with timestamps strictly newer than from.
	FetchSince(ctx context.Context, from time.Time) ([]v1.EventRecord, error)
}

// Fetcher implements EventSource against the HTTP events API
// (GET {base}/api/v1/events?from_timestamp=...).
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a fetcher for the events API at baseURL.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchSince performs a single bounded query. Any transport failure or
// non-200 status maps to ErrFetch; the caller treats that as "no events
// this pass" and leaves the checkpoint untouched.
//
// Records are returned in wire form so that one malformed timestamp cannot
// abort decoding of the whole batch.
func (f *Fetcher) FetchSince(ctx context.Context, from time.Time) ([]v1.EventRecord, error) {
	endpoint := f.baseURL + "/api/v1/events?" + url.Values{
		"from_timestamp": {from.UTC().Format(time.RFC3339Nano)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded chunk of the body for the log line.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []v1.EventRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}

	return records, nil
}
