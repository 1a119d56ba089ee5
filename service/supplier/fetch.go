package supplier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// FetchErrorKind classifies why a feed could not be retrieved.
type FetchErrorKind string

const (
	FetchTimeout   FetchErrorKind = "timeout"
	FetchStatus    FetchErrorKind = "status"
	FetchTransport FetchErrorKind = "transport"
)

// FetchError is returned by Fetcher implementations for any failed retrieval.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchStatus:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	case FetchTimeout:
		return fmt.Sprintf("feed request timed out: %v", e.Err)
	default:
		return fmt.Sprintf("feed request failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the raw content of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads feeds with a hard upper bound on the whole exchange, body included.
// It never retries.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyFetchErr(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Kind: FetchStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyFetchErr(url, err)
	}
	return body, nil
}

func classifyFetchErr(url string, err error) *FetchError {
	kind := FetchTransport
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = FetchTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}
