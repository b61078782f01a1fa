package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"PairSentinel/internal/model"
)

var (
	// ErrNoData means a source returned nothing usable for a ticker.
	ErrNoData = errors.New("no data")
	// ErrUnexpectedShape means a source returned columns that cannot be read as a price series.
	ErrUnexpectedShape = errors.New("unexpected data shape")
)

// Fetcher resolves a ticker and a period code into raw price history.
// An empty result with a nil error means the source knows nothing about the ticker.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker, period string) (*model.RawFetchResult, error)
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// civilDate drops the time of day, keeping the calendar date as seen in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
