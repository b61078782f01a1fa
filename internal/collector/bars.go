package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"PairSentinel/internal/model"
)

// BarsFetcher implements Fetcher against a REST bar service that serves daily
// bars per symbol. Results are grouped by ticker.
type BarsFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBarsFetcher creates a new fetcher with optional proxy support.
func NewBarsFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *BarsFetcher {
	return &BarsFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *BarsFetcher) Name() string { return "bars" }

// bar is the expected JSON shape from the bar service.
type bar struct {
	Timestamp int64      `json:"timestamp"`
	Close     null.Float `json:"close"`
	AdjClose  null.Float `json:"adj_close"`
}

func (f *BarsFetcher) FetchHistory(ctx context.Context, ticker, period string) (*model.RawFetchResult, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("period", period)
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return model.NewGroupedResult(nil, nil), nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []bar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	return groupBars(ticker, bars), nil
}

func groupBars(ticker string, bars []bar) *model.RawFetchResult {
	if len(bars) == 0 {
		return model.NewGroupedResult(nil, nil)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

	dates := make([]time.Time, len(bars))
	closes := make(model.Column, len(bars))
	adj := make(model.Column, len(bars))
	hasAdj := false
	for i, b := range bars {
		dates[i] = civilDate(time.Unix(b.Timestamp, 0).UTC())
		closes[i] = b.Close
		adj[i] = b.AdjClose
		if b.AdjClose.Valid {
			hasAdj = true
		}
	}

	columns := map[string]map[string]model.Column{
		model.FieldClose: {ticker: closes},
	}
	if hasAdj {
		columns[model.FieldAdjClose] = map[string]model.Column{ticker: adj}
	}
	return model.NewGroupedResult(dates, columns)
}
