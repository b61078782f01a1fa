package collector

import (
	"context"
	"sync"

	"PairSentinel/internal/model"
)

// MockFetcher returns fixed results per ticker for development and testing.
// Tickers without an entry yield an empty result.
type MockFetcher struct {
	Results map[string]*model.RawFetchResult
	Errors  map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker, _ string) (*model.RawFetchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()

	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if r, ok := m.Results[ticker]; ok {
		return r, nil
	}
	return model.NewFlatResult(nil, nil), nil
}

// Calls returns the tickers requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
