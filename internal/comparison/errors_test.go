package comparison

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &ValidationError{Msg: "Missing stock ticker or period"}, http.StatusBadRequest, "Missing stock ticker or period"},
		{"no data", &NoDataError{Tickers: []string{"AAPL", "ZZZZ"}}, http.StatusNotFound, "No valid data for AAPL or ZZZZ"},
		{"no overlap", &NoOverlapError{}, http.StatusNotFound, "No overlapping data after alignment"},
		{"wrapped no overlap", fmt.Errorf("compare: %w", &NoOverlapError{}), http.StatusNotFound, "No overlapping data after alignment"},
		{"fetch", &FetchError{Ticker: "AAPL", Source: "yahoo", Err: errors.New("connection reset")}, http.StatusInternalServerError,
			"Internal server error: fetch AAPL from yahoo: connection reset"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
