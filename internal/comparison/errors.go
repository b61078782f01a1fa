package comparison

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports a malformed or incomplete request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NoDataError reports that at least one instrument produced no usable prices.
type NoDataError struct {
	Tickers []string
	Err     error
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("No valid data for %s", strings.Join(e.Tickers, " or "))
}

func (e *NoDataError) Unwrap() error { return e.Err }

// NoOverlapError reports two usable series that share no dates.
type NoOverlapError struct {
	Err error
}

func (e *NoOverlapError) Error() string { return "No overlapping data after alignment" }

func (e *NoOverlapError) Unwrap() error { return e.Err }

// FetchError wraps a failure of the market-data source.
type FetchError struct {
	Ticker string
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Ticker, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Classify maps a pipeline error to an HTTP status and the message shown to the caller.
func Classify(err error) (int, string) {
	var (
		validation *ValidationError
		noData     *NoDataError
		noOverlap  *NoOverlapError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &noData):
		return http.StatusNotFound, noData.Error()
	case errors.As(err, &noOverlap):
		return http.StatusNotFound, noOverlap.Error()
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err)
	}
}
