// Package comparison runs the pair comparison pipeline: validate, fetch,
// normalize, align, compute, classify and assemble.
package comparison

import (
	"fmt"
	"strings"
)

// Periods lists the accepted lookback codes in display order.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// Request names the two instruments to compare and the lookback period.
type Request struct {
	Stock1 string `json:"stock1"`
	Stock2 string `json:"stock2"`
	Period string `json:"period"`
}

// trimmed strips whitespace around the tickers. The period must match a code exactly.
func (r Request) trimmed() Request {
	return Request{
		Stock1: strings.TrimSpace(r.Stock1),
		Stock2: strings.TrimSpace(r.Stock2),
		Period: r.Period,
	}
}

// ValidPeriod reports whether p is one of Periods.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// Validate checks that both tickers and the period are present and that the
// period is supported.
func Validate(req Request) error {
	req = req.trimmed()
	if req.Stock1 == "" || req.Stock2 == "" || req.Period == "" {
		return &ValidationError{Msg: "Missing stock ticker or period"}
	}
	if !ValidPeriod(req.Period) {
		return &ValidationError{Msg: fmt.Sprintf("Invalid period. Use: %s", strings.Join(Periods, ", "))}
	}
	return nil
}
