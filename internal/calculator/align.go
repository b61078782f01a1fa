package calculator

import (
	"errors"
	"fmt"
	"time"

	"PairSentinel/internal/model"
)

var (
	// ErrNoData means one of the series handed to Align was empty.
	ErrNoData = errors.New("empty price series")
	// ErrNoOverlap means the two series share no date on which both have a price.
	ErrNoOverlap = errors.New("no overlapping dates")
)

const dateKey = "2006-01-02"

// Align inner-joins two price series on calendar date. Dates missing a price on
// either side are dropped, never interpolated. The result follows a's order.
func Align(a, b *model.PriceSeries) (*model.AlignedTable, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return nil, ErrNoData
	}

	other := make(map[string]float64, b.Len())
	for _, p := range b.Points {
		if p.Price.Valid {
			other[p.Date.Format(dateKey)] = p.Price.Float64
		}
	}

	t := &model.AlignedTable{SymbolA: a.Symbol, SymbolB: b.Symbol}
	seen := make(map[string]struct{}, a.Len())
	for _, p := range a.Points {
		if !p.Price.Valid {
			continue
		}
		key := p.Date.Format(dateKey)
		bv, ok := other[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		t.Dates = append(t.Dates, time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, time.UTC))
		t.A = append(t.A, p.Price.Float64)
		t.B = append(t.B, bv)
	}
	if t.Rows() == 0 {
		return nil, fmt.Errorf("%s/%s: %w", a.Symbol, b.Symbol, ErrNoOverlap)
	}
	return t, nil
}
