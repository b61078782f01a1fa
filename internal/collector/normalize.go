package collector

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guregu/null/v6"

	"PairSentinel/internal/model"
)

// priceFieldPreference is the fixed order in which price fields are tried.
// Adjusted close wins whenever the source has it.
var priceFieldPreference = []string{model.FieldAdjClose, model.FieldClose}

// Normalize reduces a raw fetch result to the single price series of ticker.
func Normalize(raw *model.RawFetchResult, ticker string) (*model.PriceSeries, error) {
	if raw.Empty() {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	col, field, err := selectColumn(raw, ticker)
	if err != nil {
		return nil, err
	}
	if len(col) != len(raw.Dates) {
		return nil, fmt.Errorf("%s: %q has %d values for %d dates: %w",
			ticker, field, len(col), len(raw.Dates), ErrUnexpectedShape)
	}

	points := make([]model.PricePoint, len(col))
	for i, v := range col {
		if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
			v = null.Float{}
		}
		points[i] = model.PricePoint{Date: civilDate(raw.Dates[i]), Price: v}
	}
	series := &model.PriceSeries{Symbol: ticker, Points: dedupeDates(points)}
	if series.Valid() == 0 {
		return nil, fmt.Errorf("%s: %q column has no prices: %w", ticker, field, ErrNoData)
	}
	return series, nil
}

func selectColumn(raw *model.RawFetchResult, ticker string) (model.Column, string, error) {
	switch raw.Shape {
	case model.ShapeGrouped:
		for _, field := range priceFieldPreference {
			byTicker, ok := raw.Grouped[field]
			if !ok {
				continue
			}
			// The field is chosen before the ticker is looked up; a missing
			// ticker under "Adj Close" does not fall back to "Close".
			col, ok := lookupTicker(byTicker, ticker)
			if !ok {
				return nil, field, fmt.Errorf("%s: no %q column for ticker: %w", ticker, field, ErrNoData)
			}
			return col, field, nil
		}
	case model.ShapeFlat:
		for _, field := range priceFieldPreference {
			if col, ok := raw.Flat[field]; ok {
				return col, field, nil
			}
		}
	default:
		return nil, "", fmt.Errorf("%s: shape %v: %w", ticker, raw.Shape, ErrUnexpectedShape)
	}
	return nil, "", fmt.Errorf("%s: no close price among %v: %w", ticker, raw.Fields(), ErrNoData)
}

func lookupTicker(byTicker map[string]model.Column, ticker string) (model.Column, bool) {
	if col, ok := byTicker[ticker]; ok {
		return col, true
	}
	for k, col := range byTicker {
		if strings.EqualFold(k, ticker) {
			return col, true
		}
	}
	return nil, false
}

// dedupeDates sorts points by date and keeps the last valid observation per day.
func dedupeDates(points []model.PricePoint) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			if p.Price.Valid {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
