package model

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// Price field names as exposed by market-data sources.
const (
	FieldAdjClose = "Adj Close"
	FieldClose    = "Close"
)

// PricePoint is a single dated observation. An invalid Price means the source
// reported no value for that date.
type PricePoint struct {
	Date  time.Time
	Price null.Float
}

// PriceSeries is one instrument's prices in strictly increasing date order.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of points, missing ones included.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Valid returns the number of points carrying a price.
func (s *PriceSeries) Valid() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.Points {
		if p.Price.Valid {
			n++
		}
	}
	return n
}

// Shape tags the column layout of a RawFetchResult.
type Shape int

const (
	// ShapeFlat holds one column per price field.
	ShapeFlat Shape = iota
	// ShapeGrouped holds one column per (price field, ticker) pair.
	ShapeGrouped
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// Column is a run of prices aligned with RawFetchResult.Dates.
type Column []null.Float

// RawFetchResult is what a market-data source returns for one request before
// normalization. Exactly one of Flat or Grouped is populated, according to Shape.
type RawFetchResult struct {
	Shape   Shape
	Dates   []time.Time
	Flat    map[string]Column
	Grouped map[string]map[string]Column
}

// NewFlatResult builds a single-level result keyed by price field.
func NewFlatResult(dates []time.Time, columns map[string]Column) *RawFetchResult {
	return &RawFetchResult{Shape: ShapeFlat, Dates: dates, Flat: columns}
}

// NewGroupedResult builds a two-level result keyed by price field, then ticker.
func NewGroupedResult(dates []time.Time, columns map[string]map[string]Column) *RawFetchResult {
	return &RawFetchResult{Shape: ShapeGrouped, Dates: dates, Grouped: columns}
}

// Empty reports whether the result carries no rows or no columns.
func (r *RawFetchResult) Empty() bool {
	if r == nil || len(r.Dates) == 0 {
		return true
	}
	if r.Shape == ShapeGrouped {
		return len(r.Grouped) == 0
	}
	return len(r.Flat) == 0
}

// Fields lists the top-level price fields in sorted order.
func (r *RawFetchResult) Fields() []string {
	if r == nil {
		return nil
	}
	var fields []string
	if r.Shape == ShapeGrouped {
		for f := range r.Grouped {
			fields = append(fields, f)
		}
	} else {
		for f := range r.Flat {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	return fields
}
