package model

import "time"

// AlignedTable holds two price series reduced to the dates where both have a
// price. A and B always have the same length as Dates.
type AlignedTable struct {
	SymbolA string
	SymbolB string
	Dates   []time.Time
	A       []float64
	B       []float64
}

// Rows returns the number of aligned observations.
func (t *AlignedTable) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Dates)
}

// PairStats is the raw output of the statistics engine. ZScore elements are NaN
// when the spread has no dispersion.
type PairStats struct {
	Correlation float64
	Spread      []float64
	ZScore      []float64
}

// ComparisonResult is the response body of a successful comparison.
type ComparisonResult struct {
	Correlation  float64   `json:"correlation"`
	Dates        []string  `json:"dates"`
	Stock1Prices []float64 `json:"stock1_prices"`
	Stock2Prices []float64 `json:"stock2_prices"`
	Spread       []float64 `json:"spread"`
	ZScore       []float64 `json:"z_score"`
	Signal       *string   `json:"signal"`
}
