package comparison

import (
	"math"

	"PairSentinel/internal/model"
)

// Assemble packs an aligned table and its statistics into the response shape.
// Non-finite numbers become 0 so any JSON reader can parse the result.
func Assemble(t *model.AlignedTable, st *model.PairStats, signal model.Signal) *model.ComparisonResult {
	dates := make([]string, len(t.Dates))
	for i, d := range t.Dates {
		dates[i] = d.Format("2006-01-02")
	}
	return &model.ComparisonResult{
		Correlation:  finite(st.Correlation),
		Dates:        dates,
		Stock1Prices: finiteAll(t.A),
		Stock2Prices: finiteAll(t.B),
		Spread:       finiteAll(st.Spread),
		ZScore:       finiteAll(st.ZScore),
		Signal:       signal.Describe(t.SymbolA, t.SymbolB),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finiteAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = finite(v)
	}
	return out
}
