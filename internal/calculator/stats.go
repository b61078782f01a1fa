package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"PairSentinel/internal/model"
)

// Correlation returns Pearson's r of x and y. When r is undefined (fewer than
// two pairs, mismatched lengths, or a constant column) it returns 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if isConstant(x) || isConstant(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// Spread returns x[i] - y[i] for every i.
func Spread(x, y []float64) []float64 {
	n := min(len(x), len(y))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x[i] - y[i]
	}
	return out
}

// ZScores standardizes values against their own sample mean and standard
// deviation over the whole window. Every element is NaN when the deviation is
// undefined: fewer than two values, or all values equal.
func ZScores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) < 2 || isConstant(values) {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	mean, sd := stat.MeanStdDev(values, nil)
	for i, v := range values {
		if sd == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (v - mean) / sd
	}
	return out
}

// Compute derives correlation, spread and z-scores from an aligned table.
func Compute(t *model.AlignedTable) *model.PairStats {
	spread := Spread(t.A, t.B)
	return &model.PairStats{
		Correlation: Correlation(t.A, t.B),
		Spread:      spread,
		ZScore:      ZScores(spread),
	}
}

// isConstant compares exactly; a mean-based variance can come out as a tiny
// positive number for identical values.
func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
