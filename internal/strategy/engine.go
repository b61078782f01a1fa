package strategy

import (
	"math"

	"PairSentinel/internal/model"
)

// ZScoreThreshold is the absolute z-score a spread must exceed before a trade is suggested.
const ZScoreThreshold = 2.0

// LatestZ returns the most recent z-score, or 0 when there is none or it is undefined.
func LatestZ(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	last := z[len(z)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return 0
	}
	return last
}

// Classify maps the latest z-score to a signal. A spread far above its mean
// means the first instrument is rich, so it is shorted against the second.
func Classify(latestZ float64) model.Signal {
	switch {
	case latestZ > ZScoreThreshold:
		return model.SignalShortALongB
	case latestZ < -ZScoreThreshold:
		return model.SignalLongAShortB
	default:
		return model.SignalNone
	}
}

// Evaluate classifies the spread of a computed pair.
func Evaluate(stats *model.PairStats) model.Signal {
	return Classify(LatestZ(stats.ZScore))
}
