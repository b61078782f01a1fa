package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"PairSentinel/internal/model"
)

func TestClassify_AllBoundaries(t *testing.T) {
	tests := []struct {
		z    float64
		want model.Signal
	}{
		{3.5, model.SignalShortALongB},
		{2.0000001, model.SignalShortALongB},
		{2.0, model.SignalNone},
		{1.2, model.SignalNone},
		{0, model.SignalNone},
		{-1.9, model.SignalNone},
		{-2.0, model.SignalNone},
		{-2.0000001, model.SignalLongAShortB},
		{-7, model.SignalLongAShortB},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.z), "z=%v", tt.z)
	}
}

func TestLatestZ(t *testing.T) {
	assert.Equal(t, 0.0, LatestZ(nil))
	assert.Equal(t, -2.5, LatestZ([]float64{1, 0.3, -2.5}))
	assert.Equal(t, 0.0, LatestZ([]float64{math.NaN(), math.NaN()}))
	assert.Equal(t, 0.0, LatestZ([]float64{1, math.Inf(1)}))
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, model.SignalShortALongB, Evaluate(&model.PairStats{ZScore: []float64{-0.3, 0.1, 2.4}}))
	assert.Equal(t, model.SignalLongAShortB, Evaluate(&model.PairStats{ZScore: []float64{0.3, -2.1}}))
	assert.Equal(t, model.SignalNone, Evaluate(&model.PairStats{ZScore: []float64{math.NaN()}}))
	assert.Equal(t, model.SignalNone, Evaluate(&model.PairStats{}))
}

func TestSignal_Describe(t *testing.T) {
	assert.Nil(t, model.SignalNone.Describe("AAPL", "MSFT"))
	assert.Equal(t, "Trade: Short AAPL, Long MSFT", *model.SignalShortALongB.Describe("AAPL", "MSFT"))
	assert.Equal(t, "Trade: Long AAPL, Short MSFT", *model.SignalLongAShortB.Describe("AAPL", "MSFT"))
}
