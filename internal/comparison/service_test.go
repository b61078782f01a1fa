package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairSentinel/internal/collector"
	"PairSentinel/internal/metrics"
	"PairSentinel/internal/model"
	"PairSentinel/internal/recorder"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// flat builds a single-level result with a Close column starting on firstDay.
func flat(firstDay int, closes ...float64) *model.RawFetchResult {
	dates := make([]time.Time, len(closes))
	col := make(model.Column, len(closes))
	for i, c := range closes {
		dates[i] = day(firstDay + i)
		col[i] = null.FloatFrom(c)
	}
	return model.NewFlatResult(dates, map[string]model.Column{model.FieldClose: col})
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type captureRecorder struct {
	mu      sync.Mutex
	records []*recorder.ComparisonRecord
}

func (c *captureRecorder) RecordComparison(rec *recorder.ComparisonRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func newTestService(f collector.Fetcher, rec recorder.Recorder) *Service {
	return NewService(f, rec, nil, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestCompare_InvalidRequestsDoNotFetch(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{"AAPL": flat(1, 1, 2)}}
	svc := newTestService(f, nil)

	for _, req := range []Request{
		{Stock2: "AAPL", Period: "1y"},
		{Stock1: "AAPL", Period: "1y"},
		{Stock1: "AAPL", Stock2: "AAPL"},
		{Stock1: "AAPL", Stock2: "AAPL", Period: "7y"},
	} {
		_, err := svc.Compare(context.Background(), req, "api")
		status, _ := Classify(err)
		assert.Equal(t, http.StatusBadRequest, status)
	}
	assert.Empty(t, f.Calls())
}

func TestCompare_IdenticalSeries(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"AAA": flat(1, 10, 11, 13, 12, 15),
		"BBB": flat(1, 10, 11, 13, 12, 15),
	}}
	out, err := newTestService(f, nil).Compare(context.Background(), Request{"AAA", "BBB", "1mo"}, "api")
	require.NoError(t, err)

	res := out.Result
	assert.InDelta(t, 1.0, res.Correlation, 1e-12)
	assert.Equal(t, repeat(0, 5), res.Spread)
	assert.Equal(t, repeat(0, 5), res.ZScore)
	assert.Nil(t, res.Signal)
	assert.Equal(t, model.SignalNone, out.Signal)
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, f.Calls())
}

func TestCompare_TwoPointExample(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"X": flat(1, 100, 102),
		"Y": flat(1, 100, 102),
	}}
	out, err := newTestService(f, nil).Compare(context.Background(), Request{"X", "Y", "5d"}, "api")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, out.Result.Dates)
	assert.Nil(t, out.Result.Signal)
	assert.Equal(t, []float64{0, 0}, out.Result.ZScore)
	assert.InDelta(t, 1.0, out.Result.Correlation, 1e-12)
}

func TestCompare_Signals(t *testing.T) {
	base := repeat(50, 10)
	up := append(repeat(100, 9), 104)
	down := append(repeat(100, 9), 96)

	tests := []struct {
		name   string
		a      []float64
		want   string
		signal model.Signal
	}{
		{"spread spikes up", up, "Trade: Short KO, Long PEP", model.SignalShortALongB},
		{"spread drops", down, "Trade: Long KO, Short PEP", model.SignalLongAShortB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &captureRecorder{}
			f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
				"KO":  flat(1, tt.a...),
				"PEP": flat(1, base...),
			}}
			out, err := newTestService(f, rec).Compare(context.Background(), Request{"KO", "PEP", "1y"}, "api")
			require.NoError(t, err)
			require.NotNil(t, out.Result.Signal)
			assert.Equal(t, tt.want, *out.Result.Signal)
			assert.Equal(t, tt.signal, out.Signal)
			assert.Greater(t, abs(out.LatestZ), 2.0)

			require.Len(t, rec.records, 1)
			assert.Equal(t, tt.signal.String(), rec.records[0].Signal)
			assert.Equal(t, 10, rec.records[0].Rows)
			assert.Equal(t, "api", rec.records[0].Source)
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestCompare_SmallDeviationHasNoSignal(t *testing.T) {
	// Five points: a single jump can reach at most (n-1)/sqrt(n) < 2 deviations.
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 100, 100, 100, 100, 130),
		"B": flat(1, 50, 50, 50, 50, 50),
	}}
	out, err := newTestService(f, nil).Compare(context.Background(), Request{"A", "B", "1y"}, "api")
	require.NoError(t, err)
	assert.Nil(t, out.Result.Signal)
	assert.Less(t, out.LatestZ, 2.0)
}

func TestCompare_NoOverlap(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 1, 2, 3),
		"B": flat(10, 1, 2, 3),
	}}
	_, err := newTestService(f, nil).Compare(context.Background(), Request{"A", "B", "1y"}, "api")
	var noOverlap *NoOverlapError
	require.ErrorAs(t, err, &noOverlap)
	status, msg := Classify(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, strings.ToLower(msg), "no overlapping data")
}

func TestCompare_NoData(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"AAPL": flat(1, 1, 2, 3),
	}}
	_, err := newTestService(f, nil).Compare(context.Background(), Request{"AAPL", "ZZZZ", "1y"}, "api")
	var noData *NoDataError
	require.ErrorAs(t, err, &noData)
	assert.ErrorIs(t, err, collector.ErrNoData)
	status, msg := Classify(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No valid data for AAPL or ZZZZ", msg)
}

func TestCompare_FetchFailureIsInternal(t *testing.T) {
	f := &collector.MockFetcher{
		Results: map[string]*model.RawFetchResult{"AAPL": flat(1, 1, 2, 3)},
		Errors:  map[string]error{"MSFT": errors.New("dial tcp: i/o timeout")},
	}
	_, err := newTestService(f, nil).Compare(context.Background(), Request{"AAPL", "MSFT", "1y"}, "api")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "MSFT", fe.Ticker)
	status, msg := Classify(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, msg, "dial tcp: i/o timeout")
}

func TestCompare_UnexpectedShapeIsInternal(t *testing.T) {
	broken := model.NewFlatResult([]time.Time{day(1), day(2)}, map[string]model.Column{
		model.FieldClose: {null.FloatFrom(1)},
	})
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": broken,
		"B": flat(1, 1, 2),
	}}
	_, err := newTestService(f, nil).Compare(context.Background(), Request{"A", "B", "1y"}, "api")
	assert.ErrorIs(t, err, collector.ErrUnexpectedShape)
	status, _ := Classify(err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestCompare_MixedShapesAndRaggedDates(t *testing.T) {
	grouped := model.NewGroupedResult(
		[]time.Time{day(2), day(3), day(4), day(5)},
		map[string]map[string]model.Column{
			model.FieldAdjClose: {"B": {null.FloatFrom(20), null.Float{}, null.FloatFrom(22), null.FloatFrom(25)}},
			model.FieldClose:    {"B": {null.FloatFrom(99), null.FloatFrom(99), null.FloatFrom(99), null.FloatFrom(99)}},
		},
	)
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 10, 11, 12, 13, 14, 15),
		"B": grouped,
	}}
	out, err := newTestService(f, nil).Compare(context.Background(), Request{"A", "B", "1y"}, "api")
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, []string{"2024-01-02", "2024-01-04", "2024-01-05"}, res.Dates)
	assert.Equal(t, []float64{11, 13, 14}, res.Stock1Prices)
	assert.Equal(t, []float64{20, 22, 25}, res.Stock2Prices)
	assert.Equal(t, []float64{-9, -9, -11}, res.Spread)
	for _, l := range []int{len(res.Stock1Prices), len(res.Stock2Prices), len(res.Spread), len(res.ZScore)} {
		assert.Equal(t, len(res.Dates), l)
	}
	assert.Equal(t, 3, out.Rows)
}

func TestCompare_Idempotent(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 10, 12, 11, 15, 14, 13),
		"B": flat(1, 20, 21, 19, 24, 22, 23),
	}}
	svc := newTestService(f, nil)
	req := Request{"A", "B", "6mo"}

	first, err := svc.Compare(context.Background(), req, "api")
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), req, "api")
	require.NoError(t, err)

	b1, err := json.Marshal(first.Result)
	require.NoError(t, err)
	b2, err := json.Marshal(second.Result)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestCompare_TrimsTickers(t *testing.T) {
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 1, 2, 4),
		"B": flat(1, 2, 3, 5),
	}}
	out, err := newTestService(f, nil).Compare(context.Background(), Request{" A ", "B\n", "1y"}, "api")
	require.NoError(t, err)
	assert.Equal(t, Request{"A", "B", "1y"}, out.Request)

	_, err = newTestService(f, nil).Compare(context.Background(), Request{"A", "B", " 1y "}, "api")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "Invalid period")
}

func TestCompare_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := &collector.MockFetcher{Results: map[string]*model.RawFetchResult{
		"A": flat(1, 1, 2, 3),
		"B": flat(1, 3, 2, 1),
	}}
	svc := NewService(f, nil, m, zerolog.Nop())

	_, err := svc.Compare(context.Background(), Request{"A", "B", "1y"}, "api")
	require.NoError(t, err)
	_, err = svc.Compare(context.Background(), Request{"A", "", "1y"}, "api")
	require.Error(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "pairsentinel_comparisons_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts[metrics.OutcomeOK])
	assert.Equal(t, 1.0, counts[metrics.OutcomeInvalid])
}
