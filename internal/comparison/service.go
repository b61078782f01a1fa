package comparison

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PairSentinel/internal/calculator"
	"PairSentinel/internal/collector"
	"PairSentinel/internal/metrics"
	"PairSentinel/internal/model"
	"PairSentinel/internal/recorder"
	"PairSentinel/internal/strategy"
)

// Outcome is a successful comparison together with the intermediate values
// callers other than the HTTP API care about.
type Outcome struct {
	Request Request
	Result  *model.ComparisonResult
	Signal  model.Signal
	LatestZ float64
	Rows    int
}

// Service runs comparisons against a single market-data source. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	fetcher  collector.Fetcher
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewService creates a Service. rec and m may be nil.
func NewService(fetcher collector.Fetcher, rec recorder.Recorder, m *metrics.Metrics, log zerolog.Logger) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{
		fetcher:  fetcher,
		recorder: rec,
		metrics:  m,
		log:      log.With().Str("component", "comparison").Logger(),
	}
}

// Compare runs the full pipeline for req. source tags the audit record.
func (s *Service) Compare(ctx context.Context, req Request, source string) (*Outcome, error) {
	out, err := s.compare(ctx, req.trimmed(), source)
	s.metrics.ObserveComparison(outcomeLabel(err))
	return out, err
}

func (s *Service) compare(ctx context.Context, req Request, source string) (*Outcome, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	log := s.log.With().Str("stock1", req.Stock1).Str("stock2", req.Stock2).Str("period", req.Period).Logger()
	log.Info().Msg("comparison requested")

	var rawA, rawB *model.RawFetchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rawA, err = s.fetch(gctx, req.Stock1, req.Period)
		return err
	})
	g.Go(func() (err error) {
		rawB, err = s.fetch(gctx, req.Stock2, req.Period)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("fetch failed")
		return nil, err
	}

	a, errA := collector.Normalize(rawA, req.Stock1)
	b, errB := collector.Normalize(rawB, req.Stock2)
	for _, err := range []error{errA, errB} {
		if err != nil && !errors.Is(err, collector.ErrNoData) {
			return nil, fmt.Errorf("normalize: %w", err)
		}
	}
	if err := errors.Join(errA, errB); err != nil {
		log.Warn().Err(err).Msg("no usable price series")
		return nil, &NoDataError{Tickers: []string{req.Stock1, req.Stock2}, Err: err}
	}

	table, err := calculator.Align(a, b)
	switch {
	case errors.Is(err, calculator.ErrNoOverlap):
		log.Warn().Int("rows_a", a.Len()).Int("rows_b", b.Len()).Msg("no overlapping dates")
		return nil, &NoOverlapError{Err: err}
	case errors.Is(err, calculator.ErrNoData):
		return nil, &NoDataError{Tickers: []string{req.Stock1, req.Stock2}, Err: err}
	case err != nil:
		return nil, fmt.Errorf("align: %w", err)
	}

	stats := calculator.Compute(table)
	latestZ := strategy.LatestZ(stats.ZScore)
	signal := strategy.Classify(latestZ)
	result := Assemble(table, stats, signal)

	log.Info().
		Int("rows", table.Rows()).
		Float64("correlation", result.Correlation).
		Float64("latest_z", latestZ).
		Stringer("signal", signal).
		Msg("comparison complete")

	if signal != model.SignalNone {
		s.metrics.ObserveSignal(signal.String())
	}
	if err := s.recorder.RecordComparison(&recorder.ComparisonRecord{
		At:          time.Now(),
		Stock1:      req.Stock1,
		Stock2:      req.Stock2,
		Period:      req.Period,
		Rows:        table.Rows(),
		Correlation: result.Correlation,
		LatestZ:     latestZ,
		Signal:      signal.String(),
		Source:      source,
	}); err != nil {
		log.Error().Err(err).Msg("record comparison")
	}

	return &Outcome{
		Request: req,
		Result:  result,
		Signal:  signal,
		LatestZ: latestZ,
		Rows:    table.Rows(),
	}, nil
}

func (s *Service) fetch(ctx context.Context, ticker, period string) (*model.RawFetchResult, error) {
	started := time.Now()
	raw, err := s.fetcher.FetchHistory(ctx, ticker, period)
	s.metrics.ObserveFetch(s.fetcher.Name(), started, err)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Source: s.fetcher.Name(), Err: err}
	}
	if raw == nil {
		raw = model.NewFlatResult(nil, nil)
	}
	s.log.Debug().
		Str("ticker", ticker).
		Stringer("shape", raw.Shape).
		Int("rows", len(raw.Dates)).
		Strs("fields", raw.Fields()).
		Msg("fetched raw history")
	return raw, nil
}

func outcomeLabel(err error) string {
	var (
		validation *ValidationError
		noData     *NoDataError
		noOverlap  *NoOverlapError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &validation):
		return metrics.OutcomeInvalid
	case errors.As(err, &noData):
		return metrics.OutcomeNoData
	case errors.As(err, &noOverlap):
		return metrics.OutcomeNoOverlap
	default:
		return metrics.OutcomeError
	}
}
