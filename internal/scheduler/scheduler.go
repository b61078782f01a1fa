package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PairSentinel/internal/comparison"
	"PairSentinel/internal/config"
	"PairSentinel/internal/model"
	"PairSentinel/internal/notifier"
)

// Sender delivers alert text. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *comparison.Service
	Notifier Sender
	Ctx      context.Context

	pairs []config.WatchPair
	log   zerolog.Logger
}

// NewScheduler creates a new Scheduler. sender may be nil, in which case
// signals are only logged and recorded.
func NewScheduler(ctx context.Context, svc *comparison.Service, sender Sender, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: sender,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterWatchlist schedules a comparison of every pair on spec.
func (s *Scheduler) RegisterWatchlist(spec string, pairs []config.WatchPair) error {
	if _, err := s.Cron.AddFunc(spec, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	s.pairs = append(s.pairs[:0], pairs...)
	s.log.Info().Str("cron", spec).Int("pairs", len(pairs)).Msg("watchlist registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the watchlist immediately and returns the number of signals raised.
func (s *Scheduler) RunNow() int {
	return s.runWatchlist()
}

func (s *Scheduler) watchlistTask() {
	s.runWatchlist()
}

func (s *Scheduler) runWatchlist() int {
	s.log.Info().Int("pairs", len(s.pairs)).Msg("running watchlist")
	signals := 0
	for _, p := range s.pairs {
		if s.Ctx.Err() != nil {
			break
		}
		out, err := s.Service.Compare(s.Ctx, comparison.Request{Stock1: p.Stock1, Stock2: p.Stock2, Period: p.Period}, "watchlist")
		if err != nil {
			s.log.Error().Err(err).Str("stock1", p.Stock1).Str("stock2", p.Stock2).Msg("watchlist comparison failed")
			continue
		}
		if out.Signal == model.SignalNone {
			continue
		}
		signals++
		s.trySend(notifier.FormatSignalAlert(p.Stock1, p.Stock2, out.Request.Period, out.LatestZ, *out.Result.Signal))
	}
	return signals
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatUsage()
	}
	switch fields[0] {
	case "/compare":
		if len(fields) < 3 || len(fields) > 4 {
			return "Usage: /compare STOCK1 STOCK2 [period]"
		}
		req := comparison.Request{Stock1: strings.ToUpper(fields[1]), Stock2: strings.ToUpper(fields[2]), Period: "1y"}
		if len(fields) == 4 {
			req.Period = fields[3]
		}
		out, err := s.Service.Compare(ctx, req, "telegram")
		if err != nil {
			_, msg := comparison.Classify(err)
			return notifier.FormatError(msg)
		}
		return notifier.FormatComparison(req.Stock1, req.Stock2, out.Request.Period, out.Result)
	case "/watchlist":
		if len(s.pairs) == 0 {
			return "Watchlist is empty"
		}
		var b strings.Builder
		b.WriteString("Watchlist:\n")
		for _, p := range s.pairs {
			b.WriteString(fmt.Sprintf("• %s / %s (%s)\n", html.EscapeString(p.Stock1), html.EscapeString(p.Stock2), p.Period))
		}
		return b.String()
	case "/run":
		n := s.runWatchlist()
		return fmt.Sprintf("Watchlist done: %d signal(s)", n)
	default:
		return notifier.FormatUsage()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.log.Info().Str("alert", text).Msg("signal raised, no notifier configured")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
