package recorder

import "time"

// ComparisonRecord is one completed comparison, kept for later analysis.
// Records are written only; the comparison pipeline never reads them back.
type ComparisonRecord struct {
	At          time.Time
	Stock1      string
	Stock2      string
	Period      string
	Rows        int
	Correlation float64
	LatestZ     float64
	Signal      string
	Source      string // "api", "telegram" or "watchlist"
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordComparison(rec *ComparisonRecord) error
	Close() error
}
