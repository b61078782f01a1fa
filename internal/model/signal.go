package model

import "fmt"

// Signal is the pairs-trading recommendation derived from the latest z-score.
type Signal int

const (
	SignalNone Signal = iota
	// SignalShortALongB: the first instrument is rich relative to the second.
	SignalShortALongB
	// SignalLongAShortB: the first instrument is cheap relative to the second.
	SignalLongAShortB
)

func (s Signal) String() string {
	switch s {
	case SignalShortALongB:
		return "SHORT_A_LONG_B"
	case SignalLongAShortB:
		return "LONG_A_SHORT_B"
	default:
		return "NONE"
	}
}

// Describe renders the signal for the two named instruments. It returns nil for
// SignalNone so the value serializes as JSON null.
func (s Signal) Describe(symbolA, symbolB string) *string {
	var text string
	switch s {
	case SignalShortALongB:
		text = fmt.Sprintf("Trade: Short %s, Long %s", symbolA, symbolB)
	case SignalLongAShortB:
		text = fmt.Sprintf("Trade: Long %s, Short %s", symbolA, symbolB)
	default:
		return nil
	}
	return &text
}
