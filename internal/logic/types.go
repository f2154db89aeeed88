// Package logic contains the pure decode engine for a single Morse key.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected as a millisecond counter on every sample.
package logic

import "github.com/sweeney/morse-key/internal/morse"

// Millis is a monotonic millisecond timestamp or duration.
// Differences are taken with unsigned modular arithmetic, so a counter
// that wraps still yields the correct elapsed time.
type Millis uint64

// Elapsed returns now - since, tolerating wraparound.
func Elapsed(now, since Millis) Millis {
	return now - since
}

// State is the decode engine's state.
type State string

const (
	StateIdle         State = "IDLE"
	StateAccumulating State = "ACCUMULATING"
	StateAwaitingGap  State = "AWAITING_GAP"
	StateClearing     State = "CLEARING"
)

// Indicator is what the status light should show.
type Indicator string

const (
	IndicatorIdle     Indicator = "IDLE"
	IndicatorActive   Indicator = "ACTIVE"
	IndicatorValid    Indicator = "VALID"
	IndicatorInvalid  Indicator = "INVALID"
	IndicatorClearing Indicator = "CLEARING"
)

// EventType identifies an engine output.
type EventType string

const (
	EventPress   EventType = "PRESS"   // key went down
	EventSymbol  EventType = "SYMBOL"  // key came up, symbol appended
	EventChar    EventType = "CHAR"    // pattern decoded to a letter
	EventInvalid EventType = "INVALID" // pattern matched nothing
	EventClear   EventType = "CLEAR"   // hold-to-clear fired
	EventRelease EventType = "RELEASE" // key came up after a clear
)

// Event is a single engine output for the display, light and publishers.
type Event struct {
	Time      Millis
	Type      EventType
	Indicator Indicator
	// Char is the decoded letter for EventChar and morse.InvalidMarker for
	// EventInvalid. Zero otherwise.
	Char rune
	// Pattern is the dot/dash pattern after the event (SYMBOL) or the
	// pattern that was looked up (CHAR, INVALID).
	Pattern string
	// Symbol is set for EventSymbol.
	Symbol morse.Symbol
	// Duration is the press length for SYMBOL and RELEASE and the gap
	// length for PRESS, CHAR and INVALID where one was measured.
	Duration Millis
}

// Input is a single raw sample of the key.
type Input struct {
	Pressed bool // true = input reads high
	Time    Millis
}

// Thresholds holds the fixed caps and the adaptive multiplier.
type Thresholds struct {
	Debounce        Millis  // minimum spacing of confirmed transitions
	ShortPressCap   Millis  // presses below this are always dots
	LongPressCap    Millis  // presses above this are always dashes
	ClearHold       Millis  // holding longer than this clears the display
	Multiplier      float64 // k in mean + k*stddev
	GapFloor        Millis  // lower clamp of the end-of-character boundary
	FinalizeGap     Millis  // upper clamp; a gap this long always ends a character
	HistoryCapacity int     // samples kept per duration history
}

// DefaultThresholds returns the stock timing.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Debounce:        50,
		ShortPressCap:   100,
		LongPressCap:    300,
		ClearHold:       2000,
		Multiplier:      1.5,
		GapFloor:        300,
		FinalizeGap:     2000,
		HistoryCapacity: morse.MaxPatternLen - 1,
	}
}

// EventCounts tracks engine outputs since startup.
type EventCounts struct {
	Dots    int
	Dashes  int
	Decoded int
	Invalid int
	Clears  int
}

// Stats is a snapshot of the running duration statistics.
type Stats struct {
	PressSamples int
	PressMean    float64
	PressStdDev  float64
	GapSamples   int
	GapMean      float64
	GapStdDev    float64
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Time   Millis
	Uptime Millis
	Counts EventCounts
}
