package logic

import "github.com/sweeney/morse-key/internal/morse"

// Engine turns debounced key samples into decoded characters.
type Engine struct {
	th        Thresholds
	debouncer *Debouncer
	state     State
	pattern   morse.Pattern
	presses   *History
	gaps      *History

	startTime     Millis
	eventCounts   EventCounts
	lastHeartbeat Millis
}

// NewEngine creates a decode engine. startTime is used for calculating
// uptime in heartbeat events.
func NewEngine(th Thresholds, startTime Millis) *Engine {
	return &Engine{
		th:            th,
		debouncer:     NewDebouncer(th.Debounce),
		state:         StateIdle,
		presses:       NewHistory(th.HistoryCapacity),
		gaps:          NewHistory(th.HistoryCapacity),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new input sample and returns any events that should be
// emitted. It must be called at a steady cadence: gap and clear thresholds
// are only re-evaluated when a sample arrives.
func (e *Engine) Process(input Input) []Event {
	var events []Event
	now := input.Time

	switch e.debouncer.Sample(input.Pressed, now) {
	case PressConfirmed:
		events = e.handlePress(now, events)
	case ReleaseConfirmed:
		events = e.handleRelease(now, events)
	}

	btn := e.debouncer.State()
	if btn.Pressed {
		if e.state != StateClearing && Elapsed(now, btn.PressStart) > e.th.ClearHold {
			events = e.clear(now, events)
		}
		return events
	}

	if e.state == StateAwaitingGap {
		gap := Elapsed(now, btn.ReleaseStart)
		if e.classifyGap(gap) == EndOfCharacter {
			events = e.decode(now, gap, events)
		}
	}
	return events
}

func (e *Engine) handlePress(now Millis, events []Event) []Event {
	var gap Millis
	if e.state == StateAwaitingGap {
		// The tick that would have expired the gap may not have come yet.
		gap = Elapsed(now, e.debouncer.State().LastRelease)
		if e.classifyGap(gap) == EndOfCharacter {
			events = e.decode(now, gap, events)
		} else {
			e.gaps.Push(gap)
			e.state = StateAccumulating
		}
	}

	return append(events, Event{
		Time:      now,
		Type:      EventPress,
		Indicator: IndicatorActive,
		Pattern:   e.pattern.String(),
		Duration:  gap,
	})
}

func (e *Engine) handleRelease(now Millis, events []Event) []Event {
	btn := e.debouncer.State()
	d := Elapsed(now, btn.PressStart)

	if e.state == StateClearing || d > e.th.ClearHold {
		if e.state != StateClearing {
			// No tick landed between ClearHold and the release.
			events = e.clear(now, events)
		}
		e.state = StateIdle
		return append(events, Event{
			Time:      now,
			Type:      EventRelease,
			Indicator: IndicatorIdle,
			Duration:  d,
		})
	}

	sym := ClassifyPress(d, Mean(e.presses), StdDev(e.presses), e.th)
	if e.pattern.Full() {
		// Unreachable while full patterns decode on release. Finish the
		// stored character and let this symbol start the next one.
		events = e.decode(now, 0, events)
	}
	e.presses.Push(d)
	_ = e.pattern.Append(sym) // never full here

	if sym == morse.Dash {
		e.eventCounts.Dashes++
	} else {
		e.eventCounts.Dots++
	}

	events = append(events, Event{
		Time:      now,
		Type:      EventSymbol,
		Indicator: IndicatorIdle,
		Pattern:   e.pattern.String(),
		Symbol:    sym,
		Duration:  d,
	})
	e.state = StateAwaitingGap

	if e.pattern.Full() {
		events = e.decode(now, 0, events)
	}
	return events
}

func (e *Engine) classifyGap(gap Millis) GapKind {
	return ClassifyGap(gap, Mean(e.gaps), StdDev(e.gaps), e.pattern.Full(), e.th)
}

// decode looks up the current pattern, emits the result and starts a new
// character.
func (e *Engine) decode(now, gap Millis, events []Event) []Event {
	ev := Event{
		Time:     now,
		Pattern:  e.pattern.String(),
		Duration: gap,
	}
	if r, ok := morse.Lookup(e.pattern); ok {
		ev.Type = EventChar
		ev.Indicator = IndicatorValid
		ev.Char = r
		e.eventCounts.Decoded++
	} else {
		ev.Type = EventInvalid
		ev.Indicator = IndicatorInvalid
		ev.Char = morse.InvalidMarker
		e.eventCounts.Invalid++
	}

	e.resetCharacter()
	e.state = StateIdle
	return append(events, ev)
}

func (e *Engine) clear(now Millis, events []Event) []Event {
	e.resetCharacter()
	e.state = StateClearing
	e.eventCounts.Clears++
	return append(events, Event{
		Time:      now,
		Type:      EventClear,
		Indicator: IndicatorClearing,
	})
}

func (e *Engine) resetCharacter() {
	e.pattern.Reset()
	e.presses.Reset()
	e.gaps.Reset()
}

// Reset returns the engine to its power-on state. Event counts are kept.
func (e *Engine) Reset() {
	e.resetCharacter()
	e.debouncer = NewDebouncer(e.th.Debounce)
	e.state = StateIdle
}

// State returns the engine state.
func (e *Engine) State() State {
	return e.state
}

// Pattern returns the symbols entered so far for the current character.
func (e *Engine) Pattern() morse.Pattern {
	return e.pattern
}

// Button returns the debounced key state.
func (e *Engine) Button() ButtonState {
	return e.debouncer.State()
}

// Thresholds returns the timing the engine was built with.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Stats returns the current press and gap statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		PressSamples: e.presses.Len(),
		PressMean:    Mean(e.presses),
		PressStdDev:  StdDev(e.presses),
		GapSamples:   e.gaps.Len(),
		GapMean:      Mean(e.gaps),
		GapStdDev:    StdDev(e.gaps),
	}
}

// EventCountsSnapshot returns a copy of the event counters.
func (e *Engine) EventCountsSnapshot() EventCounts {
	return e.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if interval is 0 (disabled)
// or has not yet elapsed.
func (e *Engine) CheckHeartbeat(now, interval Millis) *HeartbeatData {
	if interval == 0 {
		return nil
	}
	if Elapsed(now, e.lastHeartbeat) < interval {
		return nil
	}

	e.lastHeartbeat = now
	return &HeartbeatData{
		Time:   now,
		Uptime: Elapsed(now, e.startTime),
		Counts: e.eventCounts,
	}
}
