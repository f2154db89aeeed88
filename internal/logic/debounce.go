package logic

// Transition is a confirmed change of the key.
type Transition uint8

const (
	NoTransition Transition = iota
	PressConfirmed
	ReleaseConfirmed
)

// ButtonState is the debounced view of the key.
// Exactly one of "pressed since PressStart" or "released since
// ReleaseStart" holds at any sample.
type ButtonState struct {
	Pressed      bool
	PressStart   Millis
	ReleaseStart Millis
	LastPress    Millis
	LastRelease  Millis
}

// Debouncer filters raw reads into confirmed transitions. It never blocks:
// each call looks at one sample and returns.
type Debouncer struct {
	delay      Millis
	state      ButtonState
	started    bool
	hasPress   bool
	hasRelease bool
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(delay Millis) *Debouncer {
	return &Debouncer{delay: delay}
}

// Sample feeds one raw read. A press is confirmed only when more than the
// debounce window has passed since the last confirmed press and the last
// confirmed release. A release is confirmed on the first low read more
// than the window after the press. Anything sooner is a bounce and is
// dropped silently.
func (d *Debouncer) Sample(raw bool, now Millis) Transition {
	if !d.started {
		d.started = true
		d.state.ReleaseStart = now
	}

	if raw {
		if d.state.Pressed {
			return NoTransition
		}
		if d.hasPress && Elapsed(now, d.state.LastPress) <= d.delay {
			return NoTransition
		}
		if d.hasRelease && Elapsed(now, d.state.LastRelease) <= d.delay {
			return NoTransition
		}
		d.state.Pressed = true
		d.state.PressStart = now
		d.state.LastPress = now
		d.hasPress = true
		return PressConfirmed
	}

	if !d.state.Pressed || Elapsed(now, d.state.LastPress) <= d.delay {
		return NoTransition
	}
	d.state.Pressed = false
	d.state.ReleaseStart = now
	d.state.LastRelease = now
	d.hasRelease = true
	return ReleaseConfirmed
}

// State returns the current debounced state.
func (d *Debouncer) State() ButtonState {
	return d.state
}
