package mqtt

import (
	"strings"
	"sync"
	"time"

	"github.com/sweeney/morse-key/internal/logic"
)

// FakePublisher records what would have gone to the broker. Fields may be
// read directly once the code under test has stopped publishing.
type FakePublisher struct {
	mu sync.Mutex

	Events   []logic.Event // publishable key events, in order
	Times    []time.Time   // wall-clock time passed with each event
	Payloads [][]byte      // JSON sent for each event

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	PublishError       error // returned by Publish for publishable events
	PublishSystemError error // returned by PublishSystem

	Closed    bool
	Connected bool // returned by IsConnected
	Queued    int  // returned by Buffered
	Lost      int  // returned by Dropped
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the key event. Events that are not Publishable are
// dropped, as the real publisher does.
func (f *FakePublisher) Publish(at time.Time, event logic.Event) error {
	if !Publishable(event) {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(at, event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Times = append(f.Times, at)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Chars returns the decoded text: every CHAR and INVALID rune in order,
// with CLEAR discarding what came before.
func (f *FakePublisher) Chars() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sb strings.Builder
	for _, e := range f.Events {
		switch e.Type {
		case logic.EventClear:
			sb.Reset()
		case logic.EventChar, logic.EventInvalid:
			sb.WriteRune(e.Char)
		}
	}
	return sb.String()
}

// SystemEventNames returns the Event field of each system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports the Connected field.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

func (f *FakePublisher) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Queued
}

func (f *FakePublisher) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Lost
}

// Reset clears everything recorded and any injected errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events, f.Times, f.Payloads = nil, nil, nil
	f.SystemEvents, f.SystemPayloads = nil, nil
	f.PublishError, f.PublishSystemError = nil, nil
	f.Closed, f.Connected = false, false
	f.Queued, f.Lost = 0, 0
}
