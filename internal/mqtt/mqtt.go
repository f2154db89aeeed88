// Package mqtt sends decoded characters and daemon lifecycle messages to a
// broker. Tests use FakePublisher.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/morse-key/internal/logic"
)

// Topic is the MQTT topic for decoded key events.
const Topic = "morse/key/events"

// TopicSystem carries STARTUP, HEARTBEAT, SHUTDOWN and the will.
const TopicSystem = "morse/key/system"

// DefaultBufferSize is how many messages are held while disconnected.
const DefaultBufferSize = 100

// Publisher is implemented by RealPublisher, NopPublisher and FakePublisher.
type Publisher interface {
	// Publish sends a key event to the broker. Only CHAR, INVALID and
	// CLEAR events are published; others are ignored.
	// An error is for logging only; the daemon keeps decoding.
	Publish(at time.Time, event logic.Event) error

	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus is satisfied by publishers that know their link state
// and the size of their offline queue.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
	Dropped() int
}

// Publishable reports whether an event goes to the broker.
func Publishable(event logic.Event) bool {
	switch event.Type {
	case logic.EventChar, logic.EventInvalid, logic.EventClear:
		return true
	}
	return false
}

// SystemEvent is a daemon lifecycle message. The daemon fills RawPayload
// with a status snapshot; the will uses the short form.
type SystemEvent struct {
	Event    string // STARTUP, HEARTBEAT or SHUTDOWN
	Reason   string // shutdown signal name
	Retained bool

	Timestamp  time.Time
	RawPayload []byte // sent as-is when non-nil
}

// Payload is the JSON sent on Topic.
type Payload struct {
	Morse KeyPayload `json:"morse"`
}

// KeyPayload is one decoded key event.
type KeyPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Char      string `json:"char,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Indicator string `json:"indicator"`
	GapMs     uint64 `json:"gap_ms,omitempty"`
}

// FormatPayload renders a key event. Char is omitted for CLEAR.
func FormatPayload(at time.Time, event logic.Event) ([]byte, error) {
	inner := KeyPayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Pattern:   event.Pattern,
		Indicator: string(event.Indicator),
		GapMs:     uint64(event.Duration),
	}
	if event.Char != 0 {
		inner.Char = string(event.Char)
	}
	return json.Marshal(Payload{Morse: inner})
}

// SystemPayload is the short lifecycle form, used by the will.
type SystemPayload struct {
	System LifecycleJSON `json:"system"`
}

type LifecycleJSON struct {
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// FormatSystemPayload returns RawPayload when set, otherwise the short form.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{System: LifecycleJSON{
		Event:     event.Event,
		Reason:    event.Reason,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}})
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(time.Time, logic.Event) error { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error      { return nil }
func (NopPublisher) Close() error                         { return nil }
func (NopPublisher) IsConnected() bool                    { return false }
func (NopPublisher) Buffered() int                        { return 0 }
func (NopPublisher) Dropped() int                         { return 0 }
