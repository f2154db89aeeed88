// Package status provides a thread-safe status tracker for the morse-key daemon.
// It is written by the run loop and read by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/morse-key/internal/logic"
)

// NetworkInfo is the host's network view, read from the environment at
// heartbeat time.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config is the effective settings, shown on the page and in status JSON.
type Config struct {
	Session         string // transcript session ID
	PollMs          int64
	DebounceMs      int64
	ShortPressCapMs int64
	LongPressCapMs  int64
	ClearHoldMs     int64
	Multiplier      float64
	GapFloorMs      int64
	FinalizeGapMs   int64
	HeartbeatMs     int64
	Broker          string
	HTTPPort        string
	WSBroker        string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Engine is the decode engine state copied out on every tick.
type Engine struct {
	State     logic.State
	Indicator logic.Indicator
	Pattern   string
	Pressed   bool
	Stats     logic.Stats
	Counts    logic.EventCounts
}

// Snapshot is a copy of everything the page and heartbeat report.
type Snapshot struct {
	Engine
	Display       [2]string
	Transcript    string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int // messages waiting for the broker
	MQTTDropped   int // messages the outbox discarded
	Network       *NetworkInfo
	Config        Config
}

func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker is written by the run loop and read by HTTP handlers.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker starts in IDLE with nothing decoded.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Engine: Engine{
				State:     logic.StateIdle,
				Indicator: logic.IndicatorIdle,
			},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the engine view. Called from runLoop on every tick.
func (t *Tracker) Update(e Engine) {
	t.mu.Lock()
	t.snap.Engine = e
	t.mu.Unlock()
}

// SetDisplay sets the two display lines.
func (t *Tracker) SetDisplay(lines [2]string) {
	t.mu.Lock()
	t.snap.Display = lines
	t.mu.Unlock()
}

// SetTranscript sets the recent transcript text.
func (t *Tracker) SetTranscript(text string) {
	t.mu.Lock()
	t.snap.Transcript = text
	t.mu.Unlock()
}

func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTQueue records the publisher's offline queue depth and losses.
func (t *Tracker) SetMQTTQueue(buffered, dropped int) {
	t.mu.Lock()
	t.snap.MQTTBuffered, t.snap.MQTTDropped = buffered, dropped
	t.mu.Unlock()
}

func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot copies the state and stamps Now with the wall clock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
