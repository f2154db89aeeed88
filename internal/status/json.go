package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is served at /index.json and sent with lifecycle events.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Session       string       `json:"session,omitempty"`
	State         string       `json:"state"`
	Indicator     string       `json:"indicator"`
	Pattern       string       `json:"pattern"`
	Pressed       bool         `json:"pressed"`
	Display       []string     `json:"display"`
	Transcript    string       `json:"transcript"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Stats         StatsJSON    `json:"stats"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
	Dropped   int    `json:"dropped"`
}

// StatsJSON is the JSON representation of the duration statistics.
// Values are rounded to 0.1 ms.
type StatsJSON struct {
	PressSamples int     `json:"press_samples"`
	PressMeanMs  float64 `json:"press_mean_ms"`
	PressStdMs   float64 `json:"press_std_ms"`
	GapSamples   int     `json:"gap_samples"`
	GapMeanMs    float64 `json:"gap_mean_ms"`
	GapStdMs     float64 `json:"gap_std_ms"`
}

// CountsJSON totals since startup. CLEAR does not reset them.
type CountsJSON struct {
	Dots    int `json:"dots"`
	Dashes  int `json:"dashes"`
	Decoded int `json:"decoded"`
	Invalid int `json:"invalid"`
	Clears  int `json:"clears"`
}

type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON uses the same keys as the config file where one exists.
type ConfigJSON struct {
	PollMs          int64   `json:"poll_ms"`
	DebounceMs      int64   `json:"debounce_ms"`
	ShortPressCapMs int64   `json:"short_press_cap_ms"`
	LongPressCapMs  int64   `json:"long_press_cap_ms"`
	ClearHoldMs     int64   `json:"clear_hold_ms"`
	Multiplier      float64 `json:"threshold_multiplier"`
	GapFloorMs      int64   `json:"gap_floor_ms"`
	FinalizeGapMs   int64   `json:"finalize_gap_ms"`
	HeartbeatMs     int64   `json:"heartbeat_ms"`
	Broker          string  `json:"broker"`
	HTTPPort        string  `json:"http_port"`
	WSBroker        string  `json:"ws_broker,omitempty"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func build(snap Snapshot, event, reason string) StatusJSON {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		Event:         event,
		Reason:        reason,
		Session:       snap.Config.Session,
		State:         state,
		Indicator:     string(snap.Indicator),
		Pattern:       snap.Pattern,
		Pressed:       snap.Pressed,
		Display:       []string{snap.Display[0], snap.Display[1]},
		Transcript:    snap.Transcript,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Buffered:  snap.MQTTBuffered,
			Dropped:   snap.MQTTDropped,
		},
		Stats: StatsJSON{
			PressSamples: snap.Stats.PressSamples,
			PressMeanMs:  round1(snap.Stats.PressMean),
			PressStdMs:   round1(snap.Stats.PressStdDev),
			GapSamples:   snap.Stats.GapSamples,
			GapMeanMs:    round1(snap.Stats.GapMean),
			GapStdMs:     round1(snap.Stats.GapStdDev),
		},
		Counts: CountsJSON(snap.Counts),
		Config: ConfigJSON{
			PollMs:          snap.Config.PollMs,
			DebounceMs:      snap.Config.DebounceMs,
			ShortPressCapMs: snap.Config.ShortPressCapMs,
			LongPressCapMs:  snap.Config.LongPressCapMs,
			ClearHoldMs:     snap.Config.ClearHoldMs,
			Multiplier:      snap.Config.Multiplier,
			GapFloorMs:      snap.Config.GapFloorMs,
			FinalizeGapMs:   snap.Config.FinalizeGapMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPPort:        snap.Config.HTTPPort,
			WSBroker:        snap.Config.WSBroker,
		},
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type: n.Type, IP: n.IP, Status: n.Status,
			Gateway: n.Gateway, WifiStatus: n.WifiStatus, SSID: n.SSID,
		}
	}
	return StatusJSON{Status: inner}
}

// FormatJSON is the indented form served over HTTP.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(build(snap, "", ""), "", "  ")
	return data
}

// FormatStatusEvent is the compact form published on TopicSystem.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	data, _ := json.Marshal(build(snap, event, reason))
	return data
}
