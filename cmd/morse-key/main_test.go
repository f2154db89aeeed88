package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sweeney/morse-key/internal/display"
	"github.com/sweeney/morse-key/internal/gpio"
	"github.com/sweeney/morse-key/internal/indicator"
	"github.com/sweeney/morse-key/internal/logic"
	"github.com/sweeney/morse-key/internal/mqtt"
	"github.com/sweeney/morse-key/internal/status"
	"github.com/sweeney/morse-key/internal/transcript"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "")
	t.Setenv(envNetworkIP, "")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.Type != "" || info.IP != "" {
		t.Errorf("expected empty Type and IP, got %q %q", info.Type, info.IP)
	}
}

func TestResolveWSBroker(t *testing.T) {
	tests := []struct {
		ws, broker, want string
	}{
		{"", "tcp://pi:1883", ""},
		{"ws://other:8080", "tcp://pi:1883", "ws://other:8080"},
		{"=broker", "tcp://pi:1883", "ws://pi:9001"},
		{"=broker", "tcp://192.168.1.5:1883", "ws://192.168.1.5:9001"},
		{"=broker", "", ""},
	}
	for _, tt := range tests {
		if got := resolveWSBroker(tt.ws, tt.broker); got != tt.want {
			t.Errorf("resolveWSBroker(%q, %q) = %q, want %q", tt.ws, tt.broker, got, tt.want)
		}
	}
}

// --- runLoop tests ---

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of level.
func repeat(level bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = level
	}
	return out
}

func concat(parts ...[]bool) []bool {
	var out []bool
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// faultReader wraps a FakeReader and returns errors for a range of Read() calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (r *faultReader) Read() (bool, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return false, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

type fakeKeyer struct {
	keys []bool
}

func (k *fakeKeyer) Key(down bool) { k.keys = append(k.keys, down) }

type testRig struct {
	d      *daemon
	pub    *mqtt.FakePublisher
	screen *display.Memory
	light  *indicator.Fake
	tone   *fakeKeyer
}

func newRig(reader gpio.Reader, heartbeat time.Duration) *testRig {
	r := &testRig{
		pub:    mqtt.NewFakePublisher(),
		screen: display.NewMemory(display.DefaultWidth),
		light:  &indicator.Fake{},
		tone:   &fakeKeyer{},
	}
	r.d = &daemon{
		reader:     reader,
		th:         logic.DefaultThresholds(),
		screen:     r.screen,
		light:      r.light,
		publisher:  r.pub,
		mqttStatus: r.pub,
		tracker:    status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{}),
		session:    uuid.New(),
		tone:       r.tone,
		heartbeat:  heartbeat,
	}
	return r
}

// drive runs the loop for nTicks at 10ms per tick, then sends signal.
func (r *testRig) drive(t *testing.T, nTicks int, signal os.Signal) {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 10*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.d.runLoop(clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
}

// Samples are taken every 10ms starting at 10ms. Seven high samples give
// a 70ms dot and 35 a 350ms dash, each followed by a 70ms intra-character
// gap. Both clear the 50ms debounce window. 35 more low samples take the
// gap past the 300ms floor.
var (
	dot  = concat(repeat(true, 7), repeat(false, 7))
	dash = concat(repeat(true, 35), repeat(false, 7))
	gap  = repeat(false, 35)
)

func TestRunLoopNoEventsWhenIdle(t *testing.T) {
	r := newRig(gpio.NewFakeReader(repeat(false, 20)), 0)
	r.drive(t, 20, syscall.SIGTERM)

	if len(r.pub.Events) != 0 {
		t.Errorf("expected 0 key events, got %d", len(r.pub.Events))
	}
	if len(r.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(r.pub.SystemEvents))
	}
	if r.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", r.pub.SystemEvents[0].Event)
	}
}

func TestRunLoopDecodesE(t *testing.T) {
	samples := concat(dot, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if len(r.pub.Events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(r.pub.Events))
	}
	ev := r.pub.Events[0]
	if ev.Type != logic.EventChar || ev.Char != 'E' {
		t.Errorf("expected CHAR E, got %s %q", ev.Type, ev.Char)
	}
	if got := r.screen.Lines(); got[0] != "E" || got[1] != "" {
		t.Errorf("display: got %q", got)
	}
	snap := r.d.tracker.Snapshot()
	if snap.Display[0] != "E" {
		t.Errorf("tracker display: got %q", snap.Display)
	}
	// Shutdown turns the light off.
	if snap.Indicator != logic.IndicatorIdle {
		t.Errorf("tracker indicator after shutdown: got %s", snap.Indicator)
	}
}

func TestRunLoopDecodesWord(t *testing.T) {
	// S O S
	s := concat(dot, dot, dot, gap)
	o := concat(dash, dash, dash, gap)
	samples := concat(s, o, s)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.pub.Chars(); got != "SOS" {
		t.Errorf("decoded %q, want SOS", got)
	}
	if got := r.screen.Lines()[0]; got != "SOS" {
		t.Errorf("display: got %q", got)
	}
}

func TestRunLoopFullPatternDecodesWithoutGap(t *testing.T) {
	// H is four dots; the fourth symbol decodes at once.
	samples := concat(dot, dot, dot, dot)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.pub.Chars(); got != "H" {
		t.Errorf("decoded %q, want H", got)
	}
}

func TestRunLoopInvalidPattern(t *testing.T) {
	// ---- is not a letter.
	samples := concat(dash, dash, dash, dash)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if len(r.pub.Events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(r.pub.Events))
	}
	if r.pub.Events[0].Type != logic.EventInvalid {
		t.Errorf("expected INVALID, got %s", r.pub.Events[0].Type)
	}
	if got := r.screen.Lines()[0]; got != "?" {
		t.Errorf("display: got %q", got)
	}
}

func TestRunLoopBounceRejection(t *testing.T) {
	// A short press with chatter as the contacts close and open: only one
	// dot is recorded, so the result is E rather than I.
	samples := concat(
		[]bool{true, false, true, false, true},
		gap,
	)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.pub.Chars(); got != "E" {
		t.Errorf("decoded %q, want E", got)
	}
}

func TestRunLoopClear(t *testing.T) {
	samples := concat(dot, gap, repeat(true, 210), repeat(false, 10))
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if len(r.pub.Events) != 2 {
		t.Fatalf("expected CHAR and CLEAR, got %d events", len(r.pub.Events))
	}
	if r.pub.Events[1].Type != logic.EventClear {
		t.Errorf("expected CLEAR, got %s", r.pub.Events[1].Type)
	}
	if got := r.screen.Lines(); got != [2]string{} {
		t.Errorf("display not cleared: %q", got)
	}
	if got := r.tone.keys[len(r.tone.keys)-1]; got {
		t.Error("tone left on after clear")
	}
}

func TestRunLoopIndicator(t *testing.T) {
	samples := concat(dot, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	want := []logic.Indicator{
		logic.IndicatorActive,
		logic.IndicatorIdle,
		logic.IndicatorValid,
		logic.IndicatorIdle, // shutdown
	}
	if len(r.light.States) != len(want) {
		t.Fatalf("got states %v, want %v", r.light.States, want)
	}
	for i := range want {
		if r.light.States[i] != want[i] {
			t.Errorf("state %d: got %s, want %s", i, r.light.States[i], want[i])
		}
	}
}

func TestRunLoopSidetoneFollowsKey(t *testing.T) {
	samples := concat(dot, dash, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	want := []bool{true, false, true, false, false}
	if len(r.tone.keys) != len(want) {
		t.Fatalf("got keys %v, want %v", r.tone.keys, want)
	}
	for i := range want {
		if r.tone.keys[i] != want[i] {
			t.Errorf("key %d: got %v, want %v", i, r.tone.keys[i], want[i])
		}
	}
}

func TestRunLoopRecordsTranscript(t *testing.T) {
	store, err := transcript.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	samples := concat(dash, gap, dot, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.d.store = store
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.d.tracker.Snapshot().Transcript; got != "TE" {
		t.Errorf("transcript: got %q, want TE", got)
	}
}

func TestRunLoopTranscriptWithoutStore(t *testing.T) {
	samples := concat(dot, gap, dash, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.d.tracker.Snapshot().Transcript; got != "ET" {
		t.Errorf("transcript: got %q, want ET", got)
	}
}

func TestRunLoopTranscriptContinuesStoredHistory(t *testing.T) {
	store, err := transcript.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	earlier := transcript.Entry{Session: uuid.New(), Time: time.Now(), Kind: transcript.KindChar, Char: "Q", Pattern: "--.-"}
	if _, err := store.Record(context.Background(), earlier); err != nil {
		t.Fatalf("record: %v", err)
	}

	samples := concat(dot, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.d.store = store
	r.d.loadTranscript()
	if got := r.d.tracker.Snapshot().Transcript; got != "Q" {
		t.Fatalf("after load: got %q, want Q", got)
	}
	r.drive(t, len(samples), syscall.SIGTERM)

	if got := r.d.tracker.Snapshot().Transcript; got != "QE" {
		t.Errorf("transcript: got %q, want QE", got)
	}
	stored, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(stored) != 2 || stored[1].Char != "E" {
		t.Errorf("stored: got %+v", stored)
	}
}

func TestAppendTranscriptKeepsWindow(t *testing.T) {
	r := newRig(gpio.NewFakeReader(nil), 0)
	for i := range recentTranscript + 6 {
		r.d.appendTranscript(transcript.Entry{Kind: transcript.KindChar, Char: string(rune('A' + i%26))})
	}
	if len(r.d.recent) != recentTranscript {
		t.Fatalf("window: got %d entries, want %d", len(r.d.recent), recentTranscript)
	}
	if got := r.d.recent[0].Char; got != "G" {
		t.Errorf("oldest kept: got %q, want G", got)
	}

	r.d.appendTranscript(transcript.Entry{Kind: transcript.KindClear})
	if got := r.d.tracker.Snapshot().Transcript; got != "" {
		t.Errorf("after clear: got %q", got)
	}
}

func TestRunLoopTracksMQTTQueue(t *testing.T) {
	r := newRig(gpio.NewFakeReader(repeat(false, 3)), 0)
	r.pub.Queued, r.pub.Lost = 5, 2
	r.drive(t, 3, syscall.SIGTERM)

	snap := r.d.tracker.Snapshot()
	if snap.MQTTBuffered != 5 || snap.MQTTDropped != 2 {
		t.Errorf("queue: got %d/%d, want 5/2", snap.MQTTBuffered, snap.MQTTDropped)
	}
}

func TestOutputsOff(t *testing.T) {
	r := newRig(gpio.NewFakeReader(nil), 0)
	r.d.handle(time.Now(), logic.Event{Type: logic.EventPress, Indicator: logic.IndicatorActive})

	r.d.outputsOff()

	if r.light.Last() != logic.IndicatorIdle || r.d.indicator != logic.IndicatorIdle {
		t.Errorf("light: got %s, tracked %s", r.light.Last(), r.d.indicator)
	}
	if want := []bool{true, false}; len(r.tone.keys) != 2 || r.tone.keys[1] {
		t.Errorf("tone keys: got %v, want %v", r.tone.keys, want)
	}
}

func TestRunLoopLongHoldWithMissedTicksClears(t *testing.T) {
	// A stalled loop sees the key down once and next sees it up 2.5s later.
	clock := []time.Time{}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, ms := range []int{0, 10, 20, 2520, 2530} {
		clock = append(clock, base.Add(time.Duration(ms)*time.Millisecond))
	}
	now := func() time.Time {
		t := clock[0]
		if len(clock) > 1 {
			clock = clock[1:]
		}
		return t
	}

	r := newRig(gpio.NewFakeReader([]bool{false, true, false, false}), 0)
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() { errCh <- r.d.runLoop(now, tick, sig) }()
	for range 4 {
		tick <- time.Time{}
	}
	sig <- syscall.SIGTERM
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}

	if len(r.pub.Events) != 1 || r.pub.Events[0].Type != logic.EventClear {
		t.Fatalf("expected a single CLEAR, got %+v", r.pub.Events)
	}
	if got := r.screen.Lines()[0]; got != "" {
		t.Errorf("display: got %q", got)
	}
}

func TestRunLoopGPIOReadError(t *testing.T) {
	inner := gpio.NewFakeReader(repeat(false, 2))
	reader := &faultReader{inner: inner, faultStart: 2, faultEnd: 4}
	r := newRig(reader, 0)
	r.drive(t, 4, syscall.SIGTERM)

	found := false
	for _, se := range r.pub.SystemEvents {
		if se.Event == "SHUTDOWN" {
			found = true
		}
	}
	if !found {
		t.Error("expected SHUTDOWN system event after GPIO errors")
	}
}

func TestRunLoopGPIOErrorRecovery(t *testing.T) {
	// Errors in the middle of a gap are skipped; the character still decodes.
	inner := gpio.NewFakeReader(concat(dot, gap))
	reader := &faultReader{inner: inner, faultStart: 12, faultEnd: 15}
	r := newRig(reader, 0)
	r.drive(t, len(dot)+len(gap)+3, syscall.SIGTERM)

	if got := r.pub.Chars(); got != "E" {
		t.Errorf("decoded %q after recovery, want E", got)
	}
}

func TestRunLoopPublishError(t *testing.T) {
	samples := concat(dot, gap)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.pub.PublishError = errors.New("broker unavailable")
	r.drive(t, len(samples), syscall.SIGTERM)

	if len(r.pub.Events) != 0 {
		t.Errorf("expected 0 recorded events (publish failed), got %d", len(r.pub.Events))
	}
	// Display still updates.
	if got := r.screen.Lines()[0]; got != "E" {
		t.Errorf("display: got %q", got)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// 100ms heartbeat with 10ms ticks: fires at tick 10.
	r := newRig(gpio.NewFakeReader(repeat(false, 15)), 100*time.Millisecond)
	r.drive(t, 15, syscall.SIGTERM)

	var heartbeats, shutdowns int
	for _, se := range r.pub.SystemEvents {
		switch se.Event {
		case "HEARTBEAT":
			heartbeats++
			if !strings.Contains(string(se.RawPayload), `"event":"HEARTBEAT"`) {
				t.Errorf("unexpected heartbeat payload: %s", se.RawPayload)
			}
		case "SHUTDOWN":
			shutdowns++
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected 1 HEARTBEAT event, got %d", heartbeats)
	}
	if shutdowns != 1 {
		t.Errorf("expected 1 SHUTDOWN event, got %d", shutdowns)
	}
}

func TestRunLoopHeartbeatIncludesNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.42")

	r := newRig(gpio.NewFakeReader(repeat(false, 15)), 100*time.Millisecond)
	r.drive(t, 15, syscall.SIGTERM)

	var hb *mqtt.SystemEvent
	for i := range r.pub.SystemEvents {
		if r.pub.SystemEvents[i].Event == "HEARTBEAT" {
			hb = &r.pub.SystemEvents[i]
			break
		}
	}
	if hb == nil {
		t.Fatal("expected a HEARTBEAT system event")
	}
	if !strings.Contains(string(hb.RawPayload), "192.168.1.42") {
		t.Errorf("heartbeat payload missing network info: %s", hb.RawPayload)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	r := newRig(gpio.NewFakeReader(repeat(false, 4)), 0)
	r.drive(t, 4, syscall.SIGINT)

	if len(r.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(r.pub.SystemEvents))
	}
	se := r.pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", se.Event)
	}
	if se.Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
}

func TestRunLoopShutdownSIGTERM(t *testing.T) {
	r := newRig(gpio.NewFakeReader(repeat(false, 4)), 0)
	r.drive(t, 4, syscall.SIGTERM)

	se := r.pub.SystemEvents[0]
	if se.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", se.Reason)
	}
	if !strings.Contains(string(se.RawPayload), `"reason":"SIGTERM"`) {
		t.Errorf("payload missing reason: %s", se.RawPayload)
	}
}

func TestRunLoopShutdownWhilePressed(t *testing.T) {
	r := newRig(gpio.NewFakeReader(repeat(true, 5)), 0)
	r.drive(t, 5, syscall.SIGTERM)

	if r.light.Last() != logic.IndicatorIdle {
		t.Errorf("light: got %s, want IDLE", r.light.Last())
	}
	if got := r.tone.keys[len(r.tone.keys)-1]; got {
		t.Error("tone left on after shutdown")
	}
}

func TestRunLoopTrackerState(t *testing.T) {
	samples := concat(dot, dot)
	r := newRig(gpio.NewFakeReader(samples), 0)
	r.pub.Connected = true
	r.drive(t, len(samples), syscall.SIGTERM)

	snap := r.d.tracker.Snapshot()
	if snap.State != logic.StateAwaitingGap {
		t.Errorf("state: got %s, want AWAITING_GAP", snap.State)
	}
	if snap.Pattern != "00" {
		t.Errorf("pattern: got %q, want 00", snap.Pattern)
	}
	if snap.Counts.Dots != 2 {
		t.Errorf("dots: got %d, want 2", snap.Counts.Dots)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTT connected")
	}
}

// --- command tests ---

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"chip", "pin", "poll", "broker", "http", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}

func TestSubcommands(t *testing.T) {
	want := map[string]bool{"table": false, "state": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestPrintTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := printTable(&buf); err != nil {
		t.Fatalf("printTable: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 26 {
		t.Fatalf("expected 26 lines, got %d", len(lines))
	}
	if lines[0] != "A  .-    01" {
		t.Errorf("first line: got %q", lines[0])
	}
	if lines[25] != "Z  --..  1100" {
		t.Errorf("last line: got %q", lines[25])
	}
}

func TestPrintState(t *testing.T) {
	var buf bytes.Buffer
	if err := printState(&buf, gpio.NewFakeReader([]bool{true})); err != nil {
		t.Fatalf("printState: %v", err)
	}
	if buf.String() != "PRESSED\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	reader := gpio.NewFakeReader(nil)
	if err := printState(&buf, reader); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestSetupLoggingDebug(t *testing.T) {
	var buf bytes.Buffer
	setupLogging(&buf, true)
	defer setupLogging(os.Stderr, false)

	log.Debug().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("debug message not logged: %q", buf.String())
	}

	buf.Reset()
	setupLogging(&buf, false)
	log.Debug().Msg("quiet")
	if buf.Len() != 0 {
		t.Errorf("debug message logged at info level: %q", buf.String())
	}
}
