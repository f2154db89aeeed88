package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sweeney/morse-key/internal/config"
	"github.com/sweeney/morse-key/internal/display"
	"github.com/sweeney/morse-key/internal/gpio"
	"github.com/sweeney/morse-key/internal/indicator"
	"github.com/sweeney/morse-key/internal/logic"
	"github.com/sweeney/morse-key/internal/mqtt"
	"github.com/sweeney/morse-key/internal/recovery"
	"github.com/sweeney/morse-key/internal/sidetone"
	"github.com/sweeney/morse-key/internal/status"
	"github.com/sweeney/morse-key/internal/transcript"
	"github.com/sweeney/morse-key/internal/web"
)

// recentTranscript is how many entries the status page shows.
const recentTranscript = 64

// recorder stores and reads back transcript entries.
type recorder interface {
	Record(ctx context.Context, e transcript.Entry) (int64, error)
	Recent(ctx context.Context, n int) ([]transcript.Entry, error)
}

// daemon holds everything the run loop drives. Optional parts are nil
// when disabled.
type daemon struct {
	reader     gpio.Reader
	th         logic.Thresholds
	screen     display.Screen
	light      indicator.Sink
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	store      recorder
	session    uuid.UUID
	tone       sidetone.Keyer
	heartbeat  time.Duration
	indicator  logic.Indicator // last state sent to the light
	recent     []transcript.Entry
}

func run(s *config.Settings) error {
	session := uuid.New()
	d := &daemon{
		th:        s.Thresholds(),
		session:   session,
		heartbeat: time.Duration(s.HeartbeatS) * time.Second,
	}

	// Initialize GPIO
	reader, err := gpio.NewRealReader(s.GPIOChip, s.PinButton)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()
	d.reader = reader

	if s.RGBEnabled {
		light, err := gpio.NewRealLight(s.GPIOChip, s.PinRed, s.PinGreen, s.PinBlue)
		if err != nil {
			return fmt.Errorf("init rgb: %w", err)
		}
		defer light.Close()
		d.light = indicator.NewRGB(light)
	} else {
		d.light = indicator.NewConsole(os.Stdout)
	}
	d.screen = display.NewConsole(os.Stdout, s.DisplayWidth)

	// Initialize MQTT
	if s.Broker != "" {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   s.Broker,
			ClientID: "morse-key-" + session.String()[:8],
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		d.publisher, d.mqttStatus = pub, pub
	} else {
		d.publisher, d.mqttStatus = mqtt.NopPublisher{}, mqtt.NopPublisher{}
	}

	if s.TranscriptDB != "" {
		store, err := transcript.Open(s.TranscriptDB)
		if err != nil {
			return fmt.Errorf("init transcript: %w", err)
		}
		defer store.Close()
		d.store = store
	}

	if s.Sidetone {
		cfg := sidetone.DefaultConfig()
		cfg.Frequency = float64(s.SidetoneHz)
		player := sidetone.NewPlayer(cfg)
		if err := player.Start(); err != nil {
			// Audio is optional: keep decoding without it.
			log.Warn().Err(err).Msg("sidetone disabled")
		} else {
			defer player.Close()
			d.tone = player
		}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	d.tracker = status.NewTracker(time.Now(), statusConfig(s, session))
	if net := readNetworkInfo(); net != nil {
		d.tracker.SetNetwork(net)
	}
	d.loadTranscript()

	// Publish startup event with full status snapshot
	snap := d.tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := d.publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	}

	// Start HTTP status server
	if s.HTTPAddr != "" {
		srv := web.New(s.HTTPAddr, d.tracker)
		go func() {
			defer recovery.HandlePanicFunc(d.outputsOff)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", s.HTTPAddr).Msg("http status server listening")
	}

	log.Info().
		Str("session", session.String()).
		Int("pin", s.PinButton).
		Int("poll_ms", s.PollMs).
		Str("broker", s.Broker).
		Dur("heartbeat", d.heartbeat).
		Msg("started")

	ticker := time.NewTicker(time.Duration(s.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.runLoop(time.Now, ticker.C, sigCh)
}

func statusConfig(s *config.Settings, session uuid.UUID) status.Config {
	return status.Config{
		Session:         session.String(),
		PollMs:          int64(s.PollMs),
		DebounceMs:      int64(s.DebounceMs),
		ShortPressCapMs: int64(s.ShortPressCapMs),
		LongPressCapMs:  int64(s.LongPressCapMs),
		ClearHoldMs:     int64(s.ClearHoldMs),
		Multiplier:      s.ThresholdMultiplier,
		GapFloorMs:      int64(s.GapFloorMs),
		FinalizeGapMs:   int64(s.FinalizeGapMs),
		HeartbeatMs:     int64(s.HeartbeatS) * 1000,
		Broker:          s.Broker,
		HTTPPort:        s.HTTPAddr,
		WSBroker:        resolveWSBroker(s.WSBroker, s.Broker),
	}
}

// runLoop samples the key on every tick until a signal arrives.
func (d *daemon) runLoop(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	engine := logic.NewEngine(d.th, 0)
	if d.indicator == "" {
		d.indicator = logic.IndicatorIdle
	}
	heartbeat := logic.Millis(d.heartbeat.Milliseconds())

	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.outputsOff()
			d.syncTracker(engine)
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				log.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			pressed, err := d.reader.Read()
			if err != nil {
				log.Warn().Err(err).Msg("gpio read error")
				continue
			}

			ms := logic.Millis(t.Sub(startTime).Milliseconds())
			for _, event := range engine.Process(logic.Input{Pressed: pressed, Time: ms}) {
				d.handle(t, event)
			}

			if hb := engine.CheckHeartbeat(ms, heartbeat); hb != nil {
				log.Info().
					Dur("uptime", time.Duration(hb.Uptime)*time.Millisecond).
					Int("decoded", hb.Counts.Decoded).
					Int("invalid", hb.Counts.Invalid).
					Int("clears", hb.Counts.Clears).
					Msg("heartbeat")

				d.syncTracker(engine)
				if net := readNetworkInfo(); net != nil {
					d.tracker.SetNetwork(net)
				}
				hbEvent := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", ""),
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Warn().Err(err).Msg("heartbeat publish error")
				}
			}

			// Update status tracker for HTTP consumers
			d.syncTracker(engine)
		}
	}
}

// handle routes one engine event to the outputs. Output failures are
// logged and never stop the loop.
func (d *daemon) handle(at time.Time, event logic.Event) {
	switch event.Type {
	case logic.EventPress:
		log.Debug().Uint64("gap_ms", uint64(event.Duration)).Msg("press")
		d.key(true)
	case logic.EventSymbol:
		log.Debug().
			Str("symbol", event.Symbol.String()).
			Uint64("press_ms", uint64(event.Duration)).
			Str("pattern", event.Pattern).
			Msg("symbol")
		d.key(false)
	case logic.EventRelease:
		d.key(false)
	case logic.EventChar, logic.EventInvalid:
		log.Info().
			Str("char", string(event.Char)).
			Str("pattern", event.Pattern).
			Uint64("gap_ms", uint64(event.Duration)).
			Msg(string(event.Type))
		if err := d.screen.AppendChar(event.Char); err != nil {
			log.Warn().Err(err).Msg("display error")
		}
		d.tracker.SetDisplay(d.screen.Lines())
	case logic.EventClear:
		log.Info().Msg("clear")
		d.key(false)
		if err := d.screen.Clear(); err != nil {
			log.Warn().Err(err).Msg("display error")
		}
		d.tracker.SetDisplay(d.screen.Lines())
	}

	d.indicator = event.Indicator
	if err := d.light.SetState(event.Indicator); err != nil {
		log.Warn().Err(err).Msg("indicator error")
	}

	if err := d.publisher.Publish(at, event); err != nil {
		// Don't crash on publish failure
		log.Warn().Err(err).Msg("publish error")
	}

	if entry, ok := transcript.FromEvent(d.session, at, event); ok {
		if d.store != nil {
			if _, err := d.store.Record(context.Background(), entry); err != nil {
				log.Warn().Err(err).Msg("transcript error")
			}
		}
		d.appendTranscript(entry)
	}
}

// outputsOff silences the sidetone and turns the light off. It runs on
// shutdown and from the HTTP goroutine's panic handler.
func (d *daemon) outputsOff() {
	d.key(false)
	d.indicator = logic.IndicatorIdle
	if err := d.light.SetState(logic.IndicatorIdle); err != nil {
		log.Warn().Err(err).Msg("indicator off failed")
	}
}

func (d *daemon) key(down bool) {
	if d.tone != nil {
		d.tone.Key(down)
	}
}

func (d *daemon) syncTracker(engine *logic.Engine) {
	d.tracker.Update(status.Engine{
		State:     engine.State(),
		Indicator: d.indicator,
		Pattern:   engine.Pattern().Digits(),
		Pressed:   engine.Button().Pressed,
		Stats:     engine.Stats(),
		Counts:    engine.EventCountsSnapshot(),
	})
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		d.tracker.SetMQTTQueue(d.mqttStatus.Buffered(), d.mqttStatus.Dropped())
	}
}

// loadTranscript seeds the recent window from the store once at startup.
func (d *daemon) loadTranscript() {
	if d.store == nil {
		return
	}
	entries, err := d.store.Recent(context.Background(), recentTranscript)
	if err != nil {
		log.Warn().Err(err).Msg("transcript read error")
		return
	}
	d.recent = entries
	d.tracker.SetTranscript(transcript.Text(entries))
}

// appendTranscript adds one entry to the recent window without going back
// to the store.
func (d *daemon) appendTranscript(e transcript.Entry) {
	d.recent = append(d.recent, e)
	if over := len(d.recent) - recentTranscript; over > 0 {
		d.recent = d.recent[over:]
	}
	d.tracker.SetTranscript(transcript.Text(d.recent))
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws != "=broker" {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warn().Err(err).Str("broker", broker).Msg("ws_broker: cannot parse broker")
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
