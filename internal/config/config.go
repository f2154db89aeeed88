// Package config loads daemon settings from a YAML file, flags and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/sweeney/morse-key/internal/logic"
)

const (
	AppName       = "morse-key"
	ConfigType    = "yaml"
	DefaultConfig = `# Morse key configuration

# GPIO (BCM numbering)
gpio_chip: "gpiochip0"
pin_button: 17          # key input, pulled down, high when pressed
pin_red: 22
pin_green: 27
pin_blue: 23
rgb_enabled: false      # drive an RGB status LED instead of console output

# Sampling
poll_ms: 10             # key poll interval

# Timing (milliseconds)
debounce_ms: 50         # minimum spacing of confirmed press/release
short_press_cap_ms: 100 # shorter presses are always dots
long_press_cap_ms: 300  # longer presses are always dashes
clear_hold_ms: 2000     # holding longer clears the display
threshold_multiplier: 1.5
gap_floor_ms: 300       # a gap must exceed this to end a character
finalize_gap_ms: 2000   # a gap this long always ends a character
history_capacity: 3     # durations kept for the adaptive statistics

# MQTT (empty broker disables publishing)
broker: ""              # e.g. tcp://192.168.1.200:1883
heartbeat_s: 900

# Status page (empty disables)
http_addr: ":80"
ws_broker: ""           # websocket broker URL for live browser updates

# Transcript database (empty disables)
transcript_db: ""

# Sidetone
sidetone: false
sidetone_hz: 600

# Display
display_width: 16

debug: false
`
)

// Settings holds all application configuration
type Settings struct {
	// GPIO
	GPIOChip   string `mapstructure:"gpio_chip"`
	PinButton  int    `mapstructure:"pin_button"`
	PinRed     int    `mapstructure:"pin_red"`
	PinGreen   int    `mapstructure:"pin_green"`
	PinBlue    int    `mapstructure:"pin_blue"`
	RGBEnabled bool   `mapstructure:"rgb_enabled"`

	PollMs int `mapstructure:"poll_ms"`

	// Timing
	DebounceMs          int     `mapstructure:"debounce_ms"`
	ShortPressCapMs     int     `mapstructure:"short_press_cap_ms"`
	LongPressCapMs      int     `mapstructure:"long_press_cap_ms"`
	ClearHoldMs         int     `mapstructure:"clear_hold_ms"`
	ThresholdMultiplier float64 `mapstructure:"threshold_multiplier"`
	GapFloorMs          int     `mapstructure:"gap_floor_ms"`
	FinalizeGapMs       int     `mapstructure:"finalize_gap_ms"`
	HistoryCapacity     int     `mapstructure:"history_capacity"`

	// Outputs
	Broker       string `mapstructure:"broker"`
	HeartbeatS   int    `mapstructure:"heartbeat_s"`
	HTTPAddr     string `mapstructure:"http_addr"`
	WSBroker     string `mapstructure:"ws_broker"`
	TranscriptDB string `mapstructure:"transcript_db"`
	Sidetone     bool   `mapstructure:"sidetone"`
	SidetoneHz   int    `mapstructure:"sidetone_hz"`
	DisplayWidth int    `mapstructure:"display_width"`

	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key's default with viper.
func SetDefaults() {
	d := logic.DefaultThresholds()
	viper.SetDefault("gpio_chip", "gpiochip0")
	viper.SetDefault("pin_button", 17)
	viper.SetDefault("pin_red", 22)
	viper.SetDefault("pin_green", 27)
	viper.SetDefault("pin_blue", 23)
	viper.SetDefault("rgb_enabled", false)
	viper.SetDefault("poll_ms", 10)
	viper.SetDefault("debounce_ms", int(d.Debounce))
	viper.SetDefault("short_press_cap_ms", int(d.ShortPressCap))
	viper.SetDefault("long_press_cap_ms", int(d.LongPressCap))
	viper.SetDefault("clear_hold_ms", int(d.ClearHold))
	viper.SetDefault("threshold_multiplier", d.Multiplier)
	viper.SetDefault("gap_floor_ms", int(d.GapFloor))
	viper.SetDefault("finalize_gap_ms", int(d.FinalizeGap))
	viper.SetDefault("history_capacity", d.HistoryCapacity)
	viper.SetDefault("broker", "")
	viper.SetDefault("heartbeat_s", 900)
	viper.SetDefault("http_addr", ":80")
	viper.SetDefault("ws_broker", "")
	viper.SetDefault("transcript_db", "")
	viper.SetDefault("sidetone", false)
	viper.SetDefault("sidetone_hz", 600)
	viper.SetDefault("display_width", 16)
	viper.SetDefault("debug", false)
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/morse-key/
// Environment variables prefixed MORSE_KEY_ override the file.
func Init() error {
	SetDefaults()

	viper.SetEnvPrefix("MORSE_KEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	if s.GPIOChip == "" {
		errs = append(errs, errors.New("gpio_chip must not be empty"))
	}
	pins := map[string]int{
		"pin_button": s.PinButton,
		"pin_red":    s.PinRed,
		"pin_green":  s.PinGreen,
		"pin_blue":   s.PinBlue,
	}
	for _, name := range []string{"pin_button", "pin_red", "pin_green", "pin_blue"} {
		if p := pins[name]; p < 0 || p > 63 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 63, got %d", name, p))
		}
	}
	if s.RGBEnabled {
		seen := map[int]string{s.PinButton: "pin_button"}
		for _, name := range []string{"pin_red", "pin_green", "pin_blue"} {
			if other, dup := seen[pins[name]]; dup {
				errs = append(errs, fmt.Errorf("%s and %s share pin %d", other, name, pins[name]))
				continue
			}
			seen[pins[name]] = name
		}
	}

	if s.PollMs < 1 || s.PollMs > 1000 {
		errs = append(errs, fmt.Errorf("poll_ms must be between 1 and 1000, got %d", s.PollMs))
	}
	if s.DebounceMs < 0 || s.DebounceMs > 1000 {
		errs = append(errs, fmt.Errorf("debounce_ms must be between 0 and 1000, got %d", s.DebounceMs))
	}
	if s.ShortPressCapMs < 1 {
		errs = append(errs, fmt.Errorf("short_press_cap_ms must be positive, got %d", s.ShortPressCapMs))
	}
	if !(s.ShortPressCapMs < s.LongPressCapMs && s.LongPressCapMs < s.ClearHoldMs) {
		errs = append(errs, fmt.Errorf("need short_press_cap_ms < long_press_cap_ms < clear_hold_ms, got %d, %d, %d",
			s.ShortPressCapMs, s.LongPressCapMs, s.ClearHoldMs))
	}
	if s.ThresholdMultiplier < 0 || s.ThresholdMultiplier > 10 {
		errs = append(errs, fmt.Errorf("threshold_multiplier must be between 0 and 10, got %v", s.ThresholdMultiplier))
	}
	if s.GapFloorMs < 0 || s.GapFloorMs > s.FinalizeGapMs {
		errs = append(errs, fmt.Errorf("need 0 <= gap_floor_ms <= finalize_gap_ms, got %d, %d", s.GapFloorMs, s.FinalizeGapMs))
	}
	if s.HistoryCapacity < 1 || s.HistoryCapacity > 16 {
		errs = append(errs, fmt.Errorf("history_capacity must be between 1 and 16, got %d", s.HistoryCapacity))
	}

	if s.HeartbeatS < 0 {
		errs = append(errs, fmt.Errorf("heartbeat_s must not be negative, got %d", s.HeartbeatS))
	}
	if s.Sidetone && (s.SidetoneHz < 100 || s.SidetoneHz > 3000) {
		errs = append(errs, fmt.Errorf("sidetone_hz must be between 100 and 3000 Hz, got %d", s.SidetoneHz))
	}
	if s.DisplayWidth < 8 || s.DisplayWidth > 80 {
		errs = append(errs, fmt.Errorf("display_width must be between 8 and 80, got %d", s.DisplayWidth))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Thresholds converts the timing settings for the decode engine.
func (s *Settings) Thresholds() logic.Thresholds {
	return logic.Thresholds{
		Debounce:        logic.Millis(s.DebounceMs),
		ShortPressCap:   logic.Millis(s.ShortPressCapMs),
		LongPressCap:    logic.Millis(s.LongPressCapMs),
		ClearHold:       logic.Millis(s.ClearHoldMs),
		Multiplier:      s.ThresholdMultiplier,
		GapFloor:        logic.Millis(s.GapFloorMs),
		FinalizeGap:     logic.Millis(s.FinalizeGapMs),
		HistoryCapacity: s.HistoryCapacity,
	}
}
