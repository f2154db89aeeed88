// Command morse-key decodes a single-button Morse key on GPIO into letters,
// shows them on a two-line display and publishes them to MQTT.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sweeney/morse-key/internal/config"
	"github.com/sweeney/morse-key/internal/gpio"
	"github.com/sweeney/morse-key/internal/recovery"
)

var rootCmd = &cobra.Command{
	Use:   "morse-key",
	Short: "Single-button Morse code decoder",
	Long: `Reads a push button on a GPIO line, classifies presses as dots and
dashes against the operator's own timing, and decodes A-Z.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Get()
		if err != nil {
			return err
		}
		setupLogging(os.Stderr, s.Debug)
		return run(s)
	},
}

func main() {
	defer recovery.HandlePanic()
	setupLogging(os.Stderr, false)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	flags := rootCmd.PersistentFlags()
	flags.String("chip", gpio.DefaultChip, "GPIO chip name")
	flags.IntP("pin", "p", gpio.DefaultPinKey, "BCM pin number for the key")
	flags.Int("poll", 10, "key poll interval in milliseconds")
	flags.StringP("broker", "b", "", "MQTT broker address (empty to disable)")
	flags.String("http", ":80", "HTTP status address (empty to disable)")
	flags.BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("gpio_chip", flags.Lookup("chip"))
	viper.BindPFlag("pin_button", flags.Lookup("pin"))
	viper.BindPFlag("poll_ms", flags.Lookup("poll"))
	viper.BindPFlag("broker", flags.Lookup("broker"))
	viper.BindPFlag("http_addr", flags.Lookup("http"))
	viper.BindPFlag("debug", flags.Lookup("debug"))

	rootCmd.AddCommand(tableCmd, stateCmd)
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging points the global logger at a console writer.
func setupLogging(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(level).With().Timestamp().Logger()
	zerolog.DurationFieldUnit = time.Millisecond
}
