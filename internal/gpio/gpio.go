// Package gpio provides key input and RGB light output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Reader reads the Morse key.
type Reader interface {
	// Read returns true while the key is pressed (line reads high).
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Light drives the three channels of an RGB status LED.
type Light interface {
	// Set switches each channel on or off.
	Set(r, g, b bool) error

	// Close turns the LED off and releases GPIO resources.
	Close() error
}

// Default chip and pin definitions (BCM numbering)
const (
	DefaultChip     = "gpiochip0"
	DefaultPinKey   = 17
	DefaultPinRed   = 22
	DefaultPinGreen = 27
	DefaultPinBlue  = 23
)
