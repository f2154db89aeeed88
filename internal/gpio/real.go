//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the key from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	key  *gpiocdev.Line
}

// NewRealReader requests the key line on the given chip. The key switches
// the line to 3.3V, so it is requested with pull-down and read active-high.
func NewRealReader(chipName string, pinKey int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	key, err := chip.RequestLine(pinKey, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request key pin %d: %w", pinKey, err)
	}

	return &RealReader{chip: chip, key: key}, nil
}

// Read returns true while the key is pressed.
func (r *RealReader) Read() (bool, error) {
	v, err := r.key.Value()
	if err != nil {
		return false, fmt.Errorf("read key pin: %w", err)
	}
	return v == 1, nil
}

// Close releases GPIO resources, leaving the pin as input with pull-down
// (matching Pi boot defaults).
func (r *RealReader) Close() error {
	var errs []error
	if r.key != nil {
		if err := r.key.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure key pin: %w", err))
		}
		if err := r.key.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close key pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLight drives a common-cathode RGB LED on three output lines.
type RealLight struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewRealLight requests the red, green and blue lines as outputs, initially off.
func NewRealLight(chipName string, pinR, pinG, pinB int) (*RealLight, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{pinR, pinG, pinB}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request rgb pins %d/%d/%d: %w", pinR, pinG, pinB, err)
	}

	return &RealLight{chip: chip, lines: lines}, nil
}

// Set switches each channel on or off.
func (l *RealLight) Set(r, g, b bool) error {
	if err := l.lines.SetValues([]int{bit(r), bit(g), bit(b)}); err != nil {
		return fmt.Errorf("set rgb: %w", err)
	}
	return nil
}

// Close turns the LED off and returns the lines to inputs with pull-down.
func (l *RealLight) Close() error {
	var errs []error
	if l.lines != nil {
		if err := l.lines.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("switch off rgb: %w", err))
		}
		if err := l.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure rgb pins: %w", err))
		}
		if err := l.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rgb pins: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func bit(on bool) int {
	if on {
		return 1
	}
	return 0
}
