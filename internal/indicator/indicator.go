// Package indicator maps the engine's indicator state onto a status light.
package indicator

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sweeney/morse-key/internal/gpio"
	"github.com/sweeney/morse-key/internal/logic"
)

// Sink shows the indicator state. Implementations must not block.
type Sink interface {
	SetState(state logic.Indicator) error
}

// ColorFor returns the RGB channels for a state:
// idle off, active blue, valid green, invalid red, clearing yellow.
func ColorFor(state logic.Indicator) gpio.Color {
	switch state {
	case logic.IndicatorActive:
		return gpio.Color{B: true}
	case logic.IndicatorValid:
		return gpio.Color{G: true}
	case logic.IndicatorInvalid:
		return gpio.Color{R: true}
	case logic.IndicatorClearing:
		return gpio.Color{R: true, G: true}
	default:
		return gpio.Color{}
	}
}

// RGB drives an RGB LED. Repeated states are not rewritten.
type RGB struct {
	light gpio.Light
	last  logic.Indicator
}

// NewRGB creates an indicator on the given light.
func NewRGB(light gpio.Light) *RGB {
	return &RGB{light: light}
}

// SetState switches the LED to the color for state.
func (r *RGB) SetState(state logic.Indicator) error {
	if state == r.last {
		return nil
	}
	c := ColorFor(state)
	if err := r.light.Set(c.R, c.G, c.B); err != nil {
		return fmt.Errorf("set indicator %s: %w", state, err)
	}
	r.last = state
	return nil
}

// Console prints state changes as a colored tag.
type Console struct {
	w    io.Writer
	last logic.Indicator
}

// NewConsole creates a console indicator writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

var consoleColors = map[logic.Indicator]*color.Color{
	logic.IndicatorIdle:     color.New(color.FgHiBlack),
	logic.IndicatorActive:   color.New(color.FgBlue, color.Bold),
	logic.IndicatorValid:    color.New(color.FgGreen, color.Bold),
	logic.IndicatorInvalid:  color.New(color.FgRed, color.Bold),
	logic.IndicatorClearing: color.New(color.FgYellow, color.Bold),
}

// SetState writes "[STATE]" in the state's color.
func (c *Console) SetState(state logic.Indicator) error {
	if state == c.last {
		return nil
	}
	col, ok := consoleColors[state]
	if !ok {
		col = consoleColors[logic.IndicatorIdle]
	}
	if _, err := col.Fprintf(c.w, "[%s]\n", state); err != nil {
		return err
	}
	c.last = state
	return nil
}

// Fake records states for tests.
type Fake struct {
	States []logic.Indicator
}

// SetState records state.
func (f *Fake) SetState(state logic.Indicator) error {
	f.States = append(f.States, state)
	return nil
}

// Last returns the most recent state, or idle if none.
func (f *Fake) Last() logic.Indicator {
	if len(f.States) == 0 {
		return logic.IndicatorIdle
	}
	return f.States[len(f.States)-1]
}
