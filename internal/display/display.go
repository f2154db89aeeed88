// Package display models the two-line character display that shows decoded
// text.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// DefaultWidth is the column count of a 16x2 character LCD.
const DefaultWidth = 16

// Sink receives decoded characters.
type Sink interface {
	AppendChar(c rune) error
	Clear() error
}

// Screen is a Sink whose contents can be read back.
type Screen interface {
	Sink
	Lines() [2]string
}

// Memory is a two-line scrolling text buffer. Text fills the top line,
// then the bottom line; once both are full the bottom line scrolls up and
// a fresh bottom line is started.
type Memory struct {
	width int
	lines [2][]rune
	row   int
}

// NewMemory creates a buffer with the given line width (minimum 1).
func NewMemory(width int) *Memory {
	if width < 1 {
		width = DefaultWidth
	}
	return &Memory{width: width}
}

// AppendChar adds c at the cursor, scrolling if needed.
func (m *Memory) AppendChar(c rune) error {
	if len(m.lines[m.row]) >= m.width {
		if m.row == 0 {
			m.row = 1
		} else {
			m.lines[0] = m.lines[1]
			m.lines[1] = make([]rune, 0, m.width)
		}
	}
	m.lines[m.row] = append(m.lines[m.row], c)
	return nil
}

// Clear empties both lines.
func (m *Memory) Clear() error {
	m.lines = [2][]rune{}
	m.row = 0
	return nil
}

// Lines returns the two lines without padding.
func (m *Memory) Lines() [2]string {
	return [2]string{string(m.lines[0]), string(m.lines[1])}
}

// Width returns the line width.
func (m *Memory) Width() int {
	return m.width
}

// Console renders a Memory to a terminal after every change.
type Console struct {
	*Memory
	w     io.Writer
	text  *color.Color
	frame *color.Color
}

// NewConsole creates a console display of the given width writing to w.
func NewConsole(w io.Writer, width int) *Console {
	return &Console{
		Memory: NewMemory(width),
		w:      w,
		text:   color.New(color.FgHiWhite, color.BgBlue, color.Bold),
		frame:  color.New(color.FgHiBlack),
	}
}

// AppendChar adds c and redraws.
func (c *Console) AppendChar(r rune) error {
	c.Memory.AppendChar(r)
	return c.render()
}

// Clear empties the display and redraws.
func (c *Console) Clear() error {
	c.Memory.Clear()
	return c.render()
}

func (c *Console) render() error {
	border := "+" + strings.Repeat("-", c.width) + "+"
	var sb strings.Builder
	sb.WriteString(c.frame.Sprint(border) + "\n")
	for _, line := range c.Lines() {
		padded := fmt.Sprintf("%-*s", c.width, line)
		sb.WriteString(c.frame.Sprint("|") + c.text.Sprint(padded) + c.frame.Sprint("|") + "\n")
	}
	sb.WriteString(c.frame.Sprint(border) + "\n")
	_, err := io.WriteString(c.w, sb.String())
	return err
}
