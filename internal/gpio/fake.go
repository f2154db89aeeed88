package gpio

import "errors"

var errNoSamples = errors.New("fake key: no samples")

// FakeReader plays back a scripted key, one level per Read. The last
// level holds once the script runs out.
type FakeReader struct {
	Samples   []bool
	ReadError error // returned by every Read while set
	Closed    bool

	pos int
}

func NewFakeReader(samples []bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

func (f *FakeReader) Read() (bool, error) {
	switch {
	case f.ReadError != nil:
		return false, f.ReadError
	case len(f.Samples) == 0:
		return false, errNoSamples
	}
	level := f.Samples[f.pos]
	f.pos = min(f.pos+1, len(f.Samples)-1)
	return level, nil
}

func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script.
func (f *FakeReader) Reset() {
	f.pos, f.Closed = 0, false
}

// Color is one RGB output state.
type Color struct {
	R, G, B bool
}

// FakeLight records every Set call.
type FakeLight struct {
	Colors   []Color
	SetError error
	Closed   bool
}

// NewFakeLight creates a FakeLight.
func NewFakeLight() *FakeLight {
	return &FakeLight{}
}

// Set records the color.
func (f *FakeLight) Set(r, g, b bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Colors = append(f.Colors, Color{R: r, G: g, B: b})
	return nil
}

// Last returns the most recent color, or off if none was set.
func (f *FakeLight) Last() Color {
	if len(f.Colors) == 0 {
		return Color{}
	}
	return f.Colors[len(f.Colors)-1]
}

// Close marks the light as closed.
func (f *FakeLight) Close() error {
	f.Closed = true
	return nil
}
