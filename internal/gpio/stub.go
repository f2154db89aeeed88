//go:build !linux

package gpio

import "errors"

// The character device API only exists on Linux. Tests use the fakes.
var errUnsupported = errors.New("gpio: character device needs linux")

type RealReader struct{}

func NewRealReader(chipName string, pinKey int) (*RealReader, error) {
	return nil, errUnsupported
}

func (*RealReader) Read() (bool, error) { return false, errUnsupported }
func (*RealReader) Close() error        { return nil }

type RealLight struct{}

func NewRealLight(chipName string, pinR, pinG, pinB int) (*RealLight, error) {
	return nil, errUnsupported
}

func (*RealLight) Set(r, g, b bool) error { return errUnsupported }
func (*RealLight) Close() error           { return nil }
