// Package sidetone plays a keyed sine tone while the button is held.
package sidetone

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"
)

var ErrNotRunning = errors.New("sidetone not running")

// Keyer turns the tone on and off.
type Keyer interface {
	Key(down bool)
}

// Config holds playback settings.
type Config struct {
	Frequency  float64 // tone in Hz
	SampleRate uint32
	Gain       float64 // 0..1
	RampMs     float64 // attack/decay time to avoid clicks
}

// DefaultConfig returns a 600 Hz tone at half volume.
func DefaultConfig() Config {
	return Config{
		Frequency:  600,
		SampleRate: 48000,
		Gain:       0.5,
		RampMs:     5,
	}
}

// Oscillator generates the keyed tone. Key may be called from any
// goroutine; Fill runs on the audio thread.
type Oscillator struct {
	keyed atomic.Bool

	step  float64 // phase advance per sample
	phase float64
	gain  float64
	env   float64 // current envelope 0..1
	delta float64 // envelope change per sample
}

// NewOscillator creates an oscillator for cfg.
func NewOscillator(cfg Config) *Oscillator {
	ramp := cfg.RampMs * float64(cfg.SampleRate) / 1000
	delta := 1.0
	if ramp > 1 {
		delta = 1 / ramp
	}
	return &Oscillator{
		step:  2 * math.Pi * cfg.Frequency / float64(cfg.SampleRate),
		gain:  cfg.Gain,
		delta: delta,
	}
}

// Key sets whether the tone sounds.
func (o *Oscillator) Key(down bool) {
	o.keyed.Store(down)
}

// Fill writes the next len(out) mono samples.
func (o *Oscillator) Fill(out []float32) {
	keyed := o.keyed.Load()
	for i := range out {
		if keyed {
			o.env = math.Min(1, o.env+o.delta)
		} else {
			o.env = math.Max(0, o.env-o.delta)
		}
		if o.env == 0 {
			out[i] = 0
			o.phase = 0
			continue
		}
		out[i] = float32(o.gain * o.env * math.Sin(o.phase))
		o.phase += o.step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

// Player plays an Oscillator on the default output device.
type Player struct {
	osc    *Oscillator
	cfg    Config
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	frames []float32
}

// NewPlayer creates a player; call Start to open the device.
func NewPlayer(cfg Config) *Player {
	return &Player{osc: NewOscillator(cfg), cfg: cfg}
}

// Start opens the default playback device and begins streaming.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = p.cfg.SampleRate
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1

	onSendFrames := func(outputSamples, _ []byte, frameCount uint32) {
		if cap(p.frames) < int(frameCount) {
			p.frames = make([]float32, frameCount)
		}
		frames := p.frames[:frameCount]
		p.osc.Fill(frames)
		encode(outputSamples, frames)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("start device: %w", err)
	}

	p.ctx = ctx
	p.device = device
	log.Info().Float64("hz", p.cfg.Frequency).Msg("sidetone started")
	return nil
}

// Key turns the tone on or off.
func (p *Player) Key(down bool) {
	p.osc.Key(down)
}

// Close stops playback and releases the device.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return ErrNotRunning
	}
	p.device.Uninit()
	p.device = nil
	if err := p.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninit audio context: %w", err)
	}
	p.ctx.Free()
	p.ctx = nil
	return nil
}

// encode writes little-endian float32 samples into dst.
func encode(dst []byte, samples []float32) {
	for i, s := range samples {
		off := i * 4
		if off+4 > len(dst) {
			return
		}
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(s))
	}
}
