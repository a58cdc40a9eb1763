// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Channels is the interleaved channel count every sink renders.
const Channels = 2

// DefaultPeriodFrames is used when no period is configured.
const DefaultPeriodFrames = 512

// Renderer fills buf with frames interleaved stereo frames. It is called
// from the sink's own goroutine.
type Renderer interface {
	RenderAudio(buf []float32, frames int)
}

// RenderFunc adapts a function, typically (*mixer.Engine).Render, to Renderer.
type RenderFunc func(buf []float32, frames int)

func (f RenderFunc) RenderAudio(buf []float32, frames int) { f(buf, frames) }

// Sink is an output device that pulls audio from a Renderer.
type Sink interface {
	// Initialize opens the device and starts rendering.
	Initialize() error
	Suspend() error
	Resume() error
	HardwareSampleRate() int
	Close() error
}

type options struct {
	periodFrames int
	capture      io.WriteSeeker
	log          *slog.Logger
}

type Option func(*options)

// WithPeriodFrames sets how many frames are rendered per period.
func WithPeriodFrames(frames int) Option {
	return func(o *options) {
		if frames > 0 {
			o.periodFrames = frames
		}
	}
}

// WithCapture makes the null sink record everything it renders to w as a
// 16-bit WAV file. Other sinks ignore it.
func WithCapture(w io.WriteSeeker) Option {
	return func(o *options) { o.capture = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{
		periodFrames: DefaultPeriodFrames,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With("component", "driver", "driver", name)

	return o
}

// Names of the available sinks.
const (
	NameOto  = "oto"
	NameNull = "null"
)

// New returns the sink called name. It is not initialized yet.
func New(name string, r Renderer, sampleRate int, opts ...Option) (Sink, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}

	switch strings.ToLower(name) {
	case NameOto:
		return NewOto(r, sampleRate, opts...), nil
	case NameNull:
		return NewNull(r, sampleRate, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}
