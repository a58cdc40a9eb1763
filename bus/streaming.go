// SPDX-License-Identifier: EPL-2.0

package bus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/mixcore/audio"
)

// Opener returns a fresh source positioned at the first sample. Streaming
// calls it on construction, on ResetStream and whenever a looping stream
// runs out.
type Opener func() (audio.Source, error)

// maxEmptyReads bounds consecutive (0, nil) reads before the source is
// treated as finished.
const maxEmptyReads = 64

// Streaming is a double-buffered bus for sounds too large to decode up front.
// The render goroutine reads the front buffer while a pool worker decodes
// the next chunk into the back buffer; SwapBuffers exchanges them.
type Streaming struct {
	open        Opener
	rate        int
	chunkFrames int
	// channels is fixed by the first open. The render goroutine reads it
	// while a worker may be reopening the source.
	channels int

	src audio.Source

	front, back       [maxChannels][]float32
	frontLen, backLen int
	interleaved       []float32

	// eof is set when the source ran out. failed additionally stops a
	// looping stream from reopening it.
	eof    bool
	failed bool
	// produced counts frames read since the source was last opened.
	produced int

	log *slog.Logger
}

type StreamingOption func(*Streaming)

func WithLogger(l *slog.Logger) StreamingOption {
	return func(s *Streaming) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStreaming opens the source and synchronously fills both buffers.
func NewStreaming(open Opener, rate, chunkFrames int, opts ...StreamingOption) (*Streaming, error) {
	if open == nil {
		return nil, ErrNilOpener
	}
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if chunkFrames <= 0 {
		return nil, ErrInvalidChunk
	}

	s := &Streaming{
		open:        open,
		rate:        rate,
		chunkFrames: chunkFrames,
		log:         slog.Default().With("component", "bus"),
	}
	for _, opt := range opts {
		opt(s)
	}

	src, err := s.openSource()
	if err != nil {
		return nil, err
	}
	s.src = src
	s.channels = src.Channels()

	for c := range maxChannels {
		s.front[c] = make([]float32, chunkFrames)
		s.back[c] = make([]float32, chunkFrames)
	}
	s.interleaved = make([]float32, chunkFrames*s.channels)

	s.prime()

	return s, nil
}

// openSource opens and conforms a new source without touching s.
func (s *Streaming) openSource() (audio.Source, error) {
	raw, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	src := Conform(raw, s.rate)
	if channels := src.Channels(); channels < 1 || channels > maxChannels {
		_ = src.Close()
		return nil, fmt.Errorf("%w: got %d", ErrChannelCount, channels)
	}

	return src, nil
}

// reopen replaces the source with a fresh one. The new source must keep the
// channel count the bus was created with.
func (s *Streaming) reopen() error {
	if s.src != nil {
		_ = s.src.Close()
		s.src = nil
	}

	src, err := s.openSource()
	if err != nil {
		return err
	}
	if channels := src.Channels(); channels != s.channels {
		_ = src.Close()
		return fmt.Errorf("%w: reopened with %d, was %d", ErrChannelCount, channels, s.channels)
	}

	s.src = src
	s.produced = 0
	s.eof = false

	return nil
}

func (s *Streaming) prime() {
	s.frontLen = s.fill(s.front, false)
	s.backLen = s.fill(s.back, false)
}

// fill decodes up to chunkFrames frames into dst. Once the source is at EOF
// it is reopened only when loop is set, so a stream primed without looping
// can still loop on the next Stream(true).
func (s *Streaming) fill(dst [maxChannels][]float32, loop bool) int {
	n := 0
	empty := 0

	for n < s.chunkFrames {
		if s.eof {
			if !loop || s.failed {
				return n
			}
			// A pass that produced nothing would spin forever.
			if s.produced == 0 {
				s.log.Warn("looping stream is empty")
				s.failed = true
				return n
			}
			if err := s.reopen(); err != nil {
				s.log.Error("reopening looping stream", "error", err)
				s.failed = true
				return n
			}
			empty = 0
		}

		buf := s.interleaved[:(s.chunkFrames-n)*s.channels]

		got, err := s.src.ReadSamples(buf)
		frames := deinterleave(dst, buf[:got-got%s.channels], s.channels, n)
		n += frames
		s.produced += frames

		switch {
		case errors.Is(err, io.EOF):
			s.eof = true
		case err != nil:
			s.log.Error("decoding stream", "error", err)
			s.eof, s.failed = true, true
			return n
		case frames == 0:
			empty++
			if empty >= maxEmptyReads {
				s.eof = true
			}
		default:
			empty = 0
		}
	}

	return n
}

// ChannelData returns the readable part of the front buffer.
func (s *Streaming) ChannelData(ch int) []float32 {
	if ch < 0 || ch >= maxChannels {
		return nil
	}
	if s.channels == 1 {
		ch = 0
	}
	return s.front[ch][:s.frontLen]
}

func (s *Streaming) SamplesPerChannel() int { return s.frontLen }
func (s *Streaming) SampleRate() int        { return s.rate }
func (s *Streaming) Channels() int          { return s.channels }
func (s *Streaming) IsStreaming() bool      { return true }

// EndOfStream is true once the source is exhausted and nothing is left
// waiting in the back buffer.
func (s *Streaming) EndOfStream() bool {
	return s.eof && s.backLen == 0
}

func (s *Streaming) SwapBuffers() {
	s.front, s.back = s.back, s.front
	s.frontLen, s.backLen = s.backLen, 0
}

func (s *Streaming) Stream(loop bool) {
	s.backLen = s.fill(s.back, loop)
}

// ResetStream reopens the source and refills both buffers. A failed reopen
// leaves the bus empty and at end of stream.
func (s *Streaming) ResetStream() {
	if err := s.reopen(); err != nil {
		s.log.Error("resetting stream", "error", err)
		s.eof, s.failed = true, true
		s.frontLen, s.backLen = 0, 0
		return
	}
	s.failed = false
	s.prime()
}

// Close releases the underlying source.
func (s *Streaming) Close() error {
	if s.src == nil {
		return nil
	}

	err := s.src.Close()
	s.src = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
