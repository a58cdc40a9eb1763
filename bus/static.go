// SPDX-License-Identifier: EPL-2.0

package bus

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/mixcore/audio"
)

// Static holds a fully decoded sound in memory. It is always at end of
// stream: the first exhausted buffer either wraps or ends playback.
type Static struct {
	ch       [maxChannels][]float32
	channels int
	rate     int
}

// NewStatic builds a bus over one or two planar channels. The slices are
// used as is, not copied.
func NewStatic(rate int, channels ...[]float32) (*Static, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if len(channels) < 1 || len(channels) > maxChannels {
		return nil, fmt.Errorf("%w: got %d", ErrChannelCount, len(channels))
	}

	s := &Static{rate: rate, channels: len(channels)}
	s.ch[0] = channels[0]
	s.ch[1] = channels[0]

	if len(channels) == 2 {
		if len(channels[1]) != len(channels[0]) {
			return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(channels[0]), len(channels[1]))
		}
		s.ch[1] = channels[1]
	}

	return s, nil
}

// Decode reads src to the end into a Static bus at rate Hz. src is not
// closed.
func Decode(src audio.Source, rate int) (*Static, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}

	conformed := Conform(src, rate)
	channels := conformed.Channels()
	if channels < 1 || channels > maxChannels {
		return nil, fmt.Errorf("%w: got %d", ErrChannelCount, channels)
	}

	buf := make([]float32, 4096*channels)
	var interleaved []float32

	for {
		n, err := conformed.ReadSamples(buf)
		interleaved = append(interleaved, buf[:n-n%channels]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding: %w", err)
		}
	}

	frames := len(interleaved) / channels
	var planar [maxChannels][]float32
	for c := range channels {
		planar[c] = make([]float32, frames)
	}
	deinterleave(planar, interleaved, channels, 0)

	return NewStatic(rate, planar[:channels]...)
}

func (s *Static) ChannelData(ch int) []float32 {
	if ch < 0 || ch >= maxChannels {
		return nil
	}
	return s.ch[ch]
}

func (s *Static) SamplesPerChannel() int { return len(s.ch[0]) }
func (s *Static) SampleRate() int        { return s.rate }
func (s *Static) Channels() int          { return s.channels }
func (s *Static) EndOfStream() bool      { return true }
func (s *Static) ResetStream()           {}
func (s *Static) SwapBuffers()           {}
func (s *Static) Stream(bool)            {}
func (s *Static) IsStreaming() bool      { return false }
