// SPDX-License-Identifier: EPL-2.0

package bus

import "github.com/ik5/mixcore/audio"

// Bus is decoded planar sample storage for one playing input.
//
// ChannelData, SamplesPerChannel, EndOfStream and SwapBuffers are called from
// the render goroutine. Stream runs on a pool worker while the caller's
// refill flag is set, and only touches the back buffer. ResetStream is for
// the control goroutine while the bus is not being rendered.
type Bus interface {
	// ChannelData returns the readable samples of channel 0 or 1. For mono
	// buses channel 1 is channel 0.
	ChannelData(ch int) []float32
	SamplesPerChannel() int
	SampleRate() int
	// Channels is 1 or 2.
	Channels() int

	// EndOfStream reports that no more samples will follow the current
	// buffer.
	EndOfStream() bool
	// ResetStream rewinds to the first sample.
	ResetStream()
	// SwapBuffers makes the prepared back buffer readable.
	SwapBuffers()
	// Stream decodes the next chunk into the back buffer. It blocks.
	Stream(loop bool)
	// IsStreaming reports whether the bus is double-buffered.
	IsStreaming() bool
}

const maxChannels = 2

// Conform adapts src to at most two channels at rate Hz.
func Conform(src audio.Source, rate int) audio.Source {
	var out audio.Source = audio.NewDownmixer(src, maxChannels)
	if out.SampleRate() != rate {
		out = audio.NewResampler(out, rate)
	}

	return out
}

// deinterleave spreads frames of interleaved into dst starting at frame off.
func deinterleave(dst [maxChannels][]float32, interleaved []float32, channels, off int) int {
	frames := len(interleaved) / channels
	if channels == 1 {
		copy(dst[0][off:off+frames], interleaved[:frames])
		return frames
	}

	left, right := dst[0][off:off+frames], dst[1][off:off+frames]
	for f := range frames {
		left[f] = interleaved[2*f]
		right[f] = interleaved[2*f+1]
	}

	return frames
}
