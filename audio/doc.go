// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decode-side primitives that feed the mixer.
//
// This package contains:
//   - Source interface for decoded PCM input
//   - Registry mapping file extensions to decoders
//   - Resampler for sample rate conversion at load time
//   - Downmixer for folding layouts wider than stereo
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Decoders under formats/ and the processors here implement it, so they can
// be chained:
//
//	src, _ := registry.Open("music.ogg")
//	src = audio.NewDownmixer(src, 2)
//	src = audio.NewResampler(src, 48000)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Open("click.wav")
//
// Keys are matched case-insensitively against the file extension.
//
// # Sample Format
//
// Samples are float32 in the range [-1.0, 1.0], 0.0 being silence.
package audio
