// SPDX-License-Identifier: EPL-2.0

// Package bus holds decoded samples for the mixer.
//
// A Bus exposes up to two planar float32 channels at the mixer's sample
// rate. Static keeps a whole sound in memory. Streaming keeps two chunks
// and is refilled in the background:
//
//	b, err := bus.NewStreaming(func() (audio.Source, error) {
//	    return registry.Open("music.ogg")
//	}, 48000, 16384)
//
// Both run their input through Conform, so sources wider than stereo are
// folded to mono and foreign sample rates are resampled on decode.
package bus
