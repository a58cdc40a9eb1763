// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files with
// github.com/hajimehoshi/go-mp3.
//
// The underlying decoder always emits 16-bit stereo, so every Source from
// this package reports two channels, including for mono files. Mono
// consumers should put an audio.Downmixer in front.
package mp3
