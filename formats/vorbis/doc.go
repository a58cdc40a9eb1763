// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The decoder already produces float32, so samples are read straight into
// the caller's buffer without conversion.
package vorbis
