// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files with github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit integer PCM are accepted. AIFF-C compressed variants
// are not. Inputs that cannot seek are buffered in memory first, since the
// go-audio decoder walks chunks by offset.
package aiff
