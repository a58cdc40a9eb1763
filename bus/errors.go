// SPDX-License-Identifier: EPL-2.0

package bus

import "errors"

var (
	ErrChannelCount   = errors.New("bus: channel count must be 1 or 2")
	ErrLengthMismatch = errors.New("bus: channels differ in length")
	ErrInvalidRate    = errors.New("bus: sample rate must be positive")
	ErrInvalidChunk   = errors.New("bus: chunk size must be positive")
	ErrNilOpener      = errors.New("bus: nil opener")
)
