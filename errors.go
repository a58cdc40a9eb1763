// SPDX-License-Identifier: EPL-2.0

package mixcore

import "errors"

var (
	ErrInvalidSampleRate = errors.New("mixcore: sample rate must be positive")
	ErrIsDirectory       = errors.New("mixcore: path is a directory")
)
