// SPDX-License-Identifier: EPL-2.0

package driver

import "errors"

var (
	ErrUnknownDriver      = errors.New("driver: unknown sink")
	ErrInvalidRate        = errors.New("driver: sample rate must be positive")
	ErrAlreadyInitialized = errors.New("driver: already initialized")
	ErrNotInitialized     = errors.New("driver: not initialized")
	// ErrUnavailable is returned by sinks compiled out of this build.
	ErrUnavailable = errors.New("driver: sink not available in this build")
)
