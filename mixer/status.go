// SPDX-License-Identifier: EPL-2.0

package mixer

import "fmt"

// Status is where an Input is in its life with an Engine.
//
//	Idle -> Pending -> Active -> Retiring -> Retired
//	                                Retired -> Pending (played again)
type Status int32

const (
	// StatusIdle: never played.
	StatusIdle Status = iota
	// StatusPending: queued by Play, not yet picked up by Render.
	StatusPending
	// StatusActive: being mixed.
	StatusActive
	// StatusRetiring: removed from mixing, completion not yet delivered.
	StatusRetiring
	// StatusRetired: completion delivered on the control goroutine.
	StatusRetired
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusRetiring:
		return "retiring"
	case StatusRetired:
		return "retired"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}
