// SPDX-License-Identifier: EPL-2.0

//go:build headless

package driver

// Oto is compiled out of headless builds; Initialize always fails.
type Oto struct {
	rate int
}

func NewOto(_ Renderer, sampleRate int, _ ...Option) *Oto {
	return &Oto{rate: sampleRate}
}

func (o *Oto) Initialize() error       { return ErrUnavailable }
func (o *Oto) Suspend() error          { return ErrNotInitialized }
func (o *Oto) Resume() error           { return ErrNotInitialized }
func (o *Oto) HardwareSampleRate() int { return o.rate }
func (o *Oto) Close() error            { return nil }
