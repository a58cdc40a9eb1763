// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"sync/atomic"

	"github.com/ik5/mixcore/bus"
)

// UnityStep is the resample step that plays a bus at its own rate.
const UnityStep = 100

type flag uint32

const (
	flagLoop flag = 1 << iota
	flagStopped
	flagSimulateStereo
)

// Input is one playing instance of a sound.
//
// Every exported method belongs to the control goroutine, the one that
// drains the Engine's reply queue. Setters are lock-free and safe while the
// Input is being rendered.
type Input struct {
	// Control goroutine.
	engine     *Engine
	registered bool
	onEnd      func()
	// savedEnd holds the caller's callback while a deferred replay owns onEnd.
	savedEnd   func()
	overriding bool

	// Written by the control goroutine only while unregistered.
	bus bus.Bus

	// Render goroutine, while registered.
	cursor    int
	acc       int
	amp       float32
	ended     bool
	underrun  bool
	nilLogged bool

	flags     atomic.Uint32
	step      atomic.Int32
	ampInc    atomic.Uint32
	maxAmp    atomic.Uint32
	streaming atomic.Bool
	status    atomic.Int32

	// Cached so Render does not allocate closures.
	refillFn func()
	retireFn func()
}

func NewInput() *Input {
	in := &Input{}
	in.step.Store(UnityStep)
	in.maxAmp.Store(math.Float32bits(1))
	in.refillFn = in.refill
	in.retireFn = in.retire

	return in
}

// Play starts the Input on e from bus b at the given amplitude.
//
// An idle Input resumes from where it was stopped unless restart is set, b
// is a different bus or the last run reached the end of the stream; in
// those cases it rewinds. On an Input that is still registered, Play does
// nothing unless restart is set or it was stopped: then the running
// instance is stopped and the new one starts once its retirement has been
// delivered, so a stop/play pair never revives an instance that is still
// in flight.
func (in *Input) Play(e *Engine, b bus.Bus, amplitude float32, restart bool) {
	if in.registered {
		if !restart && !in.has(flagStopped) {
			return
		}
		in.Stop()
		in.deferReplay(e, b, amplitude)
		return
	}

	if restart || b != in.bus || in.ended {
		in.cursor, in.acc = 0, 0
		if b != nil {
			b.ResetStream()
		}
	}

	in.engine = e
	in.bus = b
	in.amp = amplitude
	in.ended = false
	in.underrun = false
	in.nilLogged = false
	in.clear(flagStopped)

	in.registered = true
	in.status.Store(int32(StatusPending))
	e.AddInput(in)
}

// deferReplay installs a one-shot end callback that restores the caller's
// callback and plays again.
func (in *Input) deferReplay(e *Engine, b bus.Bus, amplitude float32) {
	if !in.overriding {
		in.overriding = true
		in.savedEnd = in.onEnd
	}

	in.onEnd = func() {
		in.onEnd = in.savedEnd
		in.savedEnd = nil
		in.overriding = false
		in.Play(e, b, amplitude, true)
	}
}

// retire runs on the control goroutine once the Engine let go of the Input.
func (in *Input) retire() {
	in.registered = false
	in.status.Store(int32(StatusRetired))

	if in.onEnd != nil {
		in.onEnd()
	}
}

// refill runs on a pool worker.
func (in *Input) refill() {
	in.bus.Stream(in.has(flagLoop))
	in.streaming.Store(false)
}

// Stop asks the Engine to drop the Input on its next render. The end
// callback still fires once the Input is retired.
func (in *Input) Stop() { in.set(flagStopped) }

// SetEndCallback sets the function called on the control goroutine after
// the Input retires. A pending replay keeps it for the replayed instance.
func (in *Input) SetEndCallback(cb func()) {
	if in.overriding {
		in.savedEnd = cb
		return
	}
	in.onEnd = cb
}

func (in *Input) SetLoop(loop bool) { in.toggle(flagLoop, loop) }

// SetSimulateStereo delays the right channel of a mono, non-streaming bus by
// a tenth of a second.
func (in *Input) SetSimulateStereo(on bool) { in.toggle(flagSimulateStereo, on) }

// SetResampleStep sets the playback speed in hundredths: UnityStep plays at
// the bus rate, 200 twice as fast, 50 at half speed. Negative values are
// treated as 0.
func (in *Input) SetResampleStep(step int) {
	in.step.Store(int32(max(0, min(step, math.MaxInt32))))
}

// SetMaxAmplitude caps the envelope.
func (in *Input) SetMaxAmplitude(v float32) { in.maxAmp.Store(math.Float32bits(v)) }

// SetAmplitudeInc sets the per-frame envelope change. A negative value fades
// out and retires the Input once the amplitude reaches zero.
func (in *Input) SetAmplitudeInc(v float32) { in.ampInc.Store(math.Float32bits(v)) }

func (in *Input) Looping() bool         { return in.has(flagLoop) }
func (in *Input) Stopped() bool         { return in.has(flagStopped) }
func (in *Input) SimulateStereo() bool  { return in.has(flagSimulateStereo) }
func (in *Input) ResampleStep() int     { return int(in.step.Load()) }
func (in *Input) MaxAmplitude() float32 { return math.Float32frombits(in.maxAmp.Load()) }
func (in *Input) AmplitudeInc() float32 { return math.Float32frombits(in.ampInc.Load()) }

// Status may be read from any goroutine.
func (in *Input) Status() Status { return Status(in.status.Load()) }

// Registered reports whether the Input is pending, active or retiring.
func (in *Input) Registered() bool { return in.registered }

// Position returns the playback cursor in frames of the current buffer.
// Only meaningful while the Input is not registered.
func (in *Input) Position() int { return in.cursor }

// Bus returns the bus bound by the last Play.
func (in *Input) Bus() bus.Bus { return in.bus }

func (in *Input) has(f flag) bool { return flag(in.flags.Load())&f != 0 }
func (in *Input) set(f flag)      { in.flags.Or(uint32(f)) }
func (in *Input) clear(f flag)    { in.flags.And(^uint32(f)) }

func (in *Input) toggle(f flag, on bool) {
	if on {
		in.set(f)
		return
	}
	in.clear(f)
}
