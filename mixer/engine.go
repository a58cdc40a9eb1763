// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ik5/mixcore/bus"
	"github.com/ik5/mixcore/sched"
)

// Channels is the number of interleaved channels Render writes.
const Channels = 2

// Scheduler runs stream refills and delivers retirements. *sched.Pool
// implements it.
type Scheduler interface {
	Submit(work func()) bool
	SubmitWithReply(work, reply func(), replyTo sched.TaskRunner) bool
}

// Stats are cumulative counters kept by Render.
type Stats struct {
	Rendered  uint64 // render periods
	Underruns uint64 // underrun episodes
	Retired   uint64 // inputs handed back to the control goroutine
	Active    int    // inputs mixed in the last period
}

// Engine mixes every active Input into the driver's buffer.
//
// AddInput belongs to the control goroutine. Render belongs to the driver
// goroutine and never waits on a lock: new inputs are picked up with a
// TryLock and simply wait a period when it is contended.
type Engine struct {
	pendingMu sync.Mutex
	pending   []*Input

	// Render goroutine only.
	working  []*Input
	retiring []*Input

	sched   Scheduler
	replyTo sched.TaskRunner
	log     *slog.Logger

	rendered  atomic.Uint64
	underruns atomic.Uint64
	retired   atomic.Uint64
	active    atomic.Int64
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an engine that refills streams on s and posts
// retirements to replyTo, normally a *sched.TaskQueue drained by the
// control goroutine.
func NewEngine(s Scheduler, replyTo sched.TaskRunner, opts ...Option) *Engine {
	e := &Engine{
		sched:    s,
		replyTo:  replyTo,
		pending:  make([]*Input, 0, 16),
		working:  make([]*Input, 0, 64),
		retiring: make([]*Input, 0, 16),
		log:      slog.Default().With("component", "mixer"),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AddInput queues in for the next render. Input.Play calls it.
func (e *Engine) AddInput(in *Input) {
	e.pendingMu.Lock()
	e.pending = append(e.pending, in)
	e.pendingMu.Unlock()
}

func (e *Engine) Stats() Stats {
	return Stats{
		Rendered:  e.rendered.Load(),
		Underruns: e.underruns.Load(),
		Retired:   e.retired.Load(),
		Active:    int(e.active.Load()),
	}
}

// Render overwrites out with frames interleaved stereo frames of every
// active input summed. Samples are not clipped.
func (e *Engine) Render(out []float32, frames int) {
	if e.pendingMu.TryLock() {
		for _, in := range e.pending {
			in.status.Store(int32(StatusActive))
		}
		e.working = append(e.working, e.pending...)
		clear(e.pending)
		e.pending = e.pending[:0]
		e.pendingMu.Unlock()
	}

	frames = max(0, min(frames, len(out)/Channels))
	clear(out[:frames*Channels])

	kept := e.working[:0]
	for _, in := range e.working {
		if e.mix(in, out, frames) {
			kept = append(kept, in)
			continue
		}
		in.status.Store(int32(StatusRetiring))
		e.retiring = append(e.retiring, in)
	}
	clear(e.working[len(kept):])
	e.working = kept

	e.sweep()

	e.active.Store(int64(len(e.working)))
	e.rendered.Add(1)
}

// sweep hands back retired inputs whose refill has finished. The rest wait
// for a later period, so a worker never writes into a bus the control
// goroutine already reclaimed.
func (e *Engine) sweep() {
	waiting := e.retiring[:0]
	for _, in := range e.retiring {
		if in.streaming.Load() {
			waiting = append(waiting, in)
			continue
		}

		e.retired.Add(1)
		if !e.sched.SubmitWithReply(nil, in.retireFn, e.replyTo) {
			e.replyTo.PostTask(in.retireFn)
		}
	}
	clear(e.retiring[len(waiting):])
	e.retiring = waiting
}

// mix adds in to out and reports whether it stays active.
func (e *Engine) mix(in *Input, out []float32, frames int) bool {
	flags := flag(in.flags.Load())
	if flags&flagStopped != 0 {
		return false
	}

	b := in.bus
	if b == nil {
		if !in.nilLogged {
			in.nilLogged = true
			e.log.Error("input has no bus, dropping it")
		}
		return false
	}

	step := int(in.step.Load())
	inc := in.AmplitudeInc()
	maxAmp := in.MaxAmplitude()
	loop := flags&flagLoop != 0

	offset := 0
	if flags&flagSimulateStereo != 0 && b.Channels() == 1 && !b.IsStreaming() {
		offset = b.SampleRate() / 10
	}

	src0, src1, n := readable(b)
	cursor, acc, amp := in.cursor, in.acc, in.amp
	keep := true

	for f := range frames {
		if cursor >= n {
			in.cursor = cursor
			if keep = e.endOfBuffer(in, b, n); !keep {
				break
			}
			cursor = in.cursor
			src0, src1, n = readable(b)
			if cursor >= n {
				break
			}
		}

		out[f*Channels] += src0[cursor] * amp
		if i := cursor + offset; i < n {
			out[f*Channels+1] += src1[i] * amp
		} else if loop {
			out[f*Channels+1] += src1[i%n] * amp
		}

		amp += inc
		if amp > maxAmp {
			amp = maxAmp
		}
		if inc != 0 && amp <= 0 {
			keep = false
			break
		}

		acc += step
		cursor += acc / UnityStep
		acc %= UnityStep
	}

	in.cursor, in.acc, in.amp = cursor, acc, amp

	// An input that ends exactly on a period boundary retires or wraps now
	// rather than a period late.
	if keep && n > 0 && cursor >= n {
		keep = e.endOfBuffer(in, b, n)
	}

	return keep
}

// endOfBuffer handles a cursor that ran off the readable samples and
// reports whether the input stays active. It may swap in the next chunk of
// a streaming bus.
func (e *Engine) endOfBuffer(in *Input, b bus.Bus, n int) bool {
	switch {
	case in.streaming.Load():
		// The refill is late. Replay stale samples rather than wait.
		if !in.underrun {
			in.underrun = true
			e.underruns.Add(1)
			e.log.Warn("stream underrun", "samples", n)
		}
		if n > 0 {
			in.cursor %= n
		}
		return true

	case b.EndOfStream():
		if in.has(flagLoop) && n > 0 {
			in.cursor %= n
			return true
		}
		in.ended = true
		return false

	default:
		in.underrun = false
		in.streaming.Store(true)
		b.SwapBuffers()
		// Keep the overshoot of a step above unity.
		in.cursor = max(0, in.cursor-n)
		if !e.sched.Submit(in.refillFn) {
			// Nothing will ever refill the back buffer.
			in.streaming.Store(false)
			e.log.Error("cannot schedule stream refill, ending input")
			in.ended = true
			return false
		}
		return true
	}
}

func readable(b bus.Bus) (src0, src1 []float32, n int) {
	src0, src1 = b.ChannelData(0), b.ChannelData(1)
	n = min(len(src0), len(src1), b.SamplesPerChannel())

	return src0, src1, n
}
