// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ik5/mixcore/audio"
	"github.com/ik5/mixcore/bus"
	"github.com/ik5/mixcore/internal/audiotest"
	"github.com/ik5/mixcore/sched"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// manualScheduler queues work until the test runs it, which makes refills
// and retirement delivery deterministic. Like sched.Pool it does not
// allocate once its queue has grown.
type manualScheduler struct {
	tasks  []manualTask
	spare  []manualTask
	closed bool
}

type manualTask struct {
	work    func()
	reply   func()
	replyTo sched.TaskRunner
}

func (m *manualScheduler) Submit(work func()) bool {
	return m.push(manualTask{work: work})
}

func (m *manualScheduler) SubmitWithReply(work, reply func(), replyTo sched.TaskRunner) bool {
	return m.push(manualTask{work: work, reply: reply, replyTo: replyTo})
}

func (m *manualScheduler) push(t manualTask) bool {
	if m.closed {
		return false
	}
	m.tasks = append(m.tasks, t)
	return true
}

func (m *manualScheduler) run() int {
	tasks := m.tasks
	m.tasks, m.spare = m.spare[:0], nil
	for _, t := range tasks {
		if t.work != nil {
			t.work()
		}
		if t.replyTo != nil {
			t.replyTo.PostTask(t.reply)
		}
	}
	clear(tasks)
	m.spare = tasks[:0]

	return len(tasks)
}

type harness struct {
	sched *manualScheduler
	queue *sched.TaskQueue
	eng   *Engine
	out   []float32
}

func newHarness() *harness {
	h := &harness{
		sched: &manualScheduler{},
		queue: sched.NewTaskQueue(),
	}
	h.eng = NewEngine(h.sched, h.queue, WithLogger(quiet))

	return h
}

// render runs one period and returns the buffer.
func (h *harness) render(frames int) []float32 {
	if cap(h.out) < frames*Channels {
		h.out = make([]float32, frames*Channels)
	}
	h.out = h.out[:frames*Channels]
	h.eng.Render(h.out, frames)

	return h.out
}

// renderFrames renders total frames in periods of at most period frames.
func (h *harness) renderFrames(total, period int) {
	for total > 0 {
		n := min(total, period)
		h.render(n)
		total -= n
	}
}

// settle runs queued background work and drains the control queue.
func (h *harness) settle() int {
	h.sched.run()
	return h.queue.RunPendingTasks()
}

func staticBus(t testing.TB, samples ...[]float32) *bus.Static {
	t.Helper()

	b, err := bus.NewStatic(48000, samples...)
	if err != nil {
		t.Fatalf("NewStatic() error = %v", err)
	}
	return b
}

func constant(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// ramp returns samples equal to index/scale.
func ramp(n int, scale float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i) / scale
	}
	return s
}

func streamingBus(t testing.TB, frames, chunk int) *bus.Streaming {
	t.Helper()

	b, err := bus.NewStreaming(func() (audio.Source, error) {
		return audiotest.NewRampSource(48000, 1, frames, 1), nil
	}, 48000, chunk, bus.WithLogger(quiet))
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	return b
}

type endCounter struct{ n int }

func (c *endCounter) fn() func() { return func() { c.n++ } }
