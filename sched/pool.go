// SPDX-License-Identifier: EPL-2.0

package sched

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
)

// Pool runs submitted work on a fixed set of worker goroutines.
//
// Submit never waits for a worker: the queue is unbounded, so a busy pool
// delays work instead of stalling the caller. The queue lock is only held
// to append or pop one entry, and once the queue has grown to its working
// size neither Submit nor SubmitWithReply allocates. The render goroutine
// relies on both.
type Pool struct {
	mtx     sync.Mutex
	cond    *sync.Cond
	queue   []task
	head    int
	closed  bool
	workers int
	wg      sync.WaitGroup
	log     *slog.Logger
}

// task is one queued unit of work. A task with a replyTo posts reply there
// once work has returned.
type task struct {
	work    func()
	reply   func()
	replyTo TaskRunner
}

type PoolOption func(*Pool)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPool starts a pool with the given number of workers. Zero or a
// negative count, or one above runtime.NumCPU, is clamped to runtime.NumCPU.
func NewPool(workers int, opts ...PoolOption) *Pool {
	if n := runtime.NumCPU(); workers <= 0 || workers > n {
		workers = n
	}

	p := &Pool{
		workers: workers,
		queue:   make([]task, 0, 64),
		log:     slog.Default().With("component", "sched"),
	}
	p.cond = sync.NewCond(&p.mtx)

	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Submit queues work for a worker. It returns false if the pool was shut
// down, in which case work will never run.
func (p *Pool) Submit(work func()) bool {
	if work == nil {
		return true
	}

	return p.push(task{work: work})
}

// SubmitWithReply runs work on a worker, then posts reply to replyTo.
// The reply is never run on the worker itself, and is posted even if work
// panics. work may be nil, which only delivers the reply.
func (p *Pool) SubmitWithReply(work, reply func(), replyTo TaskRunner) bool {
	if replyTo == nil {
		return p.Submit(work)
	}

	return p.push(task{work: work, reply: reply, replyTo: replyTo})
}

func (p *Pool) push(t task) bool {
	p.mtx.Lock()
	if p.closed {
		p.mtx.Unlock()
		return false
	}
	p.queue = append(p.queue, t)
	p.mtx.Unlock()

	p.cond.Signal()

	return true
}

// Pending returns the number of queued tasks no worker has picked up yet.
func (p *Pool) Pending() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return len(p.queue) - p.head
}

// Shutdown stops accepting work, lets the workers drain what is queued and
// waits for them to exit. It is safe to call more than once.
func (p *Pool) Shutdown() {
	p.mtx.Lock()
	p.closed = true
	p.mtx.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		t, ok := p.next()
		if !ok {
			return
		}
		p.run(t)
	}
}

func (p *Pool) next() (task, bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for p.head == len(p.queue) && !p.closed {
		p.cond.Wait()
	}
	if p.head == len(p.queue) {
		return task{}, false
	}

	t := p.queue[p.head]
	p.queue[p.head] = task{}
	p.head++

	// Reclaim the backing array once it is fully consumed.
	if p.head == len(p.queue) {
		p.queue = p.queue[:0]
		p.head = 0
	}

	return t, true
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()

	if t.replyTo != nil {
		defer t.replyTo.PostTask(t.reply)
	}
	if t.work != nil {
		t.work()
	}
}
