// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/mixcore/formats/wav"
)

// Null renders on a ticker at the rate a real device would and throws the
// audio away, or records it with WithCapture.
type Null struct {
	r            Renderer
	rate         int
	periodFrames int

	renderMu sync.Mutex
	buf      []float32
	capture  *wav.Writer

	mtx     sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	suspended atomic.Bool
	frames    atomic.Uint64

	log     *slog.Logger
	options options
}

func NewNull(r Renderer, sampleRate int, opts ...Option) *Null {
	o := buildOptions(NameNull, opts)

	return &Null{
		r:            r,
		rate:         sampleRate,
		periodFrames: o.periodFrames,
		buf:          make([]float32, o.periodFrames*Channels),
		log:          o.log,
		options:      o,
	}
}

// Initialize opens the capture file, if any, and starts the period ticker.
func (n *Null) Initialize() error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.running {
		return ErrAlreadyInitialized
	}

	if err := n.openCapture(); err != nil {
		return err
	}

	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	n.running = true

	go n.loop(n.period(), n.stop, n.done)

	n.log.Info("null sink started",
		"sample_rate", n.rate,
		"period_frames", n.periodFrames,
		"capture", n.options.capture != nil)

	return nil
}

func (n *Null) openCapture() error {
	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	if n.options.capture == nil || n.capture != nil {
		return nil
	}

	w, err := wav.NewWriter(n.options.capture, n.rate, Channels)
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	n.capture = w

	return nil
}

func (n *Null) period() time.Duration {
	return time.Duration(n.periodFrames) * time.Second / time.Duration(n.rate)
}

func (n *Null) loop(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !n.suspended.Load() {
				n.renderPeriod()
			}
		}
	}
}

// RenderPeriods renders count periods right away on the calling goroutine,
// ignoring Suspend. It is meant for offline rendering without Initialize.
func (n *Null) RenderPeriods(count int) error {
	if err := n.openCapture(); err != nil {
		return err
	}

	for range count {
		if err := n.renderPeriod(); err != nil {
			return err
		}
	}

	return nil
}

func (n *Null) renderPeriod() error {
	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	n.r.RenderAudio(n.buf, n.periodFrames)
	n.frames.Add(uint64(n.periodFrames))

	if n.capture == nil {
		return nil
	}
	if err := n.capture.Write(n.buf); err != nil {
		n.log.Error("capture write failed, capture disabled", "error", err)
		n.capture = nil
		return fmt.Errorf("capture: %w", err)
	}

	return nil
}

// Frames returns how many frames have been rendered.
func (n *Null) Frames() uint64 { return n.frames.Load() }

func (n *Null) Suspend() error {
	n.suspended.Store(true)
	return nil
}

func (n *Null) Resume() error {
	n.suspended.Store(false)
	return nil
}

func (n *Null) HardwareSampleRate() int { return n.rate }

// Close stops the ticker and finalizes the capture. The capture target
// itself stays open for the caller to close.
func (n *Null) Close() error {
	n.mtx.Lock()
	if n.running {
		close(n.stop)
		<-n.done
		n.running = false
	}
	n.mtx.Unlock()

	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	// A finalized capture is never reopened.
	n.options.capture = nil
	if n.capture == nil {
		return nil
	}

	err := n.capture.Close()
	n.capture = nil
	if err != nil {
		return fmt.Errorf("closing capture: %w", err)
	}

	return nil
}
