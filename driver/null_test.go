// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/mixcore/formats/wav"
)

type countingRenderer struct {
	calls  atomic.Int64
	frames atomic.Int64
	value  float32
}

func (c *countingRenderer) RenderAudio(buf []float32, frames int) {
	c.calls.Add(1)
	c.frames.Add(int64(frames))
	for i := range buf[:frames*Channels] {
		buf[i] = c.value
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNull_RendersOnTicker(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	n := NewNull(r, 48000, WithPeriodFrames(48), WithLogger(quiet))

	if err := n.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := n.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Initialize() error = %v, want ErrAlreadyInitialized", err)
	}

	waitFor(t, func() bool { return r.calls.Load() >= 3 })

	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := n.Frames(); got != uint64(r.frames.Load()) || got%48 != 0 {
		t.Errorf("Frames() = %d, renderer saw %d", got, r.frames.Load())
	}

	calls := r.calls.Load()
	time.Sleep(10 * time.Millisecond)
	if r.calls.Load() != calls {
		t.Error("renderer still called after Close")
	}
}

func TestNull_SuspendResume(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	n := NewNull(r, 48000, WithPeriodFrames(48), WithLogger(quiet))
	if err := n.Suspend(); err != nil {
		t.Fatal(err)
	}
	if err := n.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	time.Sleep(20 * time.Millisecond)
	if r.calls.Load() != 0 {
		t.Fatalf("rendered %d periods while suspended", r.calls.Load())
	}

	if err := n.Resume(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return r.calls.Load() > 0 })
}

func TestNull_RenderPeriodsCapture(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	r := &countingRenderer{value: 0.5}
	n := NewNull(r, 22050, WithPeriodFrames(100), WithCapture(f), WithLogger(quiet))

	if err := n.RenderPeriods(5); err != nil {
		t.Fatalf("RenderPeriods() error = %v", err)
	}
	if n.Frames() != 500 {
		t.Errorf("Frames() = %d, want 500", n.Frames())
	}
	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	src, err := wav.Decoder{}.Decode(in)
	if err != nil {
		t.Fatalf("capture is not a valid WAV: %v", err)
	}
	if src.SampleRate() != 22050 || src.Channels() != 2 {
		t.Errorf("capture format = %d Hz x %d", src.SampleRate(), src.Channels())
	}

	buf := make([]float32, 2000)
	total := 0
	for {
		n, err := src.ReadSamples(buf[total:])
		total += n
		if err != nil || n == 0 {
			break
		}
	}
	if total != 1000 {
		t.Errorf("captured %d samples, want 1000", total)
	}
	if buf[0] < 0.49 || buf[0] > 0.51 {
		t.Errorf("captured sample = %v, want about 0.5", buf[0])
	}
}

func TestNull_CloseWithoutInitialize(t *testing.T) {
	t.Parallel()

	n := NewNull(&countingRenderer{}, 48000, WithLogger(quiet))
	if err := n.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
