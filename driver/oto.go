// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package driver

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerFrame = Channels * 4

// Oto plays through the platform audio device via oto. oto pulls audio by
// calling Read on its own goroutine, which renders exactly the frames asked
// for.
//
// oto allows a single context per process, so only one Oto may be
// initialized at a time.
type Oto struct {
	r            Renderer
	rate         int
	periodFrames int

	mtx    sync.Mutex
	ctx    *oto.Context
	player *oto.Player

	buf []float32
	log *slog.Logger
}

func NewOto(r Renderer, sampleRate int, opts ...Option) *Oto {
	o := buildOptions(NameOto, opts)

	return &Oto{
		r:            r,
		rate:         sampleRate,
		periodFrames: o.periodFrames,
		buf:          make([]float32, o.periodFrames*Channels),
		log:          o.log,
	}
}

func (o *Oto) Initialize() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.ctx != nil {
		return ErrAlreadyInitialized
	}

	period := time.Duration(o.periodFrames) * time.Second / time.Duration(o.rate)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.rate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   period,
	})
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	o.ctx = ctx
	o.player = ctx.NewPlayer(o)
	o.player.SetBufferSize(o.periodFrames * bytesPerFrame)
	o.player.Play()

	o.log.Info("oto sink started", "sample_rate", o.rate, "period", period)

	return nil
}

// Read implements io.Reader for the oto player.
func (o *Oto) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	samples := frames * Channels
	if cap(o.buf) < samples {
		o.buf = make([]float32, samples)
	}
	buf := o.buf[:samples]

	o.r.RenderAudio(buf, frames)

	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}

	return frames * bytesPerFrame, nil
}

func (o *Oto) Suspend() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.ctx == nil {
		return ErrNotInitialized
	}
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (o *Oto) Resume() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.ctx == nil {
		return ErrNotInitialized
	}
	if err := o.ctx.Resume(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (o *Oto) HardwareSampleRate() int { return o.rate }

// Close stops playback. The oto context itself lives until the process exits.
func (o *Oto) Close() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.player == nil {
		return nil
	}

	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
