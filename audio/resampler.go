// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/mixcore/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves channel count.
// A one-pole low-pass runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// window holds frames t-1, t0, t+1, t+2 around the output position.
	window [4][]float32
	// padded counts trailing window slots filled by repeating the last frame
	// after the source ran dry.
	padded int
	primed bool
	done   bool
	pos    float64
	srcErr error

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		in:          make([]float32, 1024*channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst, refilling the input
// block as needed. It returns false once the source is exhausted.
func (r *Resampler) readFrame(dst []float32) bool {
	for r.inPos >= r.inLen {
		if r.srcEOF {
			return false
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos = 0
		r.inLen = n - n%r.channels

		if err != nil {
			r.srcEOF = true
			if !errors.Is(err, io.EOF) {
				r.srcErr = err
			}
		} else if n == 0 {
			r.srcEOF = true
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.useFilter {
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true
}

// prime loads the first frames. The first frame seeds the filter state to
// avoid a warm-up transient.
func (r *Resampler) prime() bool {
	r.primed = true

	first := make([]float32, r.channels)
	if r.useFilter {
		saved := r.useFilter
		r.useFilter = false
		ok := r.readFrame(first)
		r.useFilter = saved
		if !ok {
			return false
		}
		copy(r.filterState, first)
	} else if !r.readFrame(first) {
		return false
	}

	copy(r.window[0], first)
	copy(r.window[1], first)
	for i := 2; i < 4; i++ {
		if !r.readFrame(r.window[i]) {
			copy(r.window[i], r.window[i-1])
			r.padded++
		}
	}

	return r.padded < 2
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() bool {
	first := r.window[0]
	r.window[0], r.window[1], r.window[2] = r.window[1], r.window[2], r.window[3]
	r.window[3] = first

	if r.padded > 0 || !r.readFrame(r.window[3]) {
		copy(r.window[3], r.window[2])
		r.padded++
	}

	return r.padded < 2
}

// ReadSamples produces dst samples at the target rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed && !r.prime() {
		r.done = true
	}

	written := 0
	frames := len(dst) / r.channels

	for !r.done && written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if !r.advance() {
				r.done = true
				break
			}
		}
		if r.done {
			break
		}

		x := float32(r.pos)
		base := written * r.channels
		for c := range r.channels {
			dst[base+c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	if r.done {
		if r.srcErr != nil {
			return written * r.channels, fmt.Errorf("%w", r.srcErr)
		}
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
