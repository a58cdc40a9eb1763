// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Downmixer folds sources wider than maxChannels down to mono by averaging
// every frame. Sources within the limit pass through untouched.
type Downmixer struct {
	src         Source
	maxChannels int
	tmp         []float32
}

func NewDownmixer(src Source, maxChannels int) *Downmixer {
	if maxChannels < 1 {
		maxChannels = 1
	}

	return &Downmixer{
		src:         src,
		maxChannels: maxChannels,
		tmp:         make([]float32, 4096),
	}
}

func (d *Downmixer) passthrough() bool { return d.src.Channels() <= d.maxChannels }

func (d *Downmixer) SampleRate() int { return d.src.SampleRate() }

func (d *Downmixer) Channels() int {
	if d.passthrough() {
		return d.src.Channels()
	}
	return 1
}

func (d *Downmixer) Close() error {
	if err := d.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with at most len(dst) frames of the folded stream.
func (d *Downmixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if d.passthrough() {
		return d.src.ReadSamples(dst)
	}

	channels := d.src.Channels()
	samplesNeeded := len(dst) * channels

	// Grow but never shrink, the read size is usually stable.
	if cap(d.tmp) < samplesNeeded {
		d.tmp = make([]float32, samplesNeeded)
	}
	d.tmp = d.tmp[:samplesNeeded]

	n, err := d.src.ReadSamples(d.tmp)
	if n == 0 {
		return 0, err
	}

	frames := n / channels
	inv := float32(1.0) / float32(channels)

	for f := range frames {
		base := f * channels
		sum := float32(0)
		for c := range channels {
			sum += d.tmp[base+c]
		}
		dst[f] = sum * inv
	}

	return frames, err
}
