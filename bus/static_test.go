// SPDX-License-Identifier: EPL-2.0

package bus

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/mixcore/internal/audiotest"
)

func TestNewStatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels [][]float32
		wantErr  error
	}{
		{name: "mono", rate: 48000, channels: [][]float32{{1, 2, 3}}},
		{name: "stereo", rate: 44100, channels: [][]float32{{1, 2}, {3, 4}}},
		{name: "no channels", rate: 48000, wantErr: ErrChannelCount},
		{name: "three channels", rate: 48000, channels: [][]float32{{1}, {2}, {3}}, wantErr: ErrChannelCount},
		{name: "length mismatch", rate: 48000, channels: [][]float32{{1, 2}, {3}}, wantErr: ErrLengthMismatch},
		{name: "zero rate", rate: 0, channels: [][]float32{{1}}, wantErr: ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewStatic(tt.rate, tt.channels...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewStatic() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if b.Channels() != len(tt.channels) {
				t.Errorf("Channels() = %d, want %d", b.Channels(), len(tt.channels))
			}
			if b.SamplesPerChannel() != len(tt.channels[0]) {
				t.Errorf("SamplesPerChannel() = %d, want %d", b.SamplesPerChannel(), len(tt.channels[0]))
			}
			if !b.EndOfStream() || b.IsStreaming() {
				t.Error("static bus should be at end of stream and not streaming")
			}
		})
	}
}

func TestStatic_MonoAliasesSecondChannel(t *testing.T) {
	t.Parallel()

	b, err := NewStatic(48000, []float32{0.1, 0.2})
	if err != nil {
		t.Fatal(err)
	}

	l, r := b.ChannelData(0), b.ChannelData(1)
	if &l[0] != &r[0] {
		t.Error("ChannelData(1) does not alias channel 0 on a mono bus")
	}
	if b.ChannelData(2) != nil || b.ChannelData(-1) != nil {
		t.Error("out of range channel should be nil")
	}
}

func TestDecode_Deinterleaves(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(48000, 2, 10, func(i, ch int) float32 {
		if ch == 0 {
			return float32(i)
		}
		return -float32(i)
	})

	b, err := Decode(src, 48000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if b.Channels() != 2 || b.SamplesPerChannel() != 10 {
		t.Fatalf("got %d ch x %d, want 2 x 10", b.Channels(), b.SamplesPerChannel())
	}
	for i := range 10 {
		if b.ChannelData(0)[i] != float32(i) || b.ChannelData(1)[i] != -float32(i) {
			t.Errorf("frame %d = (%v, %v)", i, b.ChannelData(0)[i], b.ChannelData(1)[i])
		}
	}
}

func TestDecode_FoldsWideSources(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(48000, 4, 8, func(_, ch int) float32 {
		return float32(ch)
	})

	b, err := Decode(src, 48000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if b.Channels() != 1 {
		t.Fatalf("Channels() = %d, want 1", b.Channels())
	}
	if got := b.ChannelData(0)[0]; math.Abs(float64(got-1.5)) > 1e-6 {
		t.Errorf("folded sample = %v, want 1.5", got)
	}
}

func TestDecode_ConvertsRate(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(24000, 1, 2400, 440)

	b, err := Decode(src, 48000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if b.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", b.SampleRate())
	}
	if n := b.SamplesPerChannel(); n < 4780 || n > 4820 {
		t.Errorf("SamplesPerChannel() = %d, want about 4800", n)
	}
}

func TestDecode_PropagatesErrors(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(48000, 1, 10000).FailAfter(100)

	if _, err := Decode(src, 48000); !errors.Is(err, audiotest.ErrInjected) {
		t.Errorf("Decode() error = %v, want ErrInjected", err)
	}
	if _, err := Decode(src, 0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("Decode() error = %v, want ErrInvalidRate", err)
	}
}
