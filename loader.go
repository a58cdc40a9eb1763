// SPDX-License-Identifier: EPL-2.0

package mixcore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ik5/mixcore/audio"
	"github.com/ik5/mixcore/bus"
	"github.com/ik5/mixcore/formats/aiff"
	"github.com/ik5/mixcore/formats/mp3"
	"github.com/ik5/mixcore/formats/vorbis"
	"github.com/ik5/mixcore/formats/wav"
)

const (
	DefaultStreamThreshold   = 4 << 20
	DefaultStreamChunkFrames = 16384
)

// NewDefaultRegistry returns a registry with every bundled decoder.
func NewDefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})

	return reg
}

// Loader decodes files into buses at a fixed sample rate.
type Loader struct {
	registry    *audio.Registry
	sampleRate  int
	threshold   int64
	chunkFrames int
	log         *slog.Logger
}

type LoaderOption func(*Loader)

// WithStreamThreshold sets the file size above which Load streams instead
// of decoding everything up front.
func WithStreamThreshold(bytes int64) LoaderOption {
	return func(l *Loader) { l.threshold = bytes }
}

// WithChunkFrames sets the size of each streaming buffer.
func WithChunkFrames(frames int) LoaderOption {
	return func(l *Loader) {
		if frames > 0 {
			l.chunkFrames = frames
		}
	}
}

func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(reg *audio.Registry, sampleRate int, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:    reg,
		sampleRate:  sampleRate,
		threshold:   DefaultStreamThreshold,
		chunkFrames: DefaultStreamChunkFrames,
		log:         slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load returns a bus for path: a bus.Static for files up to the stream
// threshold, a bus.Streaming otherwise.
func (l *Loader) Load(path string) (bus.Bus, error) {
	if l.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, l.sampleRate)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loading %s: %w", path, ErrIsDirectory)
	}

	if info.Size() > l.threshold {
		b, err := bus.NewStreaming(func() (audio.Source, error) {
			return l.registry.Open(path)
		}, l.sampleRate, l.chunkFrames, bus.WithLogger(l.log))
		if err != nil {
			return nil, fmt.Errorf("streaming %s: %w", path, err)
		}

		l.log.Debug("streaming", "path", path, "bytes", info.Size(), "chunk_frames", l.chunkFrames)
		return b, nil
	}

	src, err := l.registry.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	defer src.Close()

	b, err := bus.Decode(src, l.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	l.log.Debug("decoded", "path", path, "frames", b.SamplesPerChannel(), "channels", b.Channels())
	return b, nil
}
