// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ik5/mixcore/internal/audiotest"
)

type stubDecoder struct {
	src  *audiotest.MockSource
	err  error
	read []byte
}

func (d *stubDecoder) Decode(r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d.read = data
	if d.err != nil {
		return nil, d.err
	}
	return d.src, nil
}

func TestRegistry_KeysAreNormalized(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	dec := &stubDecoder{}
	reg.Register(".WAV", dec)

	for _, key := range []string{"wav", ".wav", "WAV", ".Wav"} {
		got, ok := reg.Get(key)
		if !ok {
			t.Errorf("Get(%q) not found", key)
			continue
		}
		if got != dec {
			t.Errorf("Get(%q) returned a different decoder", key)
		}
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("ogg", &stubDecoder{})
	reg.Register("mp3", &stubDecoder{})
	reg.Register("wav", &stubDecoder{})

	want := []string{"mp3", "ogg", "wav"}
	if got := reg.Formats(); !reflect.DeepEqual(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_OpenUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Open("sound.xyz")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Open() error = %v, want ErrUnknownFormat", err)
	}
}

func TestRegistry_OpenDecodesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "beep.raw")
	if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}

	mock := audiotest.NewConstantSource(8000, 1, 10, 0.25)
	dec := &stubDecoder{src: mock}
	reg := NewRegistry()
	reg.Register("raw", dec)

	src, err := reg.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if string(dec.read) != "payload" {
		t.Errorf("decoder read %q, want %q", dec.read, "payload")
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.Closed() {
		t.Error("Close() did not close the decoded source")
	}
}

func TestRegistry_OpenDecodeError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.raw")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	reg := NewRegistry()
	reg.Register("raw", &stubDecoder{err: boom})

	if _, err := reg.Open(path); !errors.Is(err, boom) {
		t.Fatalf("Open() error = %v, want wrapped %v", err, boom)
	}
}

func TestRegistry_OpenMissingFile(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("raw", &stubDecoder{})

	_, err := reg.Open(filepath.Join(t.TempDir(), "missing.raw"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open() error = %v, want os.ErrNotExist", err)
	}
}
