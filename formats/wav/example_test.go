// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/mixcore/formats/wav"
)

// Example_decoding decodes a WAV file built in memory.
func Example_decoding() {
	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 16000, 1, []int16{100, 200, 300, 400, 500}); err != nil {
		fmt.Printf("Write error: %v\n", err)
		return
	}

	source, err := wav.Decoder{}.Decode(wavData)
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
		return
	}

	fmt.Printf("Sample rate: %d Hz\n", source.SampleRate())
	fmt.Printf("Channels: %d\n", source.Channels())

	buf := make([]float32, 10)
	total := 0
	for {
		n, err := source.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Printf("Read error: %v\n", err)
			return
		}
	}

	fmt.Printf("Read %d samples\n", total)
	// Output:
	// Sample rate: 16000 Hz
	// Channels: 1
	// Read 5 samples
}

// ExampleWriter captures float32 frames to a file and reads them back.
func ExampleWriter() {
	f, err := os.CreateTemp("", "capture-*.wav")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.Remove(f.Name())
	defer f.Close()

	w, err := wav.NewWriter(f, 48000, 2)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := w.Write([]float32{0.5, -0.5, 0.25, 0}); err != nil {
		fmt.Println(err)
		return
	}
	if err := w.Close(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Frames written: %d\n", w.Frames())

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fmt.Println(err)
		return
	}
	source, err := wav.Decoder{}.Decode(f)
	if err != nil {
		fmt.Println(err)
		return
	}

	buf := make([]float32, 4)
	n, err := source.ReadSamples(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.2f\n", buf[:n])
	// Output:
	// Frames written: 2
	// [0.50 -0.50 0.25 0.00]
}
