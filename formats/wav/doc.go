// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files.
//
// Decoding goes through github.com/go-audio/wav and accepts integer PCM at
// 16, 24 or 32 bits, any channel count and any sample rate. Samples come
// out as float32 in [-1.0, 1.0].
//
//	f, _ := os.Open("hit.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if errors.Is(err, wav.ErrOnlyPCMSupported) {
//	    // float or compressed WAV
//	}
//
// Writer streams float32 frames out as 16-bit PCM and is what the null
// driver uses for offline capture. WriteWAV16 is the one-shot variant for
// callers that already hold int16 samples and only have an io.Writer.
package wav
