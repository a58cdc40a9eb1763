// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to signed 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing.
	return int16(x * 32767.0)
}

// Int16LEToFloat32 decodes one little-endian 16-bit sample into [-1, 1).
func Int16LEToFloat32(lo, hi byte) float32 {
	return float32(int16(uint16(lo)|uint16(hi)<<8)) / 32768.0
}

// IntToFloat32 normalizes an integer PCM sample of the given bit depth.
// Unknown depths are treated as 16-bit.
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(v) / FullScale(bitDepth)
}

// FullScale returns the magnitude of the most negative sample for bitDepth.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
