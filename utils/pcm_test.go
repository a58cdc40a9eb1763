// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0, want: 0},
		{name: "max positive", input: 1, want: math.MaxInt16},
		{name: "max negative", input: -1, want: -math.MaxInt16},
		{name: "half positive", input: 0.5, want: 16383},
		{name: "half negative", input: -0.5, want: -16383},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp under min", input: -100, want: -math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Float32ToInt16(tt.input)
			if diff := int(got) - int(tt.want); diff > 1 || diff < -1 {
				t.Errorf("Float32ToInt16(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInt16LEToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lo, hi byte
		want   float32
	}{
		{name: "zero", lo: 0x00, hi: 0x00, want: 0},
		{name: "min", lo: 0x00, hi: 0x80, want: -1},
		{name: "half", lo: 0x00, hi: 0x40, want: 0.5},
		{name: "minus one lsb", lo: 0xFF, hi: 0xFF, want: -1.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Int16LEToFloat32(tt.lo, tt.hi); got != tt.want {
				t.Errorf("Int16LEToFloat32(%#x, %#x) = %v, want %v", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestIntToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        int
		bitDepth int
		want     float32
	}{
		{name: "8-bit half", v: 64, bitDepth: 8, want: 0.5},
		{name: "16-bit min", v: -32768, bitDepth: 16, want: -1},
		{name: "24-bit quarter", v: 2097152, bitDepth: 24, want: 0.25},
		{name: "unknown depth uses 16-bit", v: 16384, bitDepth: 12, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IntToFloat32(tt.v, tt.bitDepth); got != tt.want {
				t.Errorf("IntToFloat32(%d, %d) = %v, want %v", tt.v, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt16_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = Float32ToInt16(0.5)
	})

	if allocs > 0 {
		t.Errorf("Float32ToInt16 allocated %v times, want 0", allocs)
	}
}
