// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"
)

// Format enumerates the device sample formats the Mixer can target, each
// with a registered converter, per spec.md §6.
type Format int

const (
	FormatS8 Format = iota
	FormatU8
	FormatS16LE
	FormatS16BE
	FormatS32LE
	FormatS32BE
	FormatF32LE
	FormatF32BE
)

// BytesPerSample reports the device-native byte width of one channel
// sample in the given format.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatS8, FormatU8:
		return 1
	case FormatS16LE, FormatS16BE:
		return 2
	default:
		return 4
	}
}

// converter turns a float32 mix buffer in [-1,1] into device-native bytes,
// saturating out-of-range values to the format's representable range. The
// mix itself is never clamped — only the conversion step is responsible for
// that, per spec.md §4.4.
type converter func(out []byte, src []float32)

var converters = map[Format]converter{
	FormatS8:    convertS8,
	FormatU8:    convertU8,
	FormatS16LE: convertS16LE,
	FormatS16BE: convertS16BE,
	FormatS32LE: convertS32LE,
	FormatS32BE: convertS32BE,
	FormatF32LE: convertF32LE,
	FormatF32BE: convertF32BE,
}

func clampFloat(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func convertS8(out []byte, src []float32) {
	for i, s := range src {
		out[i] = byte(int8(clampFloat(s) * 127))
	}
}

func convertU8(out []byte, src []float32) {
	for i, s := range src {
		out[i] = byte(int16(clampFloat(s)*127) + 128)
	}
}

func convertS16LE(out []byte, src []float32) {
	for i, s := range src {
		v := int16(clampFloat(s) * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
}

func convertS16BE(out []byte, src []float32) {
	for i, s := range src {
		v := int16(clampFloat(s) * 32767)
		binary.BigEndian.PutUint16(out[i*2:], uint16(v))
	}
}

func convertS32LE(out []byte, src []float32) {
	for i, s := range src {
		v := int32(float64(clampFloat(s)) * 2147483647)
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
}

func convertS32BE(out []byte, src []float32) {
	for i, s := range src {
		v := int32(float64(clampFloat(s)) * 2147483647)
		binary.BigEndian.PutUint32(out[i*4:], uint32(v))
	}
}

func convertF32LE(out []byte, src []float32) {
	for i, s := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(clampFloat(s)))
	}
}

func convertF32BE(out []byte, src []float32) {
	for i, s := range src {
		binary.BigEndian.PutUint32(out[i*4:], math.Float32bits(clampFloat(s)))
	}
}
