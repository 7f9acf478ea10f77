// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"io"
	"math"

	"github.com/glebm/SDL-audiolib/audio"
)

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface structurally.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		generated:    0,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	// Calculate how many frames we can write
	framesRequested := len(dst) / m.channels
	framesAvailable := m.totalSamples - m.generated
	framesToWrite := framesRequested
	if framesToWrite > framesAvailable {
		framesToWrite = framesAvailable
	}

	// Generate samples
	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// MockByteSource is an in-memory audio.ByteSource for testing decoders and
// the auto-detection path without touching a real file.
type MockByteSource struct {
	r      *bytes.Reader
	closed bool
}

// NewMockByteSource wraps data as a seekable, tellable in-memory source.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{r: bytes.NewReader(data)}
}

func (m *MockByteSource) Read(p []byte) (int, error) { return m.r.Read(p) }

func (m *MockByteSource) Seek(offset int64) (int64, error) {
	return m.r.Seek(offset, io.SeekStart)
}

func (m *MockByteSource) Tell() (int64, error) {
	return m.r.Seek(0, io.SeekCurrent)
}

func (m *MockByteSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called, for assertions in tests
// that care about resource cleanup.
func (m *MockByteSource) Closed() bool { return m.closed }

// MockDevice is an audio.Device standing in for real sound hardware, for
// tests that wire a Mixer end to end without opening an output device.
type MockDevice struct {
	Rate int
	Ch   int
	Fmt  audio.Format
}

// NewMockDevice returns a MockDevice advertising rate, ch and format.
func NewMockDevice(rate, ch int, format audio.Format) *MockDevice {
	return &MockDevice{Rate: rate, Ch: ch, Fmt: format}
}

func (d *MockDevice) SampleRate() int      { return d.Rate }
func (d *MockDevice) Channels() int        { return d.Ch }
func (d *MockDevice) Format() audio.Format { return d.Fmt }
