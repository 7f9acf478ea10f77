// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// mockCodec is a test Codec implementation.
type mockCodec struct {
	name string
}

func (c *mockCodec) Decode(r io.Reader) (Source, error) {
	return newSilentSource(44100, 2, 100), nil
}

// failingCodec always returns an error.
type failingCodec struct{}

func (c *failingCodec) Decode(r io.Reader) (Source, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	codec := &mockCodec{name: "wav"}

	registry.Register("wav", codec)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered codec")
	}

	if got != codec {
		t.Error("Registry.Get() returned different codec instance")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, ok := registry.Get("nonexistent")
	if ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_MultipleFormats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavCodec := &mockCodec{name: "wav"}
	mp3Codec := &mockCodec{name: "mp3"}
	oggCodec := &mockCodec{name: "ogg"}

	registry.Register("wav", wavCodec)
	registry.Register("mp3", mp3Codec)
	registry.Register("ogg", oggCodec)

	tests := []struct {
		format string
		want   Codec
		wantOK bool
	}{
		{"wav", wavCodec, true},
		{"mp3", mp3Codec, true},
		{"ogg", oggCodec, true},
		{"flac", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := registry.Get(tt.format)
			if ok != tt.wantOK {
				t.Errorf("Registry.Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Registry.Get(%q) returned wrong codec", tt.format)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	codec1 := &mockCodec{name: "first"}
	codec2 := &mockCodec{name: "second"}

	registry.Register("wav", codec1)
	registry.Register("wav", codec2)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed after overwrite")
	}

	if got != codec2 {
		t.Error("Registry.Get() did not return the overwritten codec")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	codec := &mockCodec{name: "test"}

	done := make(chan bool)
	for i := range 10 {
		go func(id int) {
			registry.Register("format", codec)
			done <- true
		}(i)
	}

	for i := range 10 {
		go func(id int) {
			_, _ = registry.Get("format")
			done <- true
		}(i)
	}

	for range 20 {
		<-done
	}

	got, ok := registry.Get("format")
	if !ok {
		t.Error("Registry.Get() failed after concurrent operations")
	}
	if got != codec {
		t.Error("Registry returned wrong codec after concurrent operations")
	}
}

func TestRegistry_EmptyFormatName(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	codec := &mockCodec{name: "test"}

	registry.Register("", codec)

	got, ok := registry.Get("")
	if !ok {
		t.Error(`Registry.Get("") failed for empty format name`)
	}
	if got != codec {
		t.Error(`Registry.Get("") returned wrong codec`)
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if registry.codecs == nil {
		t.Error("NewRegistry() did not initialize codecs map")
	}

	if registry.mtx == nil {
		t.Error("NewRegistry() did not initialize mutex")
	}
}

func TestDetect_FirstMatchWins(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("wav", &failingCodec{})
	registry.Register("mp3", &mockCodec{name: "mp3"})

	src := NewByteSource(&closeableReader{Reader: bytes.NewReader([]byte("RIFF....WAVEfmt "))})

	got, format, err := Detect(src, []string{"wav", "mp3"}, registry)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != "mp3" {
		t.Errorf("Detect() format = %q, want mp3", format)
	}
	if got == nil {
		t.Fatal("Detect() returned nil source")
	}
}

func TestDetect_NoCodecMatches(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("wav", &failingCodec{})

	src := NewByteSource(&closeableReader{Reader: bytes.NewReader([]byte("nonsense"))})

	_, _, err := Detect(src, []string{"wav"}, registry)
	if !errors.Is(err, ErrNoCodec) {
		t.Errorf("Detect() error = %v, want ErrNoCodec", err)
	}
}

func TestDetect_TrackerFormatsNeverAutodetected(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("mod", &mockCodec{name: "mod"})

	src := NewByteSource(&closeableReader{Reader: bytes.NewReader([]byte("anything"))})

	_, _, err := Detect(src, []string{"mod"}, registry)
	if !errors.Is(err, ErrNoCodec) {
		t.Errorf("Detect() error = %v, want ErrNoCodec (mod must never autodetect)", err)
	}
}

func TestDetect_MIDIRequiresHeader(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("midi", &mockCodec{name: "midi"})

	nonMIDI := NewByteSource(&closeableReader{Reader: bytes.NewReader([]byte("not midi data"))})
	if _, _, err := Detect(nonMIDI, []string{"midi"}, registry); !errors.Is(err, ErrNoCodec) {
		t.Errorf("Detect() without MThd header error = %v, want ErrNoCodec", err)
	}

	withMIDI := NewByteSource(&closeableReader{Reader: bytes.NewReader([]byte("MThd\x00\x00\x00\x06"))})
	if _, format, err := Detect(withMIDI, []string{"midi"}, registry); err != nil || format != "midi" {
		t.Errorf("Detect() with MThd header = (%q, %v), want (midi, nil)", format, err)
	}
}

// closeableReader adapts an io.Reader to the ReadSeekCloser NewByteSource
// wants, for tests that only have a bytes.Reader.
type closeableReader struct {
	*bytes.Reader
}

func (closeableReader) Close() error { return nil }

// BenchmarkRegistry_Register benchmarks registering codecs.
func BenchmarkRegistry_Register(b *testing.B) {
	registry := NewRegistry()
	codec := &mockCodec{}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		registry.Register("wav", codec)
	}
}

// BenchmarkRegistry_Get benchmarks retrieving codecs.
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	codec := &mockCodec{}
	registry.Register("wav", codec)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}

// BenchmarkRegistry_GetMiss benchmarks cache misses.
func BenchmarkRegistry_GetMiss(b *testing.B) {
	registry := NewRegistry()

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("nonexistent")
	}
}

// BenchmarkRegistry_ConcurrentRegisterGet benchmarks concurrent operations.
func BenchmarkRegistry_ConcurrentRegisterGet(b *testing.B) {
	registry := NewRegistry()
	codec := &mockCodec{}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				registry.Register("wav", codec)
			} else {
				_, _ = registry.Get("wav")
			}
			i++
		}
	})
}
