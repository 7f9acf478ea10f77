// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"sync"
)

// Source is the uniform pull interface a format-specific codec exposes once
// it has parsed a stream: interleaved float32 samples in [-1,1], at a fixed
// rate and channel count for the lifetime of the Source.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns the number of float32 values written (not frames). When n == 0
	// with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Codec constructs a Source from an input reader. Each supported file
// format (wav, mp3, vorbis, aiff, flac, ...) provides one Codec
// implementation; DecoderAdapter wraps a Codec to build the full Decoder
// contract that the Resampler and Stream consume.
type Codec interface {
	Decode(r io.Reader) (Source, error)
}

// Registry is a format registry for decoders by format key (e.g., "wav",
// "mp3", "ogg vorbis").
type Registry struct {
	codecs map[string]Codec

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Codec),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Codec) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Codec, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Detect tries the registered codecs named in order, in that order (callers
// list lossless/structured before lossy, lossy before tracker/module
// formats; MIDI is tried only when a "MThd" header is sniffed, tracker
// formats are never tried blindly) and returns the Source built by the
// first one that succeeds. Keys in order that are not registered are skipped.
// Between attempts src is rewound to its original offset. If every codec
// fails, Detect returns ErrNoCodec.
func Detect(src ByteSource, order []string, registry *Registry) (Source, string, error) {
	start, err := src.Tell()
	if err != nil {
		return nil, "", err
	}

	head := make([]byte, 4)
	n, _ := io.ReadFull(io.LimitReader(src, 4), head)
	head = head[:n]
	if _, err := src.Seek(start); err != nil {
		return nil, "", err
	}
	isMIDI := bytes.Equal(head, []byte("MThd"))

	for _, format := range order {
		codec, ok := registry.Get(format)
		if !ok {
			continue
		}
		if requiresMIDIHeader[format] && !isMIDI {
			continue
		}
		if neverAutodetect[format] {
			continue
		}

		s, err := codec.Decode(asReader(src))
		if err == nil {
			return s, format, nil
		}
		if _, serr := src.Seek(start); serr != nil {
			return nil, "", serr
		}
	}

	return nil, "", ErrNoCodec
}

// requiresMIDIHeader tags format keys whose codec must only be attempted
// when the stream begins with a MIDI "MThd" chunk header. No MIDI codec
// ships in this module, but Detect's callers may register one under the
// "midi" key and it will be gated correctly.
var requiresMIDIHeader = map[string]bool{
	"midi": true,
}

// neverAutodetect tags format keys (tracker/module formats) that are never
// tried blindly by Detect because they accept almost anything as input.
var neverAutodetect = map[string]bool{
	"mod": true,
	"xm":  true,
	"s3m": true,
	"it":  true,
}

// asReader adapts a ByteSource to an io.Reader for codecs that only need
// sequential reads.
func asReader(src ByteSource) io.Reader { return src }
