// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"time"
)

// Decoder is the polymorphic entity the Resampler and Stream consume:
// {open, decode, rewind, get-channels, get-rate, get-duration, seek-to-time,
// is-at-end}. Once Open returns successfully, SampleRate and Channels
// return stable nonzero values until the next Open.
//
// DecoderAdapter is the only implementation this module ships; it wraps a
// Codec-produced Source and performs the mono↔stereo channel adaptation
// described in spec.md §4.1.
type Decoder interface {
	Open(src ByteSource) error

	// Decode fills buf with up to len(buf) interleaved float samples in
	// [-1,1], counted in the adapter's output channel layout. It returns the
	// number of samples written, a callAgain flag (the underlying source
	// announced a mid-stream rate/channel change and must be called again
	// with fresh buffers once the caller has observed the new spec), and an
	// error. At end-of-stream, Decode returns (0, false, nil).
	Decode(buf []float32) (n int, callAgain bool, err error)

	Rewind() error
	SeekToTime(pos time.Duration) bool

	SampleRate() int
	Channels() int
	Duration() time.Duration
	AtEnd() bool

	Close() error
}

// seekableSource is an optional Source extension: a format whose underlying
// library can seek within the decoded stream implements this to back
// Decoder.SeekToTime.
type seekableSource interface {
	SeekToTime(pos time.Duration) bool
}

// durationSource is an optional Source extension reporting total playback
// duration, backing Decoder.Duration.
type durationSource interface {
	Duration() time.Duration
}

// specChanger is an optional Source extension a decoder uses to announce,
// after a ReadSamples call, that its rate or channel count changed
// mid-stream. DecoderAdapter surfaces this as Decode's callAgain result.
type specChanger interface {
	SpecChanged() bool
}

// DecoderAdapter wraps a Codec and a ByteSource to build the full Decoder
// contract. wantChannels is the channel count the caller (typically the
// Resampler, on behalf of the Mixer) needs samples delivered in; the
// adapter performs mono↔stereo expansion/downmix to bridge a mismatch
// between the underlying Source's channel count and wantChannels.
type DecoderAdapter struct {
	codec        Codec
	wantChannels int

	src    ByteSource
	source Source

	stereoBuf []float32
	atEnd     bool
}

// NewDecoderAdapter constructs a Decoder around codec, delivering samples
// in wantChannels (1 or 2).
func NewDecoderAdapter(codec Codec, wantChannels int) *DecoderAdapter {
	return &DecoderAdapter{codec: codec, wantChannels: wantChannels}
}

func (d *DecoderAdapter) Open(src ByteSource) error {
	source, err := d.codec.Decode(asReader(src))
	if err != nil {
		return err
	}
	d.src = src
	d.source = source
	d.atEnd = false
	return nil
}

func (d *DecoderAdapter) SampleRate() int {
	if d.source == nil {
		return 0
	}
	return d.source.SampleRate()
}

// Channels reports the adapter's output channel count, not the underlying
// Source's — that is the whole point of the adapter.
func (d *DecoderAdapter) Channels() int { return d.wantChannels }

func (d *DecoderAdapter) AtEnd() bool { return d.atEnd }

func (d *DecoderAdapter) Duration() time.Duration {
	if dur, ok := d.source.(durationSource); ok {
		return dur.Duration()
	}
	return 0
}

func (d *DecoderAdapter) SeekToTime(pos time.Duration) bool {
	if sk, ok := d.source.(seekableSource); ok {
		ok := sk.SeekToTime(pos)
		if ok {
			d.atEnd = false
		}
		return ok
	}
	return false
}

// Rewind seeks the byte source back to offset 0 and reopens the
// codec, since most decoding libraries in the pack cannot rewind their own
// decode state in place.
func (d *DecoderAdapter) Rewind() error {
	if d.src == nil {
		return ErrNotOpen
	}
	if _, err := d.src.Seek(0); err != nil {
		return err
	}
	source, err := d.codec.Decode(asReader(d.src))
	if err != nil {
		return err
	}
	if d.source != nil {
		_ = d.source.Close()
	}
	d.source = source
	d.atEnd = false
	return nil
}

func (d *DecoderAdapter) Close() error {
	if d.source == nil {
		return nil
	}
	return d.source.Close()
}

func (d *DecoderAdapter) Decode(buf []float32) (int, bool, error) {
	if d.source == nil {
		return 0, false, ErrNotOpen
	}

	srcChannels := d.source.Channels()
	var n int
	var err error

	switch {
	case srcChannels == 1 && d.wantChannels == 2:
		half := len(buf) / 2
		n, err = d.source.ReadSamples(buf[:half])
		monoToStereo(buf, n)
		n *= 2

	case srcChannels == 2 && d.wantChannels == 1:
		need := len(buf) * 2
		if cap(d.stereoBuf) < need {
			d.stereoBuf = make([]float32, need)
		}
		d.stereoBuf = d.stereoBuf[:need]
		n, err = d.source.ReadSamples(d.stereoBuf)
		stereoToMono(buf, d.stereoBuf, n)
		n /= 2

	default:
		n, err = d.source.ReadSamples(buf)
	}

	callAgain := false
	if sc, ok := d.source.(specChanger); ok {
		callAgain = sc.SpecChanged()
	}

	if err == io.EOF {
		if n == 0 {
			d.atEnd = true
			return 0, false, nil
		}
		return n, callAgain, nil
	}
	if err != nil {
		return n, false, err
	}
	return n, callAgain, nil
}
