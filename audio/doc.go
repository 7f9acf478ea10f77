// SPDX-License-Identifier: EPL-2.0

// Package audio provides the realtime audio playback pipeline: byte source,
// format codec, decoder adapter, pull-based resampler, stream state
// machine, and mixer.
//
// # Pipeline
//
// A playable Stream is assembled from four layers:
//
//	ByteSource -> Codec -> DecoderAdapter -> Resampler -> Stream -> Mixer
//
// A ByteSource is an SDL_RWops-style abstraction over a file or in-memory
// buffer: Read, Seek to an absolute offset, Tell the current offset, Close.
// A Codec (one per format: wav, aiff, mp3, ogg vorbis, flac, ...) parses a
// ByteSource into a Source, the uniform pull interface every decoded format
// exposes: a fixed SampleRate and Channels count, and ReadSamples filling a
// caller buffer with interleaved float32 samples in [-1,1].
//
// DecoderAdapter wraps a Codec-produced Source to build the full Decoder
// contract a Resampler and Stream consume, performing mono<->stereo channel
// adaptation when the Source's channel count does not match what playback
// wants.
//
// Resampler pulls decoded samples through a ResamplerKernel (CubicKernel
// ships by default, using Catmull-Rom cubic interpolation) to convert
// between the decoder's native rate and the device's playback rate,
// buffering across calls and handling mid-stream rate or channel changes a
// decoder announces.
//
// # Playback
//
// Stream drives one Resampler through its full lifecycle: Play, Pause,
// Resume, Stop, Rewind, seeking, volume, stereo position, muting, fades,
// and a per-stream Processor chain, advancing a state machine (detached,
// ready, playing, fading in, paused, fading out, stopped) as control calls
// and the mix callback interleave.
//
// Mixer holds the process-wide list of active streams and is the realtime
// entry point: its Callback is invoked by a Device (an output abstraction
// implemented outside this package, e.g. by internal/device) once per audio
// buffer, and mixes every playing stream's pulled samples into the output
// buffer in the device's native sample format.
//
// # Format registry and detection
//
// Registry maps format keys ("wav", "mp3", "ogg vorbis", ...) to Codec
// implementations. Detect tries registered codecs in caller-supplied
// priority order, gating MIDI behind a header sniff and excluding
// tracker/module formats from blind autodetection, returning the Source
// built by the first codec that succeeds.
//
// # Sample format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// This normalized format keeps resampling, mixing, and fades free of bit
// depth concerns; Format and its converters translate the final mix to the
// device's wire format (S8, U8, S16LE/BE, S32LE/BE, F32LE/BE) only at the
// very end of the pipeline.
//
// # Error handling
//
// Source.ReadSamples returns io.EOF when no more data is available.
// Decoder.Decode and Resampler.Resample do not: at end of stream they
// return zero samples with a nil error, so a caller reads until n == 0:
//
//	for {
//	    n, err := resampler.Resample(buf)
//	    if err != nil {
//	        return err
//	    }
//	    if n == 0 {
//	        break // normal end of stream
//	    }
//	    // process buf[:n]
//	}
package audio
