// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC (Free Lossless Audio Codec) streams, via
// github.com/mewkiz/flac, into an audio.Source producing interleaved
// float32 samples across all channels.
//
// Decode reads the stream frame by frame and normalizes samples to
// [-1.0, 1.0] using each frame's bits-per-sample. FLAC allows the bit depth
// to vary per frame; this decoder re-derives the normalization factor on
// every frame rather than assuming the StreamInfo header's value holds for
// the whole file.
package flac
