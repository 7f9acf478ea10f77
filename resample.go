// SPDX-License-Identifier: EPL-2.0

package audpbx

import (
	"io"

	"github.com/glebm/SDL-audiolib/audio"
)

// sourceCodec adapts an already-constructed audio.Source into an audio.Codec
// so it can be driven through audio.ResampleToMono16, which wants a Codec to
// build its own DecoderAdapter. r is ignored: the Source was built by the
// caller, not by parsing a stream here.
type sourceCodec struct{ src audio.Source }

func (c sourceCodec) Decode(r io.Reader) (audio.Source, error) { return c.src, nil }

// nopByteSource is a placeholder audio.ByteSource for DecoderAdapter.Open,
// whose sourceCodec never reads from it.
type nopByteSource struct{}

func (nopByteSource) Read([]byte) (int, error)  { return 0, io.EOF }
func (nopByteSource) Seek(int64) (int64, error) { return 0, nil }
func (nopByteSource) Tell() (int64, error)      { return 0, nil }
func (nopByteSource) Close() error              { return nil }

// ResampleToMono16 is a high-level convenience function that resamples
// audio to a target sample rate, downmixes it to mono, and collects the
// result as 16-bit PCM. It takes an already-decoded Source directly,
// wrapping it as a Codec so it can be driven through audio.ResampleToMono16,
// which builds the pipeline: DecoderAdapter (downmix) -> Resampler
// (CubicKernel) -> int16 conversion.
//
// Parameters:
//   - src: the audio source to process
//   - targetRate: target sample rate in Hz (e.g., 8000, 16000, 44100, 48000)
//   - bufferSize: size of the buffer used to pull samples through the
//     pipeline (e.g., 4096); larger buffers trade memory for fewer pulls
//
// Returns the collected int16 PCM, the output sample rate (== targetRate),
// and any error other than the io.EOF that signals normal completion.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	pcm16, rate, err := audpbx.ResampleToMono16(src, 8000, 4096)
//	if err != nil {
//	    panic(err)
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	return audio.ResampleToMono16(sourceCodec{src: src}, nopByteSource{}, targetRate, bufferSize)
}
