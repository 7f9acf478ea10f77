// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/glebm/SDL-audiolib/utils"
)

// ResampleToMono16 is a high-level convenience function that decodes src
// with codec, resamples to targetRate, downmixes to mono, and collects all
// samples as 16-bit PCM data.
//
// This builds the same pipeline a Stream would (DecoderAdapter + Resampler
// with a CubicKernel), but drives it to completion in one call rather than
// handing control to a Mixer. It is meant for one-shot offline conversion,
// not realtime playback.
func ResampleToMono16(codec Codec, src ByteSource, targetRate, bufferSize int) ([]int16, int, error) {
	dec := NewDecoderAdapter(codec, 1)
	if err := dec.Open(src); err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	defer dec.Close()

	resampler := NewResampler(NewCubicKernel())
	resampler.SetDecoder(dec)
	if err := resampler.SetSpec(targetRate, 1, bufferSize); err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}

	var pcm16 []int16
	buf := make([]float32, bufferSize)

	for {
		n, err := resampler.Resample(buf)
		if n > 0 {
			for i := range n {
				pcm16 = append(pcm16, utils.Float32ToInt16(buf[i]))
			}
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm16, targetRate, nil
}
