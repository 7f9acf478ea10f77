// SPDX-License-Identifier: EPL-2.0

package audio

// Resampler bridges a Decoder producing samples at one rate to a consumer
// demanding samples at another, buffering input, invoking a
// ResamplerKernel, and handling mid-stream spec changes without dropping or
// double-counting samples. See spec.md §4.2.
type Resampler struct {
	decoder  Decoder
	kernel   ResamplerKernel
	dstRate  int
	srcRate  int
	channels int
	chunk    int

	inBuf        []float32
	inPos, inEnd int

	outBuf         []float32
	outPos, outEnd int

	pendingSpecChange bool
}

// NewResampler constructs a Resampler that will drive kernel. Call SetSpec
// before the first Resample call.
func NewResampler(kernel ResamplerKernel) *Resampler {
	return &Resampler{kernel: kernel}
}

func (r *Resampler) SetDecoder(dec Decoder) { r.decoder = dec }

// SetSpec (re)configures the resampler for a destination rate, channel
// count, and chunk size (output frames per refill). srcRate is read from
// the decoder and clamped to [4000, 192000] per spec.md §3.
func (r *Resampler) SetSpec(dstRate, channels, chunkSize int) error {
	r.dstRate = dstRate
	r.channels = channels
	r.chunk = chunkSize
	r.srcRate = clamp(r.decoder.SampleRate(), 4000, 192000)
	r.adjustBufferSizes()
	r.kernel.AdjustForOutputSpec(r.dstRate, r.srcRate, r.channels)
	return nil
}

func ceilDiv(num, den int) int {
	return (num + den - 1) / den
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// adjustBufferSizes resizes the input/output buffers for the current spec,
// preserving any samples already held in the input buffer by relocating
// them to offset 0 first.
func (r *Resampler) adjustBufferSizes() {
	oldInLen := r.inEnd - r.inPos

	outSize := r.channels * r.chunk
	var inSize int
	if r.dstRate == r.srcRate {
		inSize = outSize
	} else {
		inSize = ceilDiv(outSize*r.srcRate, r.dstRate)
		if rem := inSize % r.channels; rem != 0 {
			inSize += r.channels - rem
		}
	}

	newIn := make([]float32, inSize)
	if oldInLen > 0 {
		copy(newIn, r.inBuf[r.inPos:r.inEnd])
	}
	r.inBuf = newIn
	r.inPos = 0
	r.inEnd = oldInLen

	r.outBuf = make([]float32, outSize)
	r.outPos, r.outEnd = 0, 0
}

// moveFromOutBuffer copies up to len(dst) samples from the output buffer
// into dst, returning the amount moved.
func (r *Resampler) moveFromOutBuffer(dst []float32) int {
	if r.outEnd == 0 || r.outPos >= r.outEnd {
		r.outPos, r.outEnd = 0, 0
		return 0
	}
	n := r.outEnd - r.outPos
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, r.outBuf[r.outPos:r.outPos+n])
	r.outPos += n
	if r.outPos >= r.outEnd {
		r.outPos, r.outEnd = 0, 0
	}
	return n
}

// resampleFromInBuffer transforms whatever is currently buffered in inBuf
// into outBuf: a direct copy when rates match, otherwise a kernel call.
func (r *Resampler) resampleFromInBuffer() {
	inLen := r.inEnd - r.inPos
	if inLen == 0 {
		return
	}
	from := r.inBuf[r.inPos:r.inEnd]
	to := r.outBuf[r.outEnd:]

	if r.srcRate == r.dstRate {
		n := len(to)
		if n > inLen {
			n = inLen
		}
		copy(to[:n], from[:n])
		r.outEnd += n
		r.inPos += n
	} else {
		outLen := len(to)
		// A short read (typically the last one) yields only the output its
		// input covers at the current ratio, not a whole chunk.
		if want := ceilDiv(inLen*r.dstRate, r.srcRate); want < outLen {
			if rem := want % r.channels; rem != 0 {
				want += r.channels - rem
			}
			if want < outLen {
				outLen = want
			}
		}
		r.kernel.DoResampling(to[:outLen], from, outLen, inLen)
		r.outEnd += outLen
		r.inPos += inLen
	}
	if r.inPos >= r.inEnd {
		r.inPos, r.inEnd = 0, 0
	}
}

func relocate(buf []float32, pos, end int) (int, int) {
	if end < 1 {
		return pos, end
	}
	if pos >= end {
		return 0, 0
	}
	if pos < 1 {
		return pos, end
	}
	n := end - pos
	copy(buf, buf[pos:end])
	return 0, n
}

// Resample drains buffered output first, then refills by pulling from the
// decoder until dst is full or the decoder is exhausted. It never returns
// more than len(dst) samples and only returns fewer at true end-of-stream.
func (r *Resampler) Resample(dst []float32) (int, error) {
	if r.channels > 0 && len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	total := 0

	if r.pendingSpecChange {
		total += r.moveFromOutBuffer(dst)
		r.outPos, r.outEnd = relocate(r.outBuf, r.outPos, r.outEnd)
		r.resampleFromInBuffer()
		total += r.moveFromOutBuffer(dst[total:])
		if total >= len(dst) {
			return len(dst), nil
		}
		_ = r.SetSpec(r.dstRate, r.channels, r.chunk)
		r.pendingSpecChange = false
	}

	total += r.moveFromOutBuffer(dst[total:])
	r.outPos, r.outEnd = relocate(r.outBuf, r.outPos, r.outEnd)

	for total < len(dst) && !r.decoder.AtEnd() {
		if r.inEnd < len(r.inBuf) {
			n, callAgain, err := r.decoder.Decode(r.inBuf[r.inEnd:])
			if err != nil {
				return total, err
			}
			if callAgain {
				r.inEnd += n
				r.resampleFromInBuffer()
				total += r.moveFromOutBuffer(dst[total:])
				if total >= len(dst) {
					r.pendingSpecChange = true
					return len(dst), nil
				}
				if err := r.SetSpec(r.dstRate, r.channels, r.chunk); err != nil {
					return total, err
				}
			} else if n <= 0 {
				break
			} else {
				r.inEnd += n
			}
		}

		r.resampleFromInBuffer()
		r.inPos, r.inEnd = relocate(r.inBuf, r.inPos, r.inEnd)
		total += r.moveFromOutBuffer(dst[total:])
		r.outPos, r.outEnd = relocate(r.outBuf, r.outPos, r.outEnd)
	}

	// The decoder has nothing more to give: flush what is still buffered.
	if total < len(dst) {
		r.resampleFromInBuffer()
		total += r.moveFromOutBuffer(dst[total:])
		r.outPos, r.outEnd = relocate(r.outBuf, r.outPos, r.outEnd)
	}

	return total, nil
}
