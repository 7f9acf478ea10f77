// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/glebm/SDL-audiolib/utils"
)

// ResamplerKernel is the subclass extension point spec.md §6 describes:
// AdjustForOutputSpec is invoked whenever rates change so the kernel can
// rebuild internal state; DoResampling transforms srcAvail input samples
// into exactly dstCap output samples. The Resampler always advances its
// buffer cursors by dstCap/srcAvail after the call regardless of how the
// kernel actually used its inputs — matching the upstream contract noted as
// an open question in spec.md §9 — so DoResampling reports nothing back.
type ResamplerKernel interface {
	AdjustForOutputSpec(dstRate, srcRate, channels int)
	DoResampling(dst, src []float32, dstCap, srcAvail int)
}

// CubicKernel resamples using Catmull-Rom cubic interpolation, carrying a
// fractional read position and the last real frame across calls so chunk
// boundaries don't produce audible discontinuities.
type CubicKernel struct {
	channels int
	ratio    float64 // srcRate / dstRate
	pos      float64 // fractional position into the next call's src buffer

	tail      []float32
	haveTail  bool
	zeroFrame []float32
}

func NewCubicKernel() *CubicKernel {
	return &CubicKernel{}
}

func (k *CubicKernel) AdjustForOutputSpec(dstRate, srcRate, channels int) {
	k.channels = channels
	k.ratio = float64(srcRate) / float64(dstRate)
	k.pos = 0
	k.tail = make([]float32, channels)
	k.zeroFrame = make([]float32, channels)
	k.haveTail = false
}

func (k *CubicKernel) frame(src []float32, frameCount, i int) []float32 {
	switch {
	case i < 0:
		if k.haveTail {
			return k.tail
		}
		if frameCount > 0 {
			return src[0:k.channels]
		}
		return k.zeroFrame
	case i >= frameCount:
		if frameCount == 0 {
			return k.zeroFrame
		}
		last := frameCount - 1
		return src[last*k.channels : (last+1)*k.channels]
	default:
		return src[i*k.channels : (i+1)*k.channels]
	}
}

func (k *CubicKernel) DoResampling(dst, src []float32, dstCap, srcAvail int) {
	channels := k.channels
	if channels == 0 {
		return
	}
	frameCount := srcAvail / channels
	dstFrames := dstCap / channels

	for j := 0; j < dstFrames; j++ {
		srcPos := k.pos + float64(j)*k.ratio
		i0 := int(math.Floor(srcPos))
		frac := float32(srcPos - float64(i0))

		y0 := k.frame(src, frameCount, i0-1)
		y1 := k.frame(src, frameCount, i0)
		y2 := k.frame(src, frameCount, i0+1)
		y3 := k.frame(src, frameCount, i0+2)

		base := j * channels
		for c := 0; c < channels; c++ {
			dst[base+c] = utils.CubicInterpolate(y0[c], y1[c], y2[c], y3[c], frac)
		}
	}

	k.pos = k.pos + float64(dstFrames)*k.ratio - float64(frameCount)
	if frameCount > 0 {
		last := frameCount - 1
		copy(k.tail, src[last*channels:(last+1)*channels])
		k.haveTail = true
	}
}
