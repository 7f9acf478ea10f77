// SPDX-License-Identifier: EPL-2.0

package audio

// monoToStereo expands buf in place: buf holds srcLen mono samples packed at
// the front of a buffer sized for srcLen*2 stereo samples. Each source
// sample s becomes the pair (s, s). The expansion walks backward from the
// end of the buffer so that a write never clobbers a source sample that
// still needs to be read.
func monoToStereo(buf []float32, srcLen int) {
	if srcLen < 1 || buf == nil {
		return
	}
	for i, j := srcLen-1, srcLen*2-1; i >= 0; i-- {
		buf[j] = buf[i]
		j--
		buf[j] = buf[i]
		j--
	}
}

// stereoToMono downmixes srcLen interleaved stereo samples from src into
// srcLen/2 mono samples in dst by averaging each L/R pair.
func stereoToMono(dst, src []float32, srcLen int) {
	if srcLen < 1 || dst == nil || src == nil {
		return
	}
	for i, j := 0, 0; i < srcLen; i, j = i+2, j+1 {
		dst[j] = src[i]*0.5 + src[i+1]*0.5
	}
}
