// SPDX-License-Identifier: EPL-2.0

package audio

import "testing"

func TestMonoToStereo_DuplicatesSamples(t *testing.T) {
	t.Parallel()

	// buf holds srcLen mono samples followed by room for srcLen*2 stereo samples.
	buf := make([]float32, 6)
	copy(buf, []float32{0.1, 0.2, 0.3})

	monoToStereo(buf, 3)

	want := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestMonoToStereo_SingleSample(t *testing.T) {
	t.Parallel()

	buf := make([]float32, 2)
	buf[0] = 0.75

	monoToStereo(buf, 1)

	if buf[0] != 0.75 || buf[1] != 0.75 {
		t.Errorf("buf = %v, want [0.75 0.75]", buf)
	}
}

func TestMonoToStereo_ZeroLength(t *testing.T) {
	t.Parallel()

	buf := []float32{1, 2, 3, 4}
	original := append([]float32(nil), buf...)

	monoToStereo(buf, 0)

	for i := range buf {
		if buf[i] != original[i] {
			t.Errorf("buf unexpectedly modified at %d: %v != %v", i, buf[i], original[i])
		}
	}
}

func TestStereoToMono_Averages(t *testing.T) {
	t.Parallel()

	src := []float32{0.4, 0.6, 1.0, -1.0, 0.0, 0.0}
	dst := make([]float32, 3)

	stereoToMono(dst, src, 6)

	want := []float32{0.5, 0.0, 0.0}
	for i := range want {
		if diff := dst[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestStereoToMono_SingleFrame(t *testing.T) {
	t.Parallel()

	src := []float32{1.0, -1.0}
	dst := make([]float32, 1)

	stereoToMono(dst, src, 2)

	if dst[0] != 0 {
		t.Errorf("dst[0] = %v, want 0", dst[0])
	}
}

func TestStereoToMono_ZeroLength(t *testing.T) {
	t.Parallel()

	dst := []float32{9, 9}
	stereoToMono(dst, []float32{1, 2}, 0)

	if dst[0] != 9 || dst[1] != 9 {
		t.Errorf("dst unexpectedly modified: %v", dst)
	}
}

func TestDecoderAdapter_MonoToStereoChannelAdapt(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 1, 100, 0.5)
	dec := NewDecoderAdapter(&mockCodec{}, 2)
	dec.source = src
	dec.wantChannels = 2

	buf := make([]float32, 8)
	n, _, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 8 {
		t.Fatalf("Decode() n = %d, want 8", n)
	}
	for i := range n {
		if buf[i] != 0.5 {
			t.Errorf("buf[%d] = %v, want 0.5", i, buf[i])
		}
	}
}

func TestDecoderAdapter_StereoToMonoChannelAdapt(t *testing.T) {
	t.Parallel()

	src := newMockSource(8000, 2, 100, func(sample, channel int) float32 {
		if channel == 0 {
			return 0.2
		}
		return 0.8
	})
	dec := NewDecoderAdapter(&mockCodec{}, 1)
	dec.source = src
	dec.wantChannels = 1

	buf := make([]float32, 4)
	n, _, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("Decode() n = %d, want 4", n)
	}
	for i := range n {
		if diff := buf[i] - 0.5; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("buf[%d] = %v, want 0.5", i, buf[i])
		}
	}
}
