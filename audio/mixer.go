// SPDX-License-Identifier: EPL-2.0

package audio

// Device is the minimal contract the Mixer needs from an audio output
// backend: a sample rate, channel count, and device-native sample format to
// convert into. internal/device provides a concrete implementation backed
// by github.com/hajimehoshi/oto; tests use a Device that only reports a
// fixed rate, channel count and format.
type Device interface {
	SampleRate() int
	Channels() int
	Format() Format
}

// Mixer is the process-wide realtime mixer: it owns the active Stream list
// and the device spec that every Stream's Resampler must target. Grounded
// on stream_p.cpp's Stream_priv statics and fSdlCallbackImpl.
//
// Callback is meant to be invoked by a device-driving goroutine (see
// internal/device) every time the backend wants another slice of audio; it
// must never block, allocate on a hot path beyond the one-time buffer grow
// on spec change, or take any lock besides audioLock.
type Mixer struct {
	mu audioLock

	device      Device
	initialized bool

	streams []*Stream

	finalMixBuf []float32
	strmBuf     []float32
	converter   converter
}

// NewMixer constructs an uninitialized Mixer. Init must be called with a
// Device before streams can be played against it.
func NewMixer() *Mixer {
	return &Mixer{}
}

// Init wires the Mixer to device, selecting the byte converter for its
// format. Returns ErrMixerAlreadyInitialized if called twice, and
// ErrUnsupportedFormat if no converter is registered for device's format.
func (m *Mixer) Init(device Device) error {
	defer m.mu.lock()()
	if m.initialized {
		return ErrMixerAlreadyInitialized
	}
	conv, ok := converters[device.Format()]
	if !ok {
		return ErrUnsupportedFormat
	}
	m.device = device
	m.converter = conv
	m.initialized = true
	return nil
}

// Quit tears the Mixer down, detaching all active streams without closing
// their decoders. Streams' Close must still be called by their owner.
func (m *Mixer) Quit() {
	defer m.mu.lock()()
	m.streams = nil
	m.initialized = false
	m.device = nil
	m.converter = nil
}

// IsInitialized reports whether Init has succeeded and Quit has not since
// been called.
func (m *Mixer) IsInitialized() bool {
	defer m.mu.lock()()
	return m.initialized
}

// Spec reports the Mixer's current device, or nil if uninitialized. Unlike
// a one-shot query, this stays valid for the Mixer's whole lifetime: the
// Device itself is long-lived, not a point-in-time snapshot.
func (m *Mixer) Spec() Device {
	defer m.mu.lock()()
	return m.device
}

func (m *Mixer) addStream(s *Stream) {
	defer m.mu.lock()()
	m.addStreamLocked(s)
}

// addStreamLocked assumes m.mu is already held by the caller.
func (m *Mixer) addStreamLocked(s *Stream) {
	for _, existing := range m.streams {
		if existing == s {
			return
		}
	}
	m.streams = append(m.streams, s)
}

func (m *Mixer) removeStream(s *Stream) {
	defer m.mu.lock()()
	m.removeStreamLocked(s)
}

// removeStreamLocked assumes m.mu is already held by the caller. Callback
// uses this directly (it already holds m.mu for its whole body) so that
// removing a stream that finished mid-slice never re-enters m.mu.
func (m *Mixer) removeStreamLocked(s *Stream) {
	for i, existing := range m.streams {
		if existing == s {
			m.streams = append(m.streams[:i], m.streams[i+1:]...)
			return
		}
	}
}

// Callback produces one slice of device-native output bytes into out. It is
// the realtime heart of the module: never blocks, never allocates except
// the one-time buffer grow below when wantedSamples changes, and holds
// audioLock only for the duration of this call.
//
// wantedSamples is outLen in sample units, i.e. len(out) /
// device.Format().BytesPerSample().
func (m *Mixer) Callback(out []byte) {
	defer m.mu.lock()()
	if !m.initialized {
		for i := range out {
			out[i] = 0
		}
		return
	}

	bps := m.device.Format().BytesPerSample()
	wantedSamples := len(out) / bps

	if len(m.finalMixBuf) != wantedSamples {
		m.finalMixBuf = make([]float32, wantedSamples)
		m.strmBuf = make([]float32, wantedSamples)
	}
	for i := range m.finalMixBuf {
		m.finalMixBuf[i] = 0
	}

	channels := m.device.Channels()

	// Snapshot the stream list: the post-mix sweep below may drop entries
	// from m.streams, which must not perturb this iteration.
	streamList := make([]*Stream, len(m.streams))
	copy(streamList, m.streams)

	for _, stream := range streamList {
		stream.mixOneSlice(m.finalMixBuf, m.strmBuf, wantedSamples, channels)
	}

	m.converter(out, m.finalMixBuf)

	// A stream that stopped or finished during this slice (naturally, or via
	// a fade-out completing) cleared its own playing flag under its own
	// lock; remove it here, directly on m.streams, rather than having the
	// stream call back into removeStream and re-acquire m.mu, which this
	// goroutine already holds.
	for _, stream := range streamList {
		if !stream.IsPlaying() {
			m.removeStreamLocked(stream)
		}
	}
}
