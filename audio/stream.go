// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"time"
)

// streamState is the playback state machine from spec.md §4.3.
type streamState int

const (
	stateDetached streamState = iota
	stateReady
	statePlaying
	stateFadingIn
	statePaused
	stateFadingOut
	stateStopped
)

// FinishCallback is invoked once, on the callback thread, when a Stream's
// wanted iterations are exhausted. Keep it short: it runs inline in the
// realtime mixer callback.
type FinishCallback func(s *Stream)

// LoopCallback is invoked once per rewind for an infinite-loop (or
// not-yet-exhausted) Stream, on the callback thread.
type LoopCallback func(s *Stream)

// Stream represents one logical playback unit: a Decoder (optionally
// wrapped in a Resampler), playback state, and a processor chain. See
// spec.md §3-§4.3.
type Stream struct {
	mu audioLock

	decoder   Decoder
	resampler *Resampler
	byteSrc   ByteSource
	ownsByte  bool

	mixer *Mixer
	state streamState

	volume          float32
	stereoPos       float32
	internalVolume  float32
	muted           bool
	paused          bool
	playing         bool
	wantedIters     int
	currentIter     int
	fadeInDuration  time.Duration
	fadeOutDuration time.Duration
	fadeInStart     time.Time
	fadeOutStart    time.Time
	fadingIn        bool
	fadingOut       bool
	stopAfterFade   bool

	processors []Processor
	procBuf    []float32

	onFinish FinishCallback
	onLoop   LoopCallback

	nowFunc func() time.Time
}

// NewStream constructs a detached Stream around decoder, optionally pulling
// samples through resampler (pass nil to read directly from the decoder,
// e.g. when the decoder's rate already matches the device rate).
// byteSource is the Stream's ByteSource; ownsByteSource controls whether it
// is closed when the Stream is closed, per spec.md §5.
func NewStream(decoder Decoder, resampler *Resampler, byteSource ByteSource, ownsByteSource bool) *Stream {
	return &Stream{
		decoder:        decoder,
		resampler:      resampler,
		byteSrc:        byteSource,
		ownsByte:       ownsByteSource,
		state:          stateDetached,
		volume:         1,
		internalVolume: 1,
		nowFunc:        time.Now,
	}
}

// Open validates the decoder and wires up the resampler, transitioning
// Detached -> Ready.
func (s *Stream) Open() error {
	if err := s.decoder.Open(s.byteSrc); err != nil {
		return err
	}
	if s.resampler != nil {
		s.resampler.SetDecoder(s.decoder)
	}
	s.state = stateReady
	return nil
}

// Close releases the Stream's decoder and, if owned, its byte source.
func (s *Stream) Close() error {
	unlock := s.mu.lock()
	mixer := s.mixer
	// Released before touching the Mixer, for the same lock-order reason as
	// Play and Stop.
	unlock()
	if mixer != nil {
		mixer.removeStream(s)
	}

	defer s.mu.lock()()
	err := s.decoder.Close()
	if s.ownsByte && s.byteSrc != nil {
		if cerr := s.byteSrc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Play inserts the Stream into its Mixer's active list and begins playback.
// iterations == 0 means loop forever; iterations == n >= 1 means play n
// times. fadeIn, if nonzero, ramps internalVolume in over that duration.
func (s *Stream) Play(mixer *Mixer, iterations int, fadeIn time.Duration) error {
	if mixer == nil || !mixer.IsInitialized() {
		return ErrMixerNotInitialized
	}
	if s.state == stateDetached {
		return ErrStreamDetached
	}

	unlock := s.mu.lock()

	s.mixer = mixer
	s.wantedIters = iterations
	s.currentIter = 0
	s.playing = true
	s.paused = false
	s.fadingOut = false
	s.stopAfterFade = false

	if fadeIn > 0 {
		s.fadingIn = true
		s.internalVolume = 0
		s.fadeInDuration = fadeIn
		s.fadeInStart = s.nowFunc()
		s.state = stateFadingIn
	} else {
		s.fadingIn = false
		s.internalVolume = 1
		s.state = statePlaying
	}

	// Add to the Mixer's active list after releasing s.mu: Callback always
	// takes m.mu before any Stream's s.mu, so a control-thread call must
	// never hold s.mu while acquiring m.mu, or the two can deadlock AB-BA.
	unlock()
	mixer.addStream(s)
	return nil
}

// Stop removes the Stream from the active list immediately (fadeOut == 0)
// or enters FadingOut with stop-after-fade set. Synchronous: by return, one
// of those two has already happened.
func (s *Stream) Stop(fadeOut time.Duration) {
	unlock := s.mu.lock()
	if fadeOut > 0 && s.playing {
		s.fadingOut = true
		s.fadingIn = false
		s.stopAfterFade = true
		s.fadeOutDuration = fadeOut
		s.fadeOutStart = s.nowFunc()
		s.state = stateFadingOut
		unlock()
		return
	}
	s.finishStopLocked()
	mixer := s.mixer
	// Release s.mu before touching the Mixer: see the lock-order note on
	// Play. An immediate stop is the one case where a control-thread call
	// must remove the Stream itself, since finishStopLocked no longer does.
	unlock()
	if mixer != nil {
		mixer.removeStream(s)
	}
}

// finishStopLocked performs the immediate part of stopping: rewind the
// decoder and clear playing. It never touches the Mixer's stream list
// itself: this runs both from Stop (control thread, s.mu held but not m.mu)
// and from processFade's stopAfterFade branch (callback thread, m.mu and
// s.mu both already held by Callback/mixOneSlice). Acquiring m.mu from here
// would either invert the Stop-vs-Callback lock order or, on the callback
// path, re-enter the non-reentrant m.mu that Callback already holds.
// Callers are responsible for getting the Stream out of the Mixer's active
// list once playing goes false: Stop does it explicitly after unlocking,
// and Callback's post-slice sweep does it for the fade/finish cases.
func (s *Stream) finishStopLocked() {
	_ = s.decoder.Rewind()
	s.playing = false
	s.state = stateStopped
}

// Pause stops mixing this Stream into the output without resetting
// iteration/position state, either immediately or after a fade-out.
func (s *Stream) Pause(fadeOut time.Duration) {
	defer s.mu.lock()()
	if fadeOut > 0 && s.playing {
		s.fadingOut = true
		s.fadingIn = false
		s.stopAfterFade = false
		s.fadeOutDuration = fadeOut
		s.fadeOutStart = s.nowFunc()
		s.state = stateFadingOut
		return
	}
	s.paused = true
	s.state = statePaused
}

// Resume continues a paused Stream, optionally fading back in.
func (s *Stream) Resume(fadeIn time.Duration) {
	defer s.mu.lock()()
	s.paused = false
	if fadeIn > 0 {
		s.fadingIn = true
		s.internalVolume = 0
		s.fadeInDuration = fadeIn
		s.fadeInStart = s.nowFunc()
		s.state = stateFadingIn
	} else {
		s.fadingIn = false
		s.internalVolume = 1
		s.state = statePlaying
	}
}

// Rewind seeks the Stream's decoder back to the start.
func (s *Stream) Rewind() error {
	defer s.mu.lock()()
	return s.decoder.Rewind()
}

// SeekToTime seeks to an absolute position, if the underlying decoder
// supports it.
func (s *Stream) SeekToTime(pos time.Duration) bool {
	defer s.mu.lock()()
	return s.decoder.SeekToTime(pos)
}

func (s *Stream) Mute()   { defer s.mu.lock()(); s.muted = true }
func (s *Stream) Unmute() { defer s.mu.lock()(); s.muted = false }

func (s *Stream) SetVolume(v float32) {
	defer s.mu.lock()()
	if v < 0 {
		v = 0
	}
	s.volume = v
}

func (s *Stream) Volume() float32 {
	defer s.mu.lock()()
	return s.volume
}

// SetStereoPosition sets the stereo pan, clamped to [-1, +1].
// -1 = full left, +1 = full right, 0 = centered.
func (s *Stream) SetStereoPosition(p float32) {
	defer s.mu.lock()()
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	s.stereoPos = p
}

func (s *Stream) AddProcessor(p Processor) {
	defer s.mu.lock()()
	s.processors = append(s.processors, p)
}

func (s *Stream) RemoveProcessor(p Processor) {
	defer s.mu.lock()()
	for i, existing := range s.processors {
		if existing == p {
			s.processors = append(s.processors[:i], s.processors[i+1:]...)
			return
		}
	}
}

func (s *Stream) ClearProcessors() {
	defer s.mu.lock()()
	s.processors = nil
}

func (s *Stream) SetFinishCallback(cb FinishCallback) { defer s.mu.lock()(); s.onFinish = cb }
func (s *Stream) SetLoopCallback(cb LoopCallback)     { defer s.mu.lock()(); s.onLoop = cb }

func (s *Stream) IsPlaying() bool { defer s.mu.lock()(); return s.playing }
func (s *Stream) IsPaused() bool  { defer s.mu.lock()(); return s.paused }
func (s *Stream) IsMuted() bool   { defer s.mu.lock()(); return s.muted }

// processFade advances the fade envelope. Uses a cubic curve for
// perceptually smooth level changes: volume = (t/D)^3 fading in,
// (1 - t/D)^3 fading out. Fade-out completion clears fadingOut (spec.md §9
// notes the original source mis-clears fadingIn instead; this
// implementation does not reproduce that).
func (s *Stream) processFade(now time.Time) {
	switch {
	case s.fadingIn:
		elapsed := now.Sub(s.fadeInStart)
		if s.fadeInDuration <= 0 || elapsed >= s.fadeInDuration {
			s.internalVolume = 1
			s.fadingIn = false
			if s.state == stateFadingIn {
				s.state = statePlaying
			}
			return
		}
		t := float32(elapsed) / float32(s.fadeInDuration)
		s.internalVolume = t * t * t

	case s.fadingOut:
		elapsed := now.Sub(s.fadeOutStart)
		if s.fadeOutDuration <= 0 || elapsed >= s.fadeOutDuration {
			s.internalVolume = 0
			s.fadingOut = false
			if s.stopAfterFade {
				s.stopAfterFade = false
				s.finishStopLocked()
			} else {
				s.paused = true
				s.state = statePaused
			}
			return
		}
		t := float32(elapsed) / float32(s.fadeOutDuration)
		r := 1 - t
		s.internalVolume = r * r * r
	}
}

// pull runs the playback loop (spec.md §4.3 "Playback loop") for one
// callback slice: request wantedSamples, looping/finishing as the decoder
// hits end-of-source, then run processors. Returns the number of samples
// produced into strmBuf (<= wantedSamples only at genuine finish), plus
// whether this call looped or finished.
func (s *Stream) pull(strmBuf []float32, wantedSamples int) (n int, looped, finished bool) {
	for n < wantedSamples {
		var got int
		var err error
		if s.resampler != nil {
			got, err = s.resampler.Resample(strmBuf[n:wantedSamples])
		} else {
			var callAgain bool
			got, callAgain, err = s.decoder.Decode(strmBuf[n:wantedSamples])
			for callAgain && n+got < wantedSamples {
				more, ca2, err2 := s.decoder.Decode(strmBuf[n+got : wantedSamples])
				got += more
				callAgain = ca2
				if err2 != nil {
					err = err2
					break
				}
			}
		}
		if err != nil {
			// Mid-stream decoder errors are treated as end-of-stream.
			got = 0
		}
		n += got

		for _, p := range s.processors {
			if cap(s.procBuf) < n {
				s.procBuf = make([]float32, n)
			}
			p.Process(s.procBuf[:n], strmBuf[:n], n)
			copy(strmBuf[:n], s.procBuf[:n])
		}

		if n < wantedSamples {
			_ = s.decoder.Rewind()
			if s.wantedIters == 0 {
				looped = true
				if s.onLoop != nil {
					s.onLoop(s)
				}
				continue
			}
			s.currentIter++
			if s.currentIter >= s.wantedIters {
				s.playing = false
				finished = true
				break
			}
			looped = true
			if s.onLoop != nil {
				s.onLoop(s)
			}
		}
	}
	for _, p := range s.processors {
		if cap(s.procBuf) < n {
			s.procBuf = make([]float32, n)
		}
		p.Process(s.procBuf[:n], strmBuf[:n], n)
		copy(strmBuf[:n], s.procBuf[:n])
	}
	if finished && s.onFinish != nil {
		s.onFinish(s)
	}
	return n, looped, finished
}

// mixOneSlice is the per-callback entry point the Mixer drives: pull one
// slice of samples through this Stream and add it into mix, all while
// holding the Stream's own audioLock so a concurrent control call (Stop,
// SetVolume, Pause, ...) is never observed mid-mix.
func (s *Stream) mixOneSlice(mix, strmBuf []float32, wantedSamples, channels int) {
	defer s.mu.lock()()
	if !s.playing || s.paused {
		return
	}
	for i := range strmBuf {
		strmBuf[i] = 0
	}
	n, _, _ := s.pull(strmBuf, wantedSamples)
	s.mixInto(mix, strmBuf, n, channels)
}

// mixInto applies fade/volume/pan gains and adds strmBuf into mix,
// following spec.md §4.3's gain rules.
func (s *Stream) mixInto(mix, strmBuf []float32, n int, channels int) {
	s.processFade(s.nowFunc())

	gainL := s.volume * s.internalVolume
	gainR := gainL

	if s.stereoPos < 0 {
		gainR *= 1 + s.stereoPos
	} else if s.stereoPos > 0 {
		gainL *= 1 - s.stereoPos
	}

	if s.muted || (gainL <= 0 && gainR <= 0) {
		return
	}

	if gainL == 1 && gainR == 1 {
		for i := 0; i < n; i++ {
			mix[i] += strmBuf[i]
		}
		return
	}

	if channels == 2 {
		for i := 0; i+1 < n; i += 2 {
			mix[i] += strmBuf[i] * gainL
			mix[i+1] += strmBuf[i+1] * gainR
		}
	} else {
		for i := 0; i < n; i++ {
			mix[i] += strmBuf[i] * gainL
		}
	}
}
