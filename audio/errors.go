// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNoCodec is returned by Detect when no registered codec accepts the source.
	ErrNoCodec = errors.New("no codec recognized the source")

	// ErrNotOpen is returned by Decoder operations that require Open to have
	// succeeded first.
	ErrNotOpen = errors.New("decoder is not open")

	// ErrStreamDetached is returned by Stream operations that require Open
	// to have succeeded first.
	ErrStreamDetached = errors.New("stream has not been opened")

	// ErrMixerNotInitialized is returned by Stream.Play when no Mixer has
	// been initialized for the process.
	ErrMixerNotInitialized = errors.New("mixer is not initialized")

	// ErrMixerAlreadyInitialized is returned by Init when the process-wide
	// Mixer has already been set up.
	ErrMixerAlreadyInitialized = errors.New("mixer is already initialized")

	// ErrUnsupportedFormat is returned by Init when no sample converter is
	// registered for the requested device format.
	ErrUnsupportedFormat = errors.New("unsupported sample format")
)
