// SPDX-License-Identifier: EPL-2.0

// Package device provides a concrete audio.Device backed by
// github.com/hajimehoshi/oto, driving the Mixer's realtime callback on a
// ticker sized to the device's buffer and pushing the converted bytes to
// the sound card.
//
// This is the "audio device I/O" external collaborator the core audio
// package deliberately never implements: audio.Mixer only needs SampleRate,
// Channels and Format from a Device, and calls Callback to fill a caller
// buffer. Everything that actually talks to hardware lives here, outside
// the realtime-safe core.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/oto"

	"github.com/glebm/SDL-audiolib/audio"
)

// Spec describes the hardware output format to open.
type Spec struct {
	SampleRate int
	Channels   int
	Format     audio.Format

	// BufferSize is the number of frames pulled from the Mixer per write.
	// Smaller values lower latency at the cost of more frequent wakeups.
	BufferSize int
}

// Device drives an oto.Player from a Mixer's Callback.
type Device struct {
	spec   Spec
	ctx    *oto.Context
	player *oto.Player
	log    *slog.Logger
}

// Open creates the oto context and player for spec. The caller must call
// Close when done.
func Open(spec Spec, log *slog.Logger) (*Device, error) {
	if spec.BufferSize <= 0 {
		spec.BufferSize = 4096
	}
	if log == nil {
		log = slog.Default()
	}

	bytesPerFrame := spec.Format.BytesPerSample()
	bufBytes := spec.BufferSize * bytesPerFrame * spec.Channels

	ctx, err := oto.NewContext(spec.SampleRate, spec.Channels, bytesPerFrame, bufBytes)
	if err != nil {
		return nil, fmt.Errorf("opening oto context: %w", err)
	}

	log.Info("device opened",
		"sample_rate", spec.SampleRate,
		"channels", spec.Channels,
		"buffer_frames", spec.BufferSize,
	)

	return &Device{
		spec:   spec,
		ctx:    ctx,
		player: ctx.NewPlayer(),
		log:    log,
	}, nil
}

func (d *Device) SampleRate() int     { return d.spec.SampleRate }
func (d *Device) Channels() int       { return d.spec.Channels }
func (d *Device) Format() audio.Format { return d.spec.Format }

// Run pulls audio from mixer and writes it to the device until ctx is
// cancelled or a write fails. It never returns nil: on cancellation it
// returns ctx.Err(), and on a failed write the wrapped write error,
// matching the teacher's convention of surfacing every failure as an
// error rather than swallowing it.
func (d *Device) Run(ctx context.Context, mixer *audio.Mixer) error {
	bytesPerFrame := d.spec.Format.BytesPerSample() * d.spec.Channels
	buf := make([]byte, d.spec.BufferSize*bytesPerFrame)

	period := time.Second * time.Duration(d.spec.BufferSize) / time.Duration(d.spec.SampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			mixer.Callback(buf)
			if _, err := d.player.Write(buf); err != nil {
				d.log.Error("device write failed", "error", err)
				return fmt.Errorf("writing to device: %w", err)
			}
		}
	}
}

// Close closes the player. The oto context is left open.
func (d *Device) Close() error {
	if d.player != nil {
		if err := d.player.Close(); err != nil {
			return err
		}
	}
	return nil
}
