// SPDX-License-Identifier: EPL-2.0

// Command audiolibctl plays a single audio file through the audio engine,
// auto-detecting its format and driving a real output device.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"

	"github.com/glebm/SDL-audiolib/audio"
	"github.com/glebm/SDL-audiolib/formats/aiff"
	"github.com/glebm/SDL-audiolib/formats/flac"
	"github.com/glebm/SDL-audiolib/formats/mp3"
	"github.com/glebm/SDL-audiolib/formats/vorbis"
	"github.com/glebm/SDL-audiolib/formats/wav"
	"github.com/glebm/SDL-audiolib/internal/device"
)

// detectOrder tries lossless/structured formats before lossy ones, matching
// audio.Registry's documented priority (see audio/audio.go's Detect).
var detectOrder = []string{"wav", "aiff", "flac", "mp3", "ogg vorbis"}

var version = "dev"

var CLI struct {
	Input      string  `arg:"" name:"input" help:"Audio file to play (wav, aiff, flac, mp3, ogg vorbis)."`
	SampleRate int     `help:"Output device sample rate in Hz." default:"44100"`
	Channels   int     `help:"Output device channel count (1 or 2)." default:"2"`
	Buffer     int     `help:"Output buffer size in frames." default:"4096"`
	Volume     float64 `help:"Initial playback volume (0.0-2.0)." default:"1.0"`
	Loop       int     `help:"Number of times to play the file; 0 means loop forever." default:"1"`
	FadeIn     time.Duration `help:"Fade-in duration at playback start." default:"0s"`
	Verbose    bool    `help:"Enable debug logging." short:"v"`
	Version    bool    `help:"Show version information."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("audiolibctl"),
		kong.Description("Play an audio file through github.com/glebm/SDL-audiolib."),
		kong.UsageOnError(),
	)

	if CLI.Version {
		fmt.Println("audiolibctl", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("playback failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if CLI.Channels != 1 && CLI.Channels != 2 {
		return fmt.Errorf("invalid --channels value %d (must be 1 or 2)", CLI.Channels)
	}

	file, err := os.Open(CLI.Input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	registry := audio.NewRegistry()
	registry.Register("wav", wav.Decoder{})
	registry.Register("aiff", aiff.Decoder{})
	registry.Register("flac", flac.Decoder{})
	registry.Register("mp3", mp3.Decoder{})
	registry.Register("ogg vorbis", vorbis.Decoder{})

	byteSrc := audio.NewByteSource(file)

	probe, format, err := audio.Detect(byteSrc, detectOrder, registry)
	if err != nil {
		return fmt.Errorf("detecting format: %w", err)
	}
	_ = probe.Close()
	if _, err := byteSrc.Seek(0); err != nil {
		return fmt.Errorf("rewinding input after detection: %w", err)
	}
	logger.Info("detected format", "format", format)

	codec, _ := registry.Get(format)
	decoder := audio.NewDecoderAdapter(codec, CLI.Channels)
	if err := decoder.Open(byteSrc); err != nil {
		return fmt.Errorf("opening decoder: %w", err)
	}
	defer decoder.Close()

	resampler := audio.NewResampler(audio.NewCubicKernel())
	resampler.SetDecoder(decoder)
	if err := resampler.SetSpec(CLI.SampleRate, CLI.Channels, CLI.Buffer); err != nil {
		return fmt.Errorf("configuring resampler: %w", err)
	}

	stream := audio.NewStream(decoder, resampler, byteSrc, true)
	if err := stream.Open(); err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	stream.SetVolume(float32(CLI.Volume))

	dev, err := device.Open(device.Spec{
		SampleRate: CLI.SampleRate,
		Channels:   CLI.Channels,
		Format:     audio.FormatS16LE,
		BufferSize: CLI.Buffer,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer dev.Close()

	mixer := audio.NewMixer()
	if err := mixer.Init(dev); err != nil {
		return fmt.Errorf("initializing mixer: %w", err)
	}
	defer mixer.Quit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream.SetFinishCallback(func(s *audio.Stream) {
		logger.Info("playback finished")
		cancel()
	})

	if err := stream.Play(mixer, CLI.Loop, CLI.FadeIn); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	logger.Info("playing", "input", CLI.Input, "sample_rate", CLI.SampleRate, "channels", CLI.Channels)

	err = dev.Run(runCtx, mixer)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
