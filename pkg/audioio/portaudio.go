//go:build cgo

package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// paOnce guards the process-wide PortAudio initialization.
var (
	paOnce    sync.Once
	paInitErr error
)

func initPortAudio() error {
	paOnce.Do(func() {
		paInitErr = portaudio.Initialize()
	})
	return paInitErr
}

// PortAudioSource captures microphone audio via PortAudio.
type PortAudioSource struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	stream     *portaudio.Stream
	running    bool
	closed     bool
	streamCh   chan Chunk
	deviceRate int

	// Stats
	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64
}

// newPortAudioSource creates a PortAudio-backed capture source.
func newPortAudioSource(cfg Config, logger *slog.Logger) (*PortAudioSource, error) {
	if err := initPortAudio(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	return &PortAudioSource{
		cfg:      cfg,
		logger:   logger,
		streamCh: make(chan Chunk, 10),
	}, nil
}

// Start opens the default input device and begins capture.
// If the device cannot be acquired (no device, permission denied),
// no partial capture occurs and the error is returned.
func (s *PortAudioSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	s.deviceRate = s.cfg.SampleRate
	stream, err := portaudio.OpenDefaultStream(
		s.cfg.Channels, 0,
		float64(s.cfg.SampleRate), s.cfg.ChunkSize,
		s.onInput,
	)
	if err != nil {
		// Some devices cannot open at the requested rate. Fall back to
		// the device's native rate and resample in the input callback.
		dev, devErr := portaudio.DefaultInputDevice()
		if devErr != nil || int(dev.DefaultSampleRate) == s.cfg.SampleRate {
			return fmt.Errorf("open capture device: %w", err)
		}
		s.deviceRate = int(dev.DefaultSampleRate)
		frames := s.cfg.ChunkSize * s.deviceRate / s.cfg.SampleRate
		stream, err = portaudio.OpenDefaultStream(
			s.cfg.Channels, 0,
			float64(s.deviceRate), frames,
			s.onInput,
		)
		if err != nil {
			return fmt.Errorf("open capture device: %w", err)
		}
		s.logger.Warn("capture device opened at fallback rate",
			"requested", s.cfg.SampleRate,
			"device", s.deviceRate,
		)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start capture stream: %w", err)
	}

	s.stream = stream
	s.running = true
	s.streamCh = make(chan Chunk, 10)

	s.logger.Info("portaudio capture started",
		"sample_rate", s.cfg.SampleRate,
		"chunk_size", s.cfg.ChunkSize,
	)

	return nil
}

// onInput runs on the PortAudio callback thread. It copies the device
// buffer and hands the chunk off without blocking; a full channel
// drops the chunk and counts an overrun.
func (s *PortAudioSource) onInput(in []float32) {
	samples := make([]float32, len(in))
	copy(samples, in)

	if s.deviceRate != s.cfg.SampleRate {
		samples = Resample(samples, s.deviceRate, s.cfg.SampleRate)
	}

	chunk := Chunk{Samples: samples, SampleRate: s.cfg.SampleRate}

	select {
	case s.streamCh <- chunk:
		s.chunksRead.Add(1)
		s.samplesRead.Add(int64(len(samples)))
	default:
		s.overruns.Add(1)
	}
}

// Stop halts capture. Safe to call multiple times.
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	var err error
	if s.stream != nil {
		err = s.stream.Stop()
	}
	close(s.streamCh)

	s.logger.Info("portaudio capture stopped")
	return err
}

// Stream returns the audio chunk channel.
func (s *PortAudioSource) Stream() <-chan Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamCh
}

// Config returns the audio configuration.
func (s *PortAudioSource) Config() Config {
	return s.cfg
}

// Name returns "portaudio".
func (s *PortAudioSource) Name() string {
	return "portaudio"
}

// Close releases the device.
func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// Stats returns source statistics.
func (s *PortAudioSource) Stats() SourceStats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SourceStats{
		ChunksRead:  s.chunksRead.Load(),
		SamplesRead: s.samplesRead.Load(),
		Overruns:    s.overruns.Load(),
		Running:     running,
		Backend:     "portaudio",
	}
}

// Ensure PortAudioSource implements SourceWithStats.
var _ SourceWithStats = (*PortAudioSource)(nil)
