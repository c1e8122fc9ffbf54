//go:build cgo

package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; it is created on first use and
// never torn down.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func otoContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// OtoSink plays audio through the system speaker using oto.
// Chunks are converted to 16-bit PCM and streamed through a pipe into
// a persistent player, so consecutive writes play back-to-back.
type OtoSink struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	running    bool
	closed     bool

	// Stats
	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
}

// newOtoSink creates an oto-backed playback sink.
func newOtoSink(cfg Config, logger *slog.Logger) (*OtoSink, error) {
	if _, err := otoContext(cfg.SampleRate, cfg.Channels); err != nil {
		return nil, fmt.Errorf("oto init: %w", err)
	}

	return &OtoSink{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start creates the streaming player.
func (o *OtoSink) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return io.ErrClosedPipe
	}
	if o.running {
		return nil
	}

	o.newPlayerLocked()
	o.running = true

	o.logger.Info("oto playback started", "sample_rate", o.cfg.SampleRate)
	return nil
}

// newPlayerLocked wires a fresh pipe into a new playing player.
// Caller must hold o.mu.
func (o *OtoSink) newPlayerLocked() {
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
}

// Write streams a chunk to the speaker. Blocks until the player has
// consumed the bytes.
func (o *OtoSink) Write(ctx context.Context, chunk Chunk) error {
	o.mu.Lock()
	if o.closed || !o.running {
		o.mu.Unlock()
		return io.ErrClosedPipe
	}
	w := o.pipeWriter
	o.mu.Unlock()

	if _, err := w.Write(chunk.PCM16()); err != nil {
		return fmt.Errorf("oto write: %w", err)
	}

	o.chunksWritten.Add(1)
	o.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush waits until the player has drained its internal buffer.
func (o *OtoSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		o.mu.Lock()
		p := o.player
		o.mu.Unlock()

		if p == nil || p.BufferedSize() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Clear discards buffered audio by abandoning the current pipe and
// player and starting a fresh one.
func (o *OtoSink) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return nil
	}

	o.teardownPlayerLocked()
	o.newPlayerLocked()

	o.logger.Debug("oto playback cleared")
	return nil
}

// teardownPlayerLocked closes the pipe and player.
// Caller must hold o.mu.
func (o *OtoSink) teardownPlayerLocked() {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
	}
	if o.player != nil {
		o.player.Close()
	}
	o.player = nil
	o.pipeReader = nil
	o.pipeWriter = nil
}

// Stop halts playback. Safe to call multiple times.
func (o *OtoSink) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return nil
	}
	o.running = false
	o.teardownPlayerLocked()

	o.logger.Info("oto playback stopped")
	return nil
}

// Config returns the audio configuration.
func (o *OtoSink) Config() Config {
	return o.cfg
}

// Name returns "oto".
func (o *OtoSink) Name() string {
	return "oto"
}

// Close releases resources. The oto context itself is process-wide
// and stays alive.
func (o *OtoSink) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	return o.Stop()
}

// Stats returns sink statistics.
func (o *OtoSink) Stats() SinkStats {
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()

	return SinkStats{
		ChunksWritten:  o.chunksWritten.Load(),
		SamplesWritten: o.samplesWritten.Load(),
		Running:        running,
		Backend:        "oto",
	}
}

// Ensure OtoSink implements SinkWithStats.
var _ SinkWithStats = (*OtoSink)(nil)
