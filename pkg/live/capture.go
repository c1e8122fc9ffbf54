package live

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/pcm"
)

// FrameSender receives encoded microphone frames. *Session implements
// it; tests substitute a recorder.
type FrameSender interface {
	SendAudio(pcm16 []byte) error
}

// Capture turns a live microphone stream into a steady sequence of
// encoded frames handed to the transport, in capture order, with no
// chunk skipped or duplicated. A mute gate is applied at the moment a
// chunk completes: muted chunks are dropped silently before they reach
// the transport, while the capture device keeps running so unmuting
// resumes forwarding without a session restart.
type Capture struct {
	source audioio.Source
	sender FrameSender
	logger *slog.Logger

	muted atomic.Bool

	// Stats
	chunksCaptured  atomic.Int64
	framesForwarded atomic.Int64
	framesMuted     atomic.Int64
}

// CaptureStats tracks capture pipeline counters.
type CaptureStats struct {
	ChunksCaptured  int64 `json:"chunks_captured"`
	FramesForwarded int64 `json:"frames_forwarded"`
	FramesMuted     int64 `json:"frames_muted"`
}

// NewCapture wires a source to a frame sender.
func NewCapture(source audioio.Source, sender FrameSender, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{
		source: source,
		sender: sender,
		logger: logger,
	}
}

// SetMuted toggles the mute gate. Capture keeps running either way.
func (c *Capture) SetMuted(muted bool) {
	c.muted.Store(muted)
}

// Muted reports the mute gate state.
func (c *Capture) Muted() bool {
	return c.muted.Load()
}

// Run consumes the source stream until it closes or the context is
// cancelled. The source must already be started; Run never starts or
// stops the device itself, so teardown stays with the owner.
func (c *Capture) Run(ctx context.Context) error {
	stream := c.source.Stream()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case chunk, ok := <-stream:
			if !ok {
				return nil
			}
			c.chunksCaptured.Add(1)

			if c.muted.Load() {
				c.framesMuted.Add(1)
				continue
			}

			frame := pcm.Encode(chunk.Samples)
			if err := c.sender.SendAudio(frame); err != nil {
				// Session ended; frame loss is tolerable for a live
				// stream and capture must never block.
				c.logger.Debug("capture frame not sent", "error", err)
				continue
			}
			c.framesForwarded.Add(1)
		}
	}
}

// Stats returns capture pipeline counters.
func (c *Capture) Stats() CaptureStats {
	return CaptureStats{
		ChunksCaptured:  c.chunksCaptured.Load(),
		FramesForwarded: c.framesForwarded.Load(),
		FramesMuted:     c.framesMuted.Load(),
	}
}
