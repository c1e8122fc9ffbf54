// Package game wires the audio pipeline into a playable quiz: the
// live orchestrator runs a real-time voice conversation with the AI
// host, and the text mode runs the same question set over a prompt
// with optional synthesized speech.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/live"
	"github.com/quizcast/quizcast/pkg/trivia"
)

// Config holds everything a live game needs.
type Config struct {
	// APIKey authenticates the live session. Required.
	APIKey string

	// Voice is the host voice identifier, forwarded verbatim.
	Voice string

	// Persona overrides the default host persona text.
	Persona string

	// Questions is the authoritative question set.
	Questions []trivia.Question

	// CaptureBackend and PlaybackBackend select audio device
	// backends; empty means auto.
	CaptureBackend  audioio.Backend
	PlaybackBackend audioio.Backend

	// LiveEndpoint overrides the live WebSocket URL. Used by tests.
	LiveEndpoint string
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("game: missing API key")
	}
	if len(c.Questions) == 0 {
		return errors.New("game: question set is empty")
	}
	return nil
}

// Orchestrator owns the full live pipeline: capture device, playback
// sink, transport session, capture loop and playback scheduler. It is
// single-shot like the session it wraps; construct a new Orchestrator
// to start another game.
type Orchestrator struct {
	cfg    Config
	logger *slog.Logger
	id     string

	source    audioio.Source
	sink      audioio.Sink
	session   *live.Session
	capture   *live.Capture
	scheduler *live.Scheduler

	cancelRun context.CancelFunc

	statusMu sync.Mutex
	status   live.State
	onStatus func(live.State)

	teardownOnce sync.Once
}

// NewOrchestrator creates an orchestrator in the connecting state.
func NewOrchestrator(cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		cfg:    cfg,
		logger: logger,
		id:     uuid.NewString(),
		status: live.StateConnecting,
	}, nil
}

// ID returns the game identifier.
func (o *Orchestrator) ID() string {
	return o.id
}

// Status returns the current game status. It mirrors the transport
// session once one exists.
func (o *Orchestrator) Status() live.State {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	return o.status
}

// OnStatus sets the status change callback. Must be set before Start.
func (o *Orchestrator) OnStatus(fn func(live.State)) {
	o.onStatus = fn
}

func (o *Orchestrator) setStatus(st live.State) {
	o.statusMu.Lock()
	changed := o.status != st
	o.status = st
	o.statusMu.Unlock()

	if changed && o.onStatus != nil {
		o.onStatus(st)
	}
}

// Start acquires the audio devices and opens the live session. The
// startup sequence is ordered: any step failing releases everything
// acquired before it, so a dead connection never leaves a hot
// microphone behind. On success the capture loop runs until Teardown.
func (o *Orchestrator) Start(ctx context.Context) error {
	captureCfg := audioio.DefaultCaptureConfig()
	if o.cfg.CaptureBackend != "" {
		captureCfg.Backend = o.cfg.CaptureBackend
	}
	source, err := audioio.NewSource(captureCfg, o.logger)
	if err != nil {
		return o.failSetup(fmt.Errorf("game: capture device: %w", err))
	}
	o.source = source

	playbackCfg := audioio.DefaultPlaybackConfig()
	if o.cfg.PlaybackBackend != "" {
		playbackCfg.Backend = o.cfg.PlaybackBackend
	}
	sink, err := audioio.NewSink(playbackCfg, o.logger)
	if err != nil {
		return o.failSetup(fmt.Errorf("game: playback device: %w", err))
	}
	o.sink = sink

	if err := source.Start(ctx); err != nil {
		return o.failSetup(fmt.Errorf("game: start capture: %w", err))
	}
	if err := sink.Start(ctx); err != nil {
		return o.failSetup(fmt.Errorf("game: start playback: %w", err))
	}

	o.scheduler = live.NewScheduler(sink, o.logger)

	liveCfg := live.DefaultConfig()
	liveCfg.APIKey = o.cfg.APIKey
	liveCfg.Instructions = BuildInstructions(o.cfg.Persona, o.cfg.Questions)
	if o.cfg.Voice != "" {
		liveCfg.Voice = o.cfg.Voice
	}
	if o.cfg.LiveEndpoint != "" {
		liveCfg.Endpoint = o.cfg.LiveEndpoint
	}

	session, err := live.NewSession(liveCfg, o.logger)
	if err != nil {
		return o.failSetup(err)
	}
	o.session = session

	session.OnFragment(func(frag live.Fragment) {
		o.scheduler.Enqueue(audioio.ChunkFromPCM16(frag.Audio, audioio.PlaybackRate))
	})
	session.OnInterrupted(func() {
		o.scheduler.Flush()
	})
	session.OnStateChange(o.setStatus)

	o.capture = live.NewCapture(source, session, o.logger)

	if err := session.Open(ctx); err != nil {
		return o.failSetup(err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o.cancelRun = cancel
	go o.capture.Run(runCtx)

	o.logger.Info("game started",
		"game_id", o.id,
		"questions", len(o.cfg.Questions),
		"voice", o.cfg.Voice,
	)
	return nil
}

// failSetup releases whatever Start acquired and reports the error.
func (o *Orchestrator) failSetup(err error) error {
	o.setStatus(live.StateError)
	o.releaseAll()
	return err
}

// SetMuted toggles the microphone gate. The capture device keeps
// running so unmuting is instant.
func (o *Orchestrator) SetMuted(muted bool) {
	if o.capture != nil {
		o.capture.SetMuted(muted)
	}
}

// Muted reports the microphone gate state.
func (o *Orchestrator) Muted() bool {
	return o.capture != nil && o.capture.Muted()
}

// Teardown ends the game and releases every resource. Best effort:
// each cleanup step runs regardless of the others failing. Idempotent
// and safe in any state, including before Start or mid-connection.
func (o *Orchestrator) Teardown() {
	o.teardownOnce.Do(func() {
		if o.Status() == live.StateConnecting || o.Status() == live.StateActive {
			o.setStatus(live.StateClosed)
		}
		o.releaseAll()
		o.logger.Info("game torn down", "game_id", o.id)
	})
}

// releaseAll stops and closes each pipeline component independently.
func (o *Orchestrator) releaseAll() {
	if o.cancelRun != nil {
		o.cancelRun()
	}

	if o.session != nil {
		if err := o.session.Close(); err != nil {
			o.logger.Warn("session close failed", "error", err)
		}
	}

	if o.scheduler != nil {
		o.scheduler.Flush()
	}

	if o.source != nil {
		if err := o.source.Stop(); err != nil {
			o.logger.Warn("capture stop failed", "error", err)
		}
		if err := o.source.Close(); err != nil {
			o.logger.Warn("capture close failed", "error", err)
		}
	}

	if o.sink != nil {
		if err := o.sink.Stop(); err != nil {
			o.logger.Warn("playback stop failed", "error", err)
		}
		if err := o.sink.Close(); err != nil {
			o.logger.Warn("playback close failed", "error", err)
		}
	}
}

// SessionStats returns transport counters, or zeroes before Start.
func (o *Orchestrator) SessionStats() live.SessionStats {
	if o.session == nil {
		return live.SessionStats{}
	}
	return o.session.Stats()
}

// CaptureStats returns capture counters, or zeroes before Start.
func (o *Orchestrator) CaptureStats() live.CaptureStats {
	if o.capture == nil {
		return live.CaptureStats{}
	}
	return o.capture.Stats()
}

// SchedulerStats returns playback counters, or zeroes before Start.
func (o *Orchestrator) SchedulerStats() live.SchedulerStats {
	if o.scheduler == nil {
		return live.SchedulerStats{}
	}
	return o.scheduler.Stats()
}

// Questions returns the authoritative question set.
func (o *Orchestrator) Questions() []trivia.Question {
	return o.cfg.Questions
}
