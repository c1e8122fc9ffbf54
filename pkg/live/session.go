package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quizcast/quizcast/pkg/pcm"
)

// Common errors returned by sessions.
var (
	ErrMissingAPIKey = errors.New("live: missing API key")
	ErrNotConnected  = errors.New("live: session not connected")
	ErrAlreadyOpen   = errors.New("live: session already opened")
)

// Session manages one bidirectional streaming connection to the live
// voice endpoint. A Session is single-shot: it moves from connecting
// to active to closed or error and is never reused; construct a new
// Session to retry after a fault.
type Session struct {
	cfg    Config
	logger *slog.Logger
	id     string

	// WebSocket connection
	conn    *websocket.Conn
	writeMu sync.Mutex

	// State machine; pending holds frames queued while connecting.
	mu      sync.Mutex
	state   State
	opened  bool
	pending [][]byte

	// Callbacks, set before Open.
	onFragment    func(Fragment)
	onInterrupted func()
	onStateChange func(State)

	// Stats
	framesSent        atomic.Int64
	framesQueued      atomic.Int64
	framesDropped     atomic.Int64
	fragmentsReceived atomic.Int64
}

// SessionStats tracks session throughput counters.
type SessionStats struct {
	FramesSent        int64 `json:"frames_sent"`
	FramesQueued      int64 `json:"frames_queued"`
	FramesDropped     int64 `json:"frames_dropped"`
	FragmentsReceived int64 `json:"fragments_received"`
}

// NewSession creates a session in the connecting state.
func NewSession(cfg Config, logger *slog.Logger) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		cfg:    cfg,
		logger: logger,
		id:     uuid.NewString(),
		state:  StateConnecting,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnFragment sets the callback for inbound audio fragments.
// Must be set before Open.
func (s *Session) OnFragment(fn func(Fragment)) {
	s.onFragment = fn
}

// OnInterrupted sets the callback for interruption events. It fires
// before any fragment delivered by the same server message, so stale
// in-flight playback can be discarded first.
func (s *Session) OnInterrupted(fn func()) {
	s.onInterrupted = fn
}

// OnStateChange sets the callback for state transitions.
func (s *Session) OnStateChange(fn func(State)) {
	s.onStateChange = fn
}

// Open dials the endpoint and sends the setup message carrying the
// model, voice config and system instruction. The session stays in
// connecting until the server acknowledges setup, at which point it
// becomes active and any frames queued in the meantime are drained in
// capture order. Single attempt; there is no automatic reconnect.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	if s.state.Terminal() {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.opened = true
	s.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	url := s.cfg.Endpoint + "?key=" + s.cfg.APIKey

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		s.apply(Event{Kind: EventFaulted, Err: err})
		return fmt.Errorf("live: connect: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	if err := s.sendSetup(); err != nil {
		s.apply(Event{Kind: EventFaulted, Err: err})
		return fmt.Errorf("live: configure session: %w", err)
	}

	go s.readLoop()

	s.logger.Info("live session connecting", "session_id", s.id, "model", s.cfg.Model)
	return nil
}

// sendSetup sends the initial configuration message.
func (s *Session) sendSetup() error {
	setup := setupMessage{
		Setup: setupPayload{
			Model: s.cfg.Model,
			GenerationConfig: &generationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &speechConfig{
					VoiceConfig: voiceConfig{
						PrebuiltVoiceConfig: prebuiltVoiceConfig{
							VoiceName: s.cfg.Voice,
						},
					},
				},
			},
		},
	}

	if s.cfg.Instructions != "" {
		setup.Setup.SystemInstruction = &contentPayload{
			Parts: []contentPart{{Text: s.cfg.Instructions}},
		}
	}

	return s.sendJSON(setup)
}

// SendAudio submits one encoded microphone frame. While the session is
// still connecting the frame is queued (bounded, oldest dropped
// first); while active it is sent fire-and-forget, with failures
// logged and dropped since a live voice stream tolerates occasional
// frame loss better than stalling. Returns ErrNotConnected once the
// session has ended.
func (s *Session) SendAudio(pcm16 []byte) error {
	s.mu.Lock()
	switch s.state {
	case StateConnecting:
		if len(s.pending) >= s.cfg.PendingLimit {
			s.pending = s.pending[1:]
			s.framesDropped.Add(1)
		}
		frame := make([]byte, len(pcm16))
		copy(frame, pcm16)
		s.pending = append(s.pending, frame)
		s.framesQueued.Add(1)
		s.mu.Unlock()
		return nil

	case StateActive:
		s.mu.Unlock()
		s.writeFrame(pcm16)
		return nil

	default:
		s.mu.Unlock()
		return ErrNotConnected
	}
}

// writeFrame sends one realtime input message. Failures are logged,
// not surfaced.
func (s *Session) writeFrame(pcm16 []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.writeFrameLocked(pcm16)
}

// writeFrameLocked requires writeMu to be held.
func (s *Session) writeFrameLocked(pcm16 []byte) {
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []inlineData{{
				MimeType: captureMimeType,
				Data:     pcm.MarshalBase64(pcm16),
			}},
		},
	}

	if err := s.sendJSONLocked(msg); err != nil {
		s.framesDropped.Add(1)
		s.logger.Debug("dropped audio frame", "session_id", s.id, "error", err)
		return
	}
	s.framesSent.Add(1)
}

// Close ends the session. Idempotent and safe to call from any state,
// including before Open.
func (s *Session) Close() error {
	s.apply(Event{Kind: EventClosed})
	return nil
}

// Stats returns session throughput counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		FramesSent:        s.framesSent.Load(),
		FramesQueued:      s.framesQueued.Load(),
		FramesDropped:     s.framesDropped.Load(),
		FragmentsReceived: s.fragmentsReceived.Load(),
	}
}

// readLoop processes inbound messages until the connection ends.
func (s *Session) readLoop() {
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if !s.State().Terminal() {
				s.apply(Event{Kind: EventFaulted, Err: err})
			}
			return
		}

		s.handleMessage(message)

		if s.State().Terminal() {
			return
		}
	}
}

// handleMessage parses one server message and feeds the state machine.
func (s *Session) handleMessage(raw []byte) {
	msg, err := parseServerMessage(raw)
	if err != nil {
		s.logger.Debug("unparseable server message", "session_id", s.id, "error", err)
		return
	}

	if msg.SetupComplete != nil {
		s.apply(Event{Kind: EventOpened})
		return
	}

	if msg.ServerContent != nil {
		frag := decodeFragment(msg.ServerContent, s.logger)
		s.fragmentsReceived.Add(1)
		s.apply(Event{Kind: EventFragment, Fragment: &frag})
	}
}

// decodeFragment extracts audio and turn metadata from server content.
// A fragment whose audio fails to decode is skipped, not fatal.
func decodeFragment(sc *serverContent, logger *slog.Logger) Fragment {
	frag := Fragment{
		Interrupted:  sc.Interrupted,
		TurnComplete: sc.TurnComplete,
	}

	if sc.ModelTurn == nil {
		return frag
	}

	for _, part := range sc.ModelTurn.Parts {
		if part.InlineData == nil {
			continue
		}
		if !strings.HasPrefix(part.InlineData.MimeType, "audio/pcm") {
			continue
		}

		audio, err := pcm.UnmarshalBase64(part.InlineData.Data)
		if err != nil {
			logger.Warn("skipping undecodable audio fragment", "error", err)
			continue
		}
		frag.Audio = append(frag.Audio, audio...)
	}

	return frag
}

// apply runs one event through the state machine and executes the
// resulting effects in order.
//
// Activation drains the pending queue. The write lock is taken before
// the state flips and held until the drain finishes, so a frame that
// arrives right after activation waits behind every queued frame and
// capture order is preserved on the wire.
func (s *Session) apply(ev Event) {
	holdWrite := ev.Kind == EventOpened
	if holdWrite {
		s.writeMu.Lock()
	}

	s.mu.Lock()
	prev := s.state
	next, effects := Transition(s.state, ev)
	s.state = next

	var drained [][]byte
	for _, ef := range effects {
		if ef.Kind == EffectDrainPending {
			drained = s.pending
			s.pending = nil
		}
	}
	s.mu.Unlock()

	if holdWrite {
		for _, frame := range drained {
			s.writeFrameLocked(frame)
		}
		s.writeMu.Unlock()
		if len(drained) > 0 {
			s.logger.Debug("drained queued frames", "session_id", s.id, "count", len(drained))
		}
	}

	if ev.Kind == EventFaulted && prev != next {
		s.logger.Error("live session fault", "session_id", s.id, "error", ev.Err)
	}

	if next != prev && s.onStateChange != nil {
		s.onStateChange(next)
	}

	for _, ef := range effects {
		switch ef.Kind {
		case EffectFlushPlayback:
			if s.onInterrupted != nil {
				s.onInterrupted()
			}

		case EffectSchedule:
			if s.onFragment != nil {
				s.onFragment(*ef.Fragment)
			}

		case EffectTeardown:
			s.closeConn()
		}
	}
}

// sendJSON writes one JSON message. gorilla/websocket allows a single
// concurrent writer, so all writes funnel through writeMu.
func (s *Session) sendJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.sendJSONLocked(v)
}

// sendJSONLocked requires writeMu to be held.
func (s *Session) sendJSONLocked(v any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(v)
}

// closeConn releases the WebSocket. Safe on a never-dialed session.
func (s *Session) closeConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// parseServerMessage is split out for tests.
func parseServerMessage(raw []byte) (serverMessage, error) {
	var msg serverMessage
	err := json.Unmarshal(raw, &msg)
	return msg, err
}
