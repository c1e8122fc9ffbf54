package game

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/live"
	"github.com/quizcast/quizcast/pkg/trivia"
)

var testQuestions = []trivia.Question{
	{
		Question:      "What color is the sky on a clear day?",
		Options:       []string{"Green", "Blue", "Red", "Yellow"},
		CorrectAnswer: "Blue",
		Explanation:   "Rayleigh scattering favors blue wavelengths.",
	},
	{
		Question:      "How many legs does a spider have?",
		Options:       []string{"Six", "Eight", "Ten", "Four"},
		CorrectAnswer: "Eight",
		Explanation:   "Spiders are arachnids, not insects.",
	},
}

// newHostEndpoint runs a fake live voice endpoint: it acknowledges
// setup, runs script, then drains client frames until the connection
// drops.
func newHostEndpoint(t *testing.T, script func(conn *websocket.Conn)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Setup message first.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"setupComplete":{}}`))

		if script != nil {
			script(conn)
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func mockGameConfig(endpoint string) Config {
	return Config{
		APIKey:          "test-key",
		Questions:       testQuestions,
		CaptureBackend:  audioio.BackendMock,
		PlaybackBackend: audioio.BackendMock,
		LiveEndpoint:    endpoint,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestOrchestratorLiveFlow(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString(make([]byte, 4800)) // 100ms at 24kHz
	endpoint := newHostEndpoint(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"`+audio+`"}}]}}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"serverContent":{"interrupted":true}}`))
	})

	o, err := NewOrchestrator(mockGameConfig(endpoint), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Teardown()

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, "active status", func() bool { return o.Status() == live.StateActive })

	// The fragment reaches the scheduler, and the interruption
	// flushes the sink.
	waitFor(t, "scheduled fragment", func() bool { return o.SchedulerStats().Scheduled >= 1 })
	sink := o.sink.(*audioio.MockSink)
	waitFor(t, "playback flush", func() bool { return sink.ClearCount() >= 1 })

	// Capture is feeding frames to the transport.
	waitFor(t, "captured chunks", func() bool { return o.CaptureStats().ChunksCaptured >= 1 })

	o.Teardown()
	if got := o.Status(); got != live.StateClosed {
		t.Errorf("status after teardown = %v, want closed", got)
	}

	// Teardown is idempotent.
	o.Teardown()
}

func TestOrchestratorMuteGate(t *testing.T) {
	endpoint := newHostEndpoint(t, nil)

	o, err := NewOrchestrator(mockGameConfig(endpoint), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Teardown()

	// Safe before Start.
	o.SetMuted(true)
	if o.Muted() {
		t.Error("Muted() must be false before Start")
	}

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	o.SetMuted(true)
	if !o.Muted() {
		t.Error("mute did not take")
	}
	o.SetMuted(false)
	if o.Muted() {
		t.Error("unmute did not take")
	}
}

func TestOrchestratorSinkFailureReleasesCapture(t *testing.T) {
	cfg := mockGameConfig("ws://unused")
	cfg.PlaybackBackend = audioio.Backend("bogus")

	o, err := NewOrchestrator(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded with a bogus playback backend")
	}
	if got := o.Status(); got != live.StateError {
		t.Errorf("status = %v, want error", got)
	}

	// The already-acquired capture device was released.
	src := o.source.(*audioio.MockSource)
	if err := src.Start(context.Background()); err != io.ErrClosedPipe {
		t.Errorf("source Start after failed setup = %v, want ErrClosedPipe", err)
	}
}

func TestOrchestratorConnectFailureReleasesDevices(t *testing.T) {
	cfg := mockGameConfig("ws://127.0.0.1:1")

	o, err := NewOrchestrator(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded against a dead endpoint")
	}
	if got := o.Status(); got != live.StateError {
		t.Errorf("status = %v, want error", got)
	}

	src := o.source.(*audioio.MockSource)
	if err := src.Start(context.Background()); err != io.ErrClosedPipe {
		t.Errorf("source not released: %v", err)
	}
	sink := o.sink.(*audioio.MockSink)
	if err := sink.Start(context.Background()); err != io.ErrClosedPipe {
		t.Errorf("sink not released: %v", err)
	}
}

func TestOrchestratorTeardownBeforeStart(t *testing.T) {
	o, err := NewOrchestrator(mockGameConfig("ws://unused"), nil)
	if err != nil {
		t.Fatal(err)
	}

	o.Teardown()
	o.Teardown()
	if got := o.Status(); got != live.StateClosed {
		t.Errorf("status = %v, want closed", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error without an API key")
	}

	cfg.APIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error without questions")
	}

	cfg.Questions = testQuestions
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
