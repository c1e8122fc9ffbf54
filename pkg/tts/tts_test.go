package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, opts ...Option) *ElevenLabs {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithAPIKey("test-key"),
		WithVoice("test-voice"),
		WithBaseURL(srv.URL),
		WithRetry(2, time.Millisecond),
	}
	p, err := NewElevenLabs(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestElevenLabsSynthesize(t *testing.T) {
	pcm := make([]byte, 48000) // 1s at 24kHz

	var gotKey, gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		w.Write(pcm)
	})
	defer p.Close()

	result, err := p.Synthesize(context.Background(), "Welcome to the quiz!")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("api key header = %q, want test-key", gotKey)
	}
	if gotPath != "/text-to-speech/test-voice" {
		t.Errorf("path = %q", gotPath)
	}
	if len(result.Audio) != len(pcm) {
		t.Errorf("audio length = %d, want %d", len(result.Audio), len(pcm))
	}
	if result.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", result.Duration)
	}
}

func TestElevenLabsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(make([]byte, 480))
	})
	defer p.Close()

	if _, err := p.Synthesize(context.Background(), "retry me"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestElevenLabsAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"message":"invalid api key"}}`))
	})
	defer p.Close()

	_, err := p.Synthesize(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.IsRetryable() {
		t.Error("401 must not be retryable")
	}
}

func TestElevenLabsHealth(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("health path = %q, want /user", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	defer p.Close()

	if err := p.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestNewElevenLabsValidation(t *testing.T) {
	if _, err := NewElevenLabs(WithVoice("v")); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("missing key: err = %v, want ErrNoAPIKey", err)
	}
	if _, err := NewElevenLabs(WithAPIKey("k")); !errors.Is(err, ErrNoVoiceID) {
		t.Errorf("missing voice: err = %v, want ErrNoVoiceID", err)
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMock()

	result, err := m.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Audio) == 0 || len(result.Audio)%2 != 0 {
		t.Errorf("audio length = %d, want even and non-zero", len(result.Audio))
	}
	if got := m.Texts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("texts = %v", got)
	}

	m.Err = errors.New("down")
	if _, err := m.Synthesize(context.Background(), "x"); err == nil {
		t.Error("expected error when Err is set")
	}
}
