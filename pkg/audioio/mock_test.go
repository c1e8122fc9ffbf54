package audioio

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestMockSource_StartStop(t *testing.T) {
	cfg := DefaultCaptureConfig()
	cfg.ChunkSize = 160

	src := NewMockSource(cfg, nil)
	defer src.Close()

	ctx := context.Background()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Starting again should be a no-op
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Second Start failed: %v", err)
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Stopping again should be a no-op
	if err := src.Stop(); err != nil {
		t.Fatalf("Second Stop failed: %v", err)
	}
}

func TestMockSource_Stream(t *testing.T) {
	cfg := DefaultCaptureConfig()
	cfg.ChunkSize = 160

	src := NewMockSource(cfg, nil, WithSineWave(440, 0.5))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case chunk, ok := <-src.Stream():
		if !ok {
			t.Fatal("stream closed before first chunk")
		}
		if len(chunk.Samples) != cfg.ChunkSize {
			t.Errorf("expected %d samples, got %d", cfg.ChunkSize, len(chunk.Samples))
		}
		if chunk.SampleRate != cfg.SampleRate {
			t.Errorf("expected sample rate %d, got %d", cfg.SampleRate, chunk.SampleRate)
		}

		// Sine wave should have at least one non-zero sample in range.
		nonZero := false
		for _, s := range chunk.Samples {
			if s != 0 {
				nonZero = true
			}
			if s < -1 || s > 1 {
				t.Fatalf("sample %v outside [-1, 1]", s)
			}
		}
		if !nonZero {
			t.Error("sine mock produced all-zero chunk")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for chunk")
	}
}

func TestMockSource_ClosedCannotRestart(t *testing.T) {
	src := NewMockSource(DefaultCaptureConfig(), nil)
	src.Close()

	if err := src.Start(context.Background()); err != io.ErrClosedPipe {
		t.Errorf("expected ErrClosedPipe after Close, got %v", err)
	}
}

func TestMockSink_WriteAndClear(t *testing.T) {
	sink := NewMockSink(DefaultPlaybackConfig(), nil)
	defer sink.Close()

	ctx := context.Background()

	// Write before Start is rejected.
	if err := sink.Write(ctx, Chunk{Samples: []float32{0}, SampleRate: PlaybackRate}); err == nil {
		t.Error("expected error writing before Start")
	}

	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chunk := Chunk{Samples: make([]float32, 2400), SampleRate: PlaybackRate}
	if err := sink.Write(ctx, chunk); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := len(sink.Written()); got != 1 {
		t.Fatalf("expected 1 written chunk, got %d", got)
	}

	if err := sink.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := len(sink.Written()); got != 0 {
		t.Errorf("expected 0 chunks after Clear, got %d", got)
	}
	if sink.ClearCount() != 1 {
		t.Errorf("expected ClearCount 1, got %d", sink.ClearCount())
	}

	stats := sink.Stats()
	if stats.ChunksWritten != 1 {
		t.Errorf("expected 1 chunk written in stats, got %d", stats.ChunksWritten)
	}
	if stats.SamplesWritten != 2400 {
		t.Errorf("expected 2400 samples written in stats, got %d", stats.SamplesWritten)
	}
}

func TestChunkDuration(t *testing.T) {
	tests := []struct {
		name string
		c    Chunk
		want time.Duration
	}{
		{"one second at 24k", Chunk{Samples: make([]float32, 24000), SampleRate: 24000}, time.Second},
		{"quarter second at 16k", Chunk{Samples: make([]float32, 4000), SampleRate: 16000}, 250 * time.Millisecond},
		{"zero rate", Chunk{Samples: make([]float32, 100)}, 0},
		{"empty", Chunk{SampleRate: 24000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkPCM16RoundTrip(t *testing.T) {
	chunk := Chunk{Samples: []float32{0, 0.25, -0.25, 0.999}, SampleRate: CaptureRate}

	back := ChunkFromPCM16(chunk.PCM16(), CaptureRate)
	if len(back.Samples) != len(chunk.Samples) {
		t.Fatalf("expected %d samples, got %d", len(chunk.Samples), len(back.Samples))
	}
	for i := range chunk.Samples {
		diff := back.Samples[i] - chunk.Samples[i]
		if diff < -1.0/32768 || diff > 1.0/32768 {
			t.Errorf("sample %d: %v != %v", i, back.Samples[i], chunk.Samples[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"zero channels", func(c *Config) { c.Channels = 0 }, true},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCaptureConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkDurationFromConfig(t *testing.T) {
	cfg := DefaultCaptureConfig()
	if got := cfg.ChunkDuration(); got != 256*time.Millisecond {
		t.Errorf("4096 samples at 16kHz should be 256ms, got %v", got)
	}
}
