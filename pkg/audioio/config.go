// Package audioio provides cross-platform audio capture and playback.
//
// This package supports multiple backends:
//   - PortAudio - microphone capture (requires cgo and PortAudio)
//   - Oto - speaker playback (pure Go)
//   - Mock - CI/testing without hardware
//
// The backend is selected automatically based on the requested
// direction, or can be explicitly specified via configuration.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendPortAudio uses PortAudio for microphone capture.
	BackendPortAudio Backend = "portaudio"
	// BackendOto uses the oto library for speaker playback.
	BackendOto Backend = "oto"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto" (selects best available for the direction)
	Backend Backend `json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	// The live host expects 16000 for capture and 24000 for playback.
	SampleRate int `json:"sample_rate"`

	// Channels is the number of audio channels. Always 1 for the quiz
	// pipeline; kept configurable for the mock tone generator.
	Channels int `json:"channels"`

	// ChunkSize is the number of samples per captured chunk.
	// Default: 4096 (256ms at 16kHz)
	ChunkSize int `json:"chunk_size"`

	// Device is the platform-specific device identifier.
	// Empty selects the system default.
	Device string `json:"device"`
}

// Capture and playback rates required by the live voice endpoint.
const (
	CaptureRate  = 16000
	PlaybackRate = 24000

	// DefaultChunkSize is the capture window size in samples.
	DefaultChunkSize = 4096
)

// DefaultCaptureConfig returns the capture-side defaults.
func DefaultCaptureConfig() Config {
	return Config{
		Backend:    BackendAuto,
		SampleRate: CaptureRate,
		Channels:   1,
		ChunkSize:  DefaultChunkSize,
	}
}

// DefaultPlaybackConfig returns the playback-side defaults.
func DefaultPlaybackConfig() Config {
	return Config{
		Backend:    BackendAuto,
		SampleRate: PlaybackRate,
		Channels:   1,
		ChunkSize:  DefaultChunkSize,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	return nil
}

// ChunkDuration returns the wall-clock length of one chunk.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(float64(c.ChunkSize) / float64(c.SampleRate) * float64(time.Second))
}
