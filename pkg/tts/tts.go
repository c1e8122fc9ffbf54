// Package tts synthesizes host speech for the non-live quiz mode.
// Providers return raw PCM16 at the playback rate so the audio feeds
// the playback sink without transcoding.
package tts

import (
	"context"
	"time"
)

// OutputSampleRate is the PCM rate providers must produce.
const OutputSampleRate = 24000

// Provider converts text to speech.
type Provider interface {
	// Synthesize converts text to a complete PCM16 audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is one complete synthesis result.
type AudioResult struct {
	// Audio is raw PCM16 little-endian at OutputSampleRate.
	Audio []byte

	// Duration is the playback duration derived from the sample count.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to last byte in milliseconds.
	LatencyMs int64
}

// pcmDuration derives playback time from a PCM16 byte count.
func pcmDuration(audioBytes int) time.Duration {
	samples := audioBytes / 2
	return time.Duration(samples) * time.Second / OutputSampleRate
}
