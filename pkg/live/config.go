package live

import (
	"errors"
	"time"
)

// Gemini Live WebSocket endpoint.
const defaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// DefaultModel is the live conversation model.
const DefaultModel = "models/gemini-2.0-flash-exp"

// DefaultVoice is the host voice when none is configured.
// Available prebuilt voices: Puck, Charon, Kore, Fenrir, Aoede.
const DefaultVoice = "Puck"

// DefaultPendingLimit bounds the frames queued while the session is
// still connecting (32 frames of 4096 samples at 16kHz is ~8s).
const DefaultPendingLimit = 32

// Config holds the parameters for one live session.
type Config struct {
	// APIKey authenticates against the live endpoint. Required.
	APIKey string

	// Model is the conversation model name.
	Model string

	// Voice is the prebuilt voice identifier, forwarded verbatim.
	Voice string

	// Instructions is the behavioral system instruction: the host
	// persona and the authoritative question set. Forwarded verbatim
	// at session open.
	Instructions string

	// Endpoint overrides the live WebSocket URL. Used by tests.
	Endpoint string

	// HandshakeTimeout caps the WebSocket dial.
	HandshakeTimeout time.Duration

	// PendingLimit bounds the send queue used while connecting.
	// Oldest frames are dropped first once the limit is hit.
	PendingLimit int
}

// DefaultConfig returns a Config with sensible defaults.
// The API key must still be supplied.
func DefaultConfig() Config {
	return Config{
		Model:            DefaultModel,
		Voice:            DefaultVoice,
		Endpoint:         defaultEndpoint,
		HandshakeTimeout: 10 * time.Second,
		PendingLimit:     DefaultPendingLimit,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("live: model is required")
	}
	if c.Endpoint == "" {
		return errors.New("live: endpoint is required")
	}
	if c.PendingLimit < 0 {
		return errors.New("live: pending limit must not be negative")
	}
	return nil
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.PendingLimit == 0 {
		c.PendingLimit = DefaultPendingLimit
	}
	return c
}
