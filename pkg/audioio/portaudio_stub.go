//go:build !cgo

package audioio

import (
	"errors"
	"log/slog"
)

// newPortAudioSource is unavailable without cgo.
func newPortAudioSource(cfg Config, logger *slog.Logger) (Source, error) {
	return nil, errors.New("portaudio backend requires cgo; use the mock backend")
}
