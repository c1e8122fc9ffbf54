//go:build !cgo

package audioio

import (
	"errors"
	"log/slog"
)

// newOtoSink is unavailable without cgo.
func newOtoSink(cfg Config, logger *slog.Logger) (Sink, error) {
	return nil, errors.New("oto backend requires cgo; use the mock backend")
}
