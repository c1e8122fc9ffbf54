package tts

import (
	"context"
	"sync"
)

// Mock is a Provider for tests. It fabricates silent PCM sized to a
// fixed speaking rate and records every synthesized text.
type Mock struct {
	// Err, when set, is returned by every call.
	Err error

	// BytesPerChar controls the fabricated audio size.
	BytesPerChar int

	mu    sync.Mutex
	texts []string
}

// NewMock creates a mock provider.
func NewMock() *Mock {
	return &Mock{BytesPerChar: 200}
}

// Synthesize fabricates a silent PCM buffer proportional to the text.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	n := len(text) * m.BytesPerChar
	if n%2 != 0 {
		n++
	}
	audio := make([]byte, n)

	return &AudioResult{
		Audio:     audio,
		Duration:  pcmDuration(len(audio)),
		CharCount: len(text),
	}, nil
}

// Health always succeeds unless Err is set.
func (m *Mock) Health(ctx context.Context) error {
	return m.Err
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Texts returns every text passed to Synthesize, in order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}
