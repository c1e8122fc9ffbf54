package audioio

import (
	"time"

	"github.com/quizcast/quizcast/pkg/pcm"
)

// Chunk is a fixed window of mono audio samples, each a normalized
// floating-point amplitude in [-1, 1]. Chunks are immutable once
// captured; ownership passes from the capture source through the
// codec to the transport, or from the transport to the playback
// scheduler.
type Chunk struct {
	// Samples contains normalized float amplitudes.
	Samples []float32

	// SampleRate is the sample rate of this chunk in Hz.
	SampleRate int
}

// PCM16 returns the chunk as 16-bit signed little-endian PCM bytes.
func (c Chunk) PCM16() []byte {
	return pcm.Encode(c.Samples)
}

// ChunkFromPCM16 builds a chunk from 16-bit little-endian PCM bytes.
func ChunkFromPCM16(data []byte, sampleRate int) Chunk {
	return Chunk{
		Samples:    pcm.Decode(data),
		SampleRate: sampleRate,
	}
}

// Duration returns the playback duration of this chunk.
func (c Chunk) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}
