// Package pcm converts between floating-point audio samples and the
// 16-bit little-endian PCM wire format used by the live voice API,
// plus the base64 transcoding required for its JSON payloads.
package pcm

import (
	"encoding/base64"
	"encoding/binary"
)

// Encode converts normalized float samples in [-1, 1] to 16-bit
// signed little-endian PCM bytes. Out-of-range samples are clamped,
// never wrapped. Negative values scale by 32768 and non-negative
// values by 32767 so the full asymmetric int16 range is used.
func Encode(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Decode converts 16-bit signed little-endian PCM bytes to normalized
// float samples in [-1, 1). A trailing odd byte is ignored.
func Decode(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples
}

// MarshalBase64 encodes raw bytes as standard base64 text for
// transports that require text-safe payloads.
func MarshalBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// UnmarshalBase64 decodes standard base64 text back to raw bytes.
// Round-trip with MarshalBase64 is exact for arbitrary byte sequences.
func UnmarshalBase64(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}
