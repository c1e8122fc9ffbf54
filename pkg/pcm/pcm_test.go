package pcm

import (
	"bytes"
	"math"
	"testing"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		sample float32
		want   int16
	}{
		{"silence", 0, 0},
		{"full scale positive", 1.0, 32767},
		{"full scale negative", -1.0, -32768},
		{"half scale positive", 0.5, 16383},
		{"half scale negative", -0.5, -16384},
		{"clamped above", 2.0, 32767},
		{"clamped below", -3.0, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Encode([]float32{tt.sample})
			if len(out) != 2 {
				t.Fatalf("expected 2 bytes, got %d", len(out))
			}
			got := int16(uint16(out[0]) | uint16(out[1])<<8)
			if got != tt.want {
				t.Errorf("Encode(%v) = %d, want %d", tt.sample, got, tt.want)
			}
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	if out := Encode(nil); len(out) != 0 {
		t.Errorf("expected empty output for nil input, got %d bytes", len(out))
	}
	if out := Decode(nil); len(out) != 0 {
		t.Errorf("expected empty output for nil input, got %d samples", len(out))
	}
}

func TestRoundTripWithinQuantizationError(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}

	decoded := Decode(Encode(samples))
	if len(decoded) != len(samples) {
		t.Fatalf("length mismatch: %d != %d", len(decoded), len(samples))
	}

	// One quantization step at 16 bits.
	const eps = 1.0 / 32768.0
	for i := range samples {
		diff := math.Abs(float64(decoded[i] - samples[i]))
		if diff > eps {
			t.Fatalf("sample %d: round-trip error %v exceeds %v", i, diff, eps)
		}
	}
}

func TestDecodeIgnoresTrailingByte(t *testing.T) {
	samples := Decode([]byte{0x00, 0x40, 0xff})
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
}

func TestBase64RoundTrip(t *testing.T) {
	data := make([]byte, 257)
	for i := range data {
		data[i] = byte(i)
	}

	text := MarshalBase64(data)
	back, err := UnmarshalBase64(text)
	if err != nil {
		t.Fatalf("UnmarshalBase64: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Error("base64 round-trip is not exact")
	}
}

func TestBase64Empty(t *testing.T) {
	if text := MarshalBase64(nil); text != "" {
		t.Errorf("expected empty string, got %q", text)
	}
	back, err := UnmarshalBase64("")
	if err != nil {
		t.Fatalf("UnmarshalBase64: %v", err)
	}
	if len(back) != 0 {
		t.Errorf("expected empty bytes, got %d", len(back))
	}
}
