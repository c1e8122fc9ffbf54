package audioio

import (
	"testing"
)

func TestResample_SameRate(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3, 0.4, 0.5}
	result := Resample(samples, 24000, 24000)

	if len(result) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(result))
	}

	for i, s := range samples {
		if result[i] != s {
			t.Errorf("sample %d: expected %v, got %v", i, s, result[i])
		}
	}
}

func TestResample_Downsample(t *testing.T) {
	// 48kHz -> 16kHz (3:1 ratio)
	samples := make([]float32, 960)
	for i := range samples {
		samples[i] = float32(i) / 960
	}

	result := Resample(samples, 48000, 16000)

	if len(result) != 320 {
		t.Errorf("expected 320 samples, got %d", len(result))
	}
}

func TestResample_Upsample(t *testing.T) {
	// 16kHz -> 24kHz (2:3 ratio)
	samples := make([]float32, 320)
	for i := range samples {
		samples[i] = float32(i) / 320
	}

	result := Resample(samples, 16000, 24000)

	if len(result) != 480 {
		t.Errorf("expected 480 samples, got %d", len(result))
	}

	// Linear interpolation must stay within the input range.
	for i, s := range result {
		if s < 0 || s > 1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}
}

func TestResample_Empty(t *testing.T) {
	if result := Resample(nil, 24000, 48000); len(result) != 0 {
		t.Error("expected empty result for nil input")
	}
	if result := Resample([]float32{}, 24000, 48000); len(result) != 0 {
		t.Error("expected empty result for empty input")
	}
}
