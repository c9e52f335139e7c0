package pcm

import (
	"testing"
	"time"
)

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		format    Format
		rate      int
		bytesRate int
	}{
		{L16Mono16K, 16000, 32000},
		{L16Mono24K, 24000, 48000},
		{L16Mono48K, 48000, 96000},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.SampleRate(); got != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", got, tt.rate)
			}
			if got := tt.format.BytesRate(); got != tt.bytesRate {
				t.Errorf("BytesRate() = %d, want %d", got, tt.bytesRate)
			}
			if got := tt.format.Channels(); got != 1 {
				t.Errorf("Channels() = %d, want 1", got)
			}
			if got := tt.format.Depth(); got != 16 {
				t.Errorf("Depth() = %d, want 16", got)
			}
		})
	}
}

func TestFormatForRate(t *testing.T) {
	if f, ok := FormatForRate(16000); !ok || f != L16Mono16K {
		t.Errorf("FormatForRate(16000) = %v, %v", f, ok)
	}
	if _, ok := FormatForRate(44100); ok {
		t.Error("FormatForRate(44100) should not match")
	}
}

func TestFormatConversions(t *testing.T) {
	f := L16Mono16K
	if got := f.SamplesInDuration(80 * time.Millisecond); got != 1280 {
		t.Errorf("SamplesInDuration(80ms) = %d, want 1280", got)
	}
	if got := f.BytesInDuration(80 * time.Millisecond); got != 2560 {
		t.Errorf("BytesInDuration(80ms) = %d, want 2560", got)
	}
	if got := f.Samples(2560); got != 1280 {
		t.Errorf("Samples(2560) = %d, want 1280", got)
	}
	if got := f.Duration(16000); got != time.Second {
		t.Errorf("Duration(16000) = %v, want 1s", got)
	}
	if got := f.Seconds(1280); got != 0.08 {
		t.Errorf("Seconds(1280) = %v, want 0.08", got)
	}
}

func TestInt16sRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	got := Int16s(Bytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestInt16sUnaligned(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unaligned data")
		}
	}()
	Int16s([]byte{1, 2, 3})
}

func TestChunks(t *testing.T) {
	samples := Silence(16000 * 2) // 2s
	var (
		count int
		last  float64
	)
	for ts, chunk := range L16Mono16K.Chunks(samples, 1280) {
		if len(chunk) != 1280 {
			t.Fatalf("chunk %d has %d samples, want 1280", count, len(chunk))
		}
		last = ts
		count++
	}
	if count != 25 {
		t.Errorf("chunk count = %d, want 25", count)
	}
	if want := 24 * 0.08; last != want {
		t.Errorf("last timestamp = %v, want %v", last, want)
	}
}

func TestChunksShortTail(t *testing.T) {
	var sizes []int
	for _, chunk := range L16Mono16K.Chunks(Silence(3000), 1280) {
		sizes = append(sizes, len(chunk))
	}
	if len(sizes) != 3 || sizes[0] != 1280 || sizes[1] != 1280 || sizes[2] != 440 {
		t.Errorf("chunk sizes = %v, want [1280 1280 440]", sizes)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []int16{100, -100, 2000, -2000, 0, 32767}
	data := EncodeWAV(samples, 16000)

	got, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 16000 {
		t.Errorf("rate = %d, want 16000", rate)
	}
	if len(got) != len(samples) {
		t.Fatalf("length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecodeWAVStereo(t *testing.T) {
	// Hand-build a stereo container: two frames of L/R pairs.
	stereo := []int16{100, 200, -100, -200}
	data := EncodeWAV(stereo, 48000)
	// Patch channels to 2 and halve per-frame sizes accordingly.
	data[22] = 2 // channels
	data[32] = 4 // block align

	got, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 48000 {
		t.Errorf("rate = %d, want 48000", rate)
	}
	want := []int16{150, -150}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("JUNKJUNKJUNKJUNK")},
		{"truncated", EncodeWAV([]int16{1, 2, 3}, 16000)[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeWAV(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
