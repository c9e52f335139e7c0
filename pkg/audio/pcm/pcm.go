package pcm

import (
	"iter"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
)

// Format represents a linear PCM audio format. All formats are 16-bit
// signed little-endian mono; they differ only in sample rate.
type Format int

// FormatForRate returns the Format for the given sample rate.
func FormatForRate(rate int) (Format, bool) {
	switch rate {
	case 16000:
		return L16Mono16K, true
	case 24000:
		return L16Mono24K, true
	case 48000:
		return L16Mono48K, true
	}
	return 0, false
}

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono24K:
		return 24000
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid audio format")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 1
	}
	panic("pcm: invalid audio format")
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 16
	}
	panic("pcm: invalid audio format")
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.Channels() * f.Depth() / 8
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// SamplesInDuration returns the number of samples in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.Channels()) * int64(f.Depth()) / 8
}

// Duration returns the duration of the given number of samples.
func (f Format) Duration(samples int64) time.Duration {
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate())
}

// Seconds returns the duration of the given number of samples in seconds.
func (f Format) Seconds(samples int) float64 {
	return float64(samples) / float64(f.SampleRate())
}

// String returns a human-readable string representation of the format.
func (f Format) String() string {
	switch f {
	case L16Mono16K:
		return "audio/L16; rate=16000; channels=1"
	case L16Mono24K:
		return "audio/L16; rate=24000; channels=1"
	case L16Mono48K:
		return "audio/L16; rate=48000; channels=1"
	}
	panic("pcm: invalid audio format")
}

// Int16s decodes little-endian 16-bit PCM bytes into samples.
// Data that is not 16-bit aligned indicates a caller defect and panics.
func Int16s(data []byte) []int16 {
	if len(data)%2 != 0 {
		panic("pcm: data not 16-bit aligned")
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

// Bytes encodes samples as little-endian 16-bit PCM bytes.
func Bytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// Silence returns n zero samples.
func Silence(n int) []int16 {
	return make([]int16, n)
}

// Chunks yields fixed-size sample chunks together with the start time of
// each chunk in seconds from the beginning of samples. The final chunk may
// be shorter than size. size must be positive.
func (f Format) Chunks(samples []int16, size int) iter.Seq2[float64, []int16] {
	if size <= 0 {
		panic("pcm: chunk size must be positive")
	}
	rate := float64(f.SampleRate())
	return func(yield func(float64, []int16) bool) {
		for off := 0; off < len(samples); off += size {
			end := min(off+size, len(samples))
			if !yield(float64(off)/rate, samples[off:end]) {
				return
			}
		}
	}
}
