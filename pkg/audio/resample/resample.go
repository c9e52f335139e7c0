// Package resample converts int16 mono PCM between sample rates using a pure
// Go polyphase resampler (no CGO/FFI dependencies). A Resampler is constructed
// per rate pair and fed incrementally, so it suits live ingest where audio
// arrives in frames.
package resample

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts mono 16-bit audio from one sample rate to another. It is
// stateful: the polyphase filter carries samples across Process calls, so per
// call output length only tracks the rate ratio on average. Not safe for
// concurrent use.
type Resampler struct {
	inRate  int
	outRate int

	// nil when inRate == outRate
	conv resampling.Resampler
}

// New creates a Resampler converting from inRate to outRate Hz. Equal rates
// yield a passthrough.
func New(inRate, outRate int) (*Resampler, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("invalid rate pair %d -> %d", inRate, outRate)
	}

	r := &Resampler{inRate: inRate, outRate: outRate}
	if inRate == outRate {
		return r, nil
	}

	conv, err := resampling.New(&resampling.Config{
		InputRate:  float64(inRate),
		OutputRate: float64(outRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	r.conv = conv
	return r, nil
}

// InRate returns the input sample rate in Hz.
func (r *Resampler) InRate() int { return r.inRate }

// OutRate returns the output sample rate in Hz.
func (r *Resampler) OutRate() int { return r.outRate }

// Process resamples a frame of mono samples. The returned slice may be empty
// while the filter fills, and a passthrough returns the input unchanged.
func (r *Resampler) Process(samples []int16) ([]int16, error) {
	if r.conv == nil || len(samples) == 0 {
		return samples, nil
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := r.conv.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	out := make([]int16, len(output))
	for i, s := range output {
		switch {
		case s > 1.0:
			out[i] = 32767
		case s < -1.0:
			out[i] = -32768
		default:
			out[i] = int16(s * 32767.0)
		}
	}
	return out, nil
}
