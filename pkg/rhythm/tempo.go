package rhythm

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Target band for counted exercises at beat level. Class tempos almost
// always fall here; values outside it usually mean a detector locked
// onto a subdivision pulse (too fast) or a measure pulse (too slow).
const (
	LowBPM  = 70.0
	HighBPM = 140.0
)

// EstimateTempo calculates tempo from an ordered sequence of beat
// timestamps in seconds. BPM is derived from the median interval so a
// single missed or doubled beat does not skew the estimate; confidence
// falls with the coefficient of variation of the intervals. Returns
// nil when fewer than two timestamps are available.
func EstimateTempo(timestamps []float64) *TempoResult {
	if len(timestamps) < 2 {
		return nil
	}

	intervals := make([]float64, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		intervals[i-1] = timestamps[i] - timestamps[i-1]
	}

	medianInterval := median(intervals)
	bpm := 60.0 / medianInterval

	cv := 1.0
	if medianInterval > 0 {
		cv = stat.PopStdDev(intervals, nil) / medianInterval
	}
	confidence := math.Max(0, 1-cv)

	return &TempoResult{
		BPM:        roundTo(bpm, 1),
		Confidence: roundTo(confidence, 2),
		BeatCount:  len(timestamps),
		Intervals:  intervals,
	}
}

// NormalizeTempo snaps a BPM into [low, high] by multiplying or
// dividing by 2 or 3, doubling preferred over tripling when both land.
// The multiplier records how the raw pulse relates to the normalized
// beat:
//
//	 1: already at beat level
//	 2: raw was at measure level (doubled to reach beat)
//	 3: raw was at measure level in triple meter
//	-2: raw was at subdivision level (halved to reach beat)
//	-3: raw was at triplet subdivision level
//	 0: could not normalize; value returned unchanged, treat as unreliable
func NormalizeTempo(bpm, low, high float64) (float64, int) {
	if low <= bpm && bpm <= high {
		return roundTo(bpm, 1), 1
	}

	// Multiply up (measure to beat).
	for _, factor := range [...]float64{2, 3} {
		if c := bpm * factor; low <= c && c <= high {
			return roundTo(c, 1), int(factor)
		}
	}

	// Divide down (subdivision to beat).
	for _, factor := range [...]float64{2, 3} {
		if c := bpm / factor; low <= c && c <= high {
			return roundTo(c, 1), -int(factor)
		}
	}

	return roundTo(bpm, 1), 0
}
