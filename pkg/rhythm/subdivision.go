package rhythm

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
)

// ClassifySubdivisions determines whether markers were counted in
// duple ("one and two and"), triplet ("one and ah two and ah"), or
// without subdivisions. Markers are grouped by beat number and the
// mean count of non-beat markers per group drives the classification;
// confidence falls with the variance of those counts.
func ClassifySubdivisions(ms []markers.Marker) SubdivisionResult {
	none := SubdivisionResult{Type: SubdivisionNone, Confidence: 1.0}
	if len(ms) == 0 {
		return none
	}

	counts := subdivisionCounts(ms)
	if len(counts) == 0 {
		return none
	}
	allZero := true
	for _, c := range counts {
		if c != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return none
	}

	mean := stat.Mean(counts, nil)
	std := stat.PopStdDev(counts, nil)

	var typ Subdivision
	perBeat := 0
	switch {
	case mean < 0.5:
		typ = SubdivisionNone
	case mean < 1.5:
		typ, perBeat = SubdivisionDuple, 2
	case mean < 2.5:
		typ, perBeat = SubdivisionTriplet, 3
	default:
		typ, perBeat = SubdivisionUnknown, int(math.RoundToEven(mean))+1
	}

	confidence := 0.5
	if len(counts) > 1 && mean > 0 {
		confidence = math.Max(0, math.Min(1, 1-std/mean))
	}

	return SubdivisionResult{
		Type:       typ,
		Confidence: roundTo(confidence, 2),
		PerBeat:    perBeat,
	}
}

// subdivisionCounts groups markers by beat number, in first-seen
// order, and counts the non-beat markers attached to each. Markers
// without a beat number are ignored.
func subdivisionCounts(ms []markers.Marker) []float64 {
	counts := make(map[int]float64)
	var order []int

	for _, m := range ms {
		if m.BeatNumber == 0 {
			continue
		}
		if _, seen := counts[m.BeatNumber]; !seen {
			order = append(order, m.BeatNumber)
			counts[m.BeatNumber] = 0
		}
		if m.Kind != markers.Beat {
			counts[m.BeatNumber]++
		}
	}

	out := make([]float64, len(order))
	for i, n := range order {
		out[i] = counts[n]
	}
	return out
}
