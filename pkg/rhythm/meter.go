package rhythm

import "fmt"

// InterpretMeter reconciles the available tempo signals into one
// coherent reading. The onset-based BPM wins when its confidence
// reaches 0.3, then the classified tempo, then the onset BPM again
// regardless of confidence. The chosen raw BPM is normalized into the
// 70-140 band; the resulting multiplier decides meter and subdivision,
// with the external hints filling the gaps when the raw pulse was
// already at beat level. An empty subdivisionHint means no hint.
//
// Returns nil when no tempo signal exists or the BPM is too extreme to
// normalize.
func InterpretMeter(onset *OnsetTempoResult, classified *TempoResult, meterHint *Meter, subdivisionHint Subdivision) *NormalizedTempo {
	var rawBPM, confidence float64
	switch {
	case onset != nil && onset.Confidence >= 0.3:
		rawBPM, confidence = onset.BPM, onset.Confidence
	case classified != nil:
		rawBPM, confidence = classified.BPM, classified.Confidence
	case onset != nil:
		rawBPM, confidence = onset.BPM, onset.Confidence
	default:
		return nil
	}

	normalized, multiplier := NormalizeTempo(rawBPM, LowBPM, HighBPM)
	if multiplier == 0 {
		return nil
	}

	// Cross-signal check: when the onset BPM is in band but the
	// classified BPM sits near a third of it, the classified markers
	// landed on measures of a triple meter. This overloads
	// multiplier=3: rawBPM was NOT tripled here, and is reported
	// unscaled so consumers need not reverse it.
	if multiplier == 1 && onset != nil && classified != nil {
		ratio := 1.0
		if classified.BPM > 0 {
			ratio = rawBPM / classified.BPM
		}
		if 2.5 <= ratio && ratio <= 3.5 {
			multiplier = 3
		}
	}

	var meter Meter
	var subdivision Subdivision
	switch multiplier {
	case 1:
		// Already at beat level, trust the hints.
		meter = meterOrDefault(meterHint)
		subdivision = subdivisionHint
		if subdivision == "" {
			subdivision = SubdivisionNone
		}
	case 2:
		meter = Meter{BeatsPerMeasure: 4, BeatUnit: 4}
		subdivision = SubdivisionNone
	case 3:
		meter = Meter{BeatsPerMeasure: 3, BeatUnit: 4}
		subdivision = SubdivisionNone
	case -2:
		meter = meterOrDefault(meterHint)
		subdivision = SubdivisionDuple
	case -3:
		meter = meterOrDefault(meterHint)
		subdivision = SubdivisionTriplet
	default:
		// NormalizeTempo returns only {1,2,3,-2,-3,0} and 0 exits above.
		panic(fmt.Sprintf("rhythm: unexpected multiplier %d", multiplier))
	}

	return &NormalizedTempo{
		BPM:             normalized,
		Meter:           meter,
		Subdivision:     subdivision,
		Confidence:      roundTo(confidence, 2),
		RawBPM:          roundTo(rawBPM, 1),
		TempoMultiplier: multiplier,
	}
}

func meterOrDefault(hint *Meter) Meter {
	if hint != nil {
		return *hint
	}
	return Meter{BeatsPerMeasure: 4, BeatUnit: 4}
}
