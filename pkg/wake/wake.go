// Package wake scores audio chunks for wake activity.
//
// A Scorer looks at one 80ms chunk at a time and reports named
// confidence scores. Keyword-spotting models plug in through the
// Scorer interface; EnergyScorer is the built-in fallback that keys
// on speech energy over the room's noise floor.
package wake

// Scorer assigns confidence scores to one chunk of 16-bit 16kHz mono
// audio. Keys name the detector that produced the score, values are
// in [0, 1]. Implementations may keep state across calls and are not
// safe for concurrent use unless documented otherwise.
type Scorer interface {
	Score(chunk []int16) map[string]float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(chunk []int16) map[string]float64

// Score calls f.
func (f ScorerFunc) Score(chunk []int16) map[string]float64 {
	return f(chunk)
}
