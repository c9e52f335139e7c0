package analyze

import (
	"github.com/ben-juodvalkis/musical-perception/pkg/classify"
	"github.com/ben-juodvalkis/musical-perception/pkg/exercise"
	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

// MusicalParameters is the contract between perception and downstream
// consumers. How the parameters are extracted will keep changing; this
// shape should not.
type MusicalParameters struct {
	// Tempo is estimated from classified beat timestamps, nil when
	// fewer than two beats were heard.
	Tempo *rhythm.TempoResult `json:"tempo,omitempty"`

	// OnsetTempo is the classification-free estimate from word onset
	// timing alone.
	OnsetTempo *rhythm.OnsetTempoResult `json:"onset_tempo,omitempty"`

	// NormalizedTempo reconciles the tempo signals into one coherent
	// metric reading: BPM in the normal band, meter, subdivision.
	NormalizedTempo *rhythm.NormalizedTempo `json:"normalized_tempo,omitempty"`

	// NormalizedBPM and TempoMultiplier mirror NormalizedTempo for
	// flat consumers; both zero when it is nil.
	NormalizedBPM   float64 `json:"normalized_bpm,omitempty"`
	TempoMultiplier int     `json:"tempo_multiplier,omitempty"`

	Subdivision rhythm.SubdivisionResult `json:"subdivision"`

	// Meter follows NormalizedTempo when present, otherwise the
	// classifier's hint, otherwise nil.
	Meter *rhythm.Meter `json:"meter,omitempty"`

	Exercise  *exercise.Result          `json:"exercise,omitempty"`
	Quality   *classify.Quality         `json:"quality,omitempty"`
	Structure *classify.PhraseStructure `json:"structure,omitempty"`

	// Words is the timestamped transcription the reading was built on.
	Words []transcribe.Word `json:"words"`

	// Markers are the timed rhythmic markers, from the classifier
	// merge or the built-in lexicon.
	Markers []markers.Marker `json:"markers,omitempty"`
}
