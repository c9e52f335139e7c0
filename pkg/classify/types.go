package classify

import (
	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
)

// Classification is a model's structured reading of one take. Sections
// the model could not fill are nil.
type Classification struct {
	// Words is every word the model heard, in order, with its rhythmic
	// role. Kind is empty for non-rhythmic speech.
	Words             []markers.ClassifiedWord `json:"words"`
	Exercise          *ExerciseReading         `json:"exercise,omitempty"`
	CountingStructure *CountingStructure       `json:"counting_structure,omitempty"`
	Meter             *rhythm.Meter            `json:"meter,omitempty"`
	Quality           *Quality                 `json:"quality,omitempty"`
	Structure         *PhraseStructure         `json:"structure,omitempty"`
	// Model names the backend model that produced this reading.
	Model string `json:"model,omitempty"`
}

// ExerciseReading identifies the exercise being set.
type ExerciseReading struct {
	// Type is the canonical snake_case exercise name, or "unknown".
	Type        string  `json:"exercise_type"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// CountingStructure describes the counting pattern the model observed.
type CountingStructure struct {
	TotalCounts int `json:"total_counts"`
	// PrepCounts is the preparatory count-in ("5, 6, 7, 8"), empty when
	// the teacher launched straight in.
	PrepCounts      string             `json:"prep_counts,omitempty"`
	SubdivisionType rhythm.Subdivision `json:"subdivision_type,omitempty"`
	// EstimatedBPM is the model's own tempo guess, 0 when it declined.
	EstimatedBPM float64 `json:"estimated_bpm,omitempty"`
}

// Quality is the movement and musical style of the exercise.
type Quality struct {
	Descriptors []string `json:"descriptors"`
}

// PhraseStructure is the shape of the phrase.
type PhraseStructure struct {
	// Counts is the length of one full phrase.
	Counts int `json:"counts"`
	// Sides is 1 for one-sided exercises, 2 when repeated left and
	// right.
	Sides int `json:"sides"`
}
