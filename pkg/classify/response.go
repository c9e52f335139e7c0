package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
)

// Wire shapes matching the response schema. Nullable fields are
// pointers so a model's nulls decode cleanly.
type wireResponse struct {
	Words             []wireWord       `json:"words"`
	Exercise          *ExerciseReading `json:"exercise"`
	CountingStructure *wireCounting    `json:"counting_structure"`
	Meter             *rhythm.Meter    `json:"meter"`
	Quality           *Quality         `json:"quality"`
	Structure         *PhraseStructure `json:"structure"`
}

type wireWord struct {
	Word       string `json:"word"`
	MarkerType string `json:"marker_type"`
	BeatNumber *int   `json:"beat_number"`
}

type wireCounting struct {
	TotalCounts     int      `json:"total_counts"`
	PrepCounts      *string  `json:"prep_counts"`
	SubdivisionType string   `json:"subdivision_type"`
	EstimatedBPM    *float64 `json:"estimated_bpm"`
}

// decodeResponse parses a model's JSON output into a Classification.
func decodeResponse(data []byte, model string) (*Classification, error) {
	var raw wireResponse
	if err := unmarshalRepaired(data, &raw); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	c := &Classification{
		Words:     make([]markers.ClassifiedWord, 0, len(raw.Words)),
		Exercise:  raw.Exercise,
		Meter:     raw.Meter,
		Structure: raw.Structure,
		Model:     model,
	}
	for _, w := range raw.Words {
		cw := markers.ClassifiedWord{
			Word: w.Word,
			Kind: markerKind(w.MarkerType),
		}
		if w.BeatNumber != nil {
			cw.BeatNumber = *w.BeatNumber
		}
		c.Words = append(c.Words, cw)
	}
	if raw.CountingStructure != nil {
		cs := &CountingStructure{
			TotalCounts:     raw.CountingStructure.TotalCounts,
			SubdivisionType: subdivision(raw.CountingStructure.SubdivisionType),
		}
		if raw.CountingStructure.PrepCounts != nil {
			cs.PrepCounts = *raw.CountingStructure.PrepCounts
		}
		if raw.CountingStructure.EstimatedBPM != nil {
			cs.EstimatedBPM = *raw.CountingStructure.EstimatedBPM
		}
		c.CountingStructure = cs
	}
	if raw.Quality != nil && len(raw.Quality.Descriptors) > 0 {
		c.Quality = raw.Quality
	}
	return c, nil
}

func markerKind(s string) markers.Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beat":
		return markers.Beat
	case "and":
		return markers.And
	case "ah":
		return markers.Ah
	case "e":
		return markers.E
	}
	return ""
}

func subdivision(s string) rhythm.Subdivision {
	switch rhythm.Subdivision(strings.ToLower(strings.TrimSpace(s))) {
	case rhythm.SubdivisionNone:
		return rhythm.SubdivisionNone
	case rhythm.SubdivisionDuple:
		return rhythm.SubdivisionDuple
	case rhythm.SubdivisionTriplet:
		return rhythm.SubdivisionTriplet
	}
	return ""
}

// unmarshalRepaired unmarshals JSON, attempting to repair malformed
// output before giving up. Models occasionally emit truncated or
// loosely quoted JSON even under a response schema.
func unmarshalRepaired(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
