package classify

import "github.com/google/jsonschema-go/jsonschema"

// responseSchema is the structured-output contract shared by every
// backend. All properties are required; fields the model may decline
// carry a null union type instead.
func responseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"words": {
				Type:        "array",
				Description: "Every word heard in the audio, in order",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"word": {
							Type:        "string",
							Description: "The word as spoken",
						},
						"marker_type": {
							Type: "string",
							Description: "Rhythmic role: 'beat' for counted numbers (1,2,3...), " +
								"'and' for 'and' subdivisions, 'ah' for 'ah' subdivisions, " +
								"or 'none' for non-rhythmic speech",
							Enum: []any{"beat", "and", "ah", "none"},
						},
						"beat_number": {
							Types: []string{"integer", "null"},
							Description: "Which beat number this word belongs to (1-16+). " +
								"For 'and'/'ah', the preceding beat number. " +
								"Null for non-rhythmic words.",
						},
					},
					Required: []string{"word", "marker_type", "beat_number"},
				},
			},
			"exercise": {
				Type:        "object",
				Description: "The dance exercise being demonstrated",
				Properties: map[string]*jsonschema.Schema{
					"exercise_type": {
						Type: "string",
						Description: "Canonical exercise name in snake_case " +
							"(e.g. plie, tendu, chaine_turn, pirouette). " +
							"Use 'unknown' if unclear.",
					},
					"display_name": {
						Type:        "string",
						Description: "Pretty display name (e.g. Plié, Chaîné Turn)",
					},
					"confidence": {
						Type:        "number",
						Description: "Confidence 0.0-1.0",
					},
					"reasoning": {
						Type:        "string",
						Description: "Brief explanation of why this exercise was identified",
					},
				},
				Required: []string{"exercise_type", "display_name", "confidence", "reasoning"},
			},
			"counting_structure": {
				Type:        "object",
				Description: "The rhythmic structure of the counting",
				Properties: map[string]*jsonschema.Schema{
					"total_counts": {
						Type:        "integer",
						Description: "Total number of beats counted",
					},
					"prep_counts": {
						Types:       []string{"string", "null"},
						Description: "Any preparatory counts before the main phrase (e.g. '5, 6, 7, 8')",
					},
					"subdivision_type": {
						Type: "string",
						Description: "Whether the counting uses subdivisions: " +
							"'none' (just beats), 'duple' (1-and-2-and), " +
							"'triplet' (1-and-ah-2-and-ah)",
						Enum: []any{"none", "duple", "triplet"},
					},
					"estimated_bpm": {
						Types:       []string{"number", "null"},
						Description: "Estimated tempo in beats per minute",
					},
				},
				Required: []string{"total_counts", "prep_counts", "subdivision_type", "estimated_bpm"},
			},
			"meter": {
				Type:        "object",
				Description: "The meter/time signature of the exercise",
				Properties: map[string]*jsonschema.Schema{
					"beats_per_measure": {
						Type: "integer",
						Description: "Beats per measure: 2, 3, 4, or 6. " +
							"3 for waltz/balancé, 4 for most exercises, " +
							"6 for 6/8 compound time.",
					},
					"beat_unit": {
						Type:        "integer",
						Description: "Note value that gets one beat: 4 for quarter note, 8 for eighth note",
					},
				},
				Required: []string{"beats_per_measure", "beat_unit"},
			},
			"quality": {
				Type:        "object",
				Description: "The movement and musical quality/style",
				Properties: map[string]*jsonschema.Schema{
					"descriptors": {
						Type: "array",
						Description: "2-5 musical/movement quality words that describe how the exercise " +
							"should be performed. Examples: legato, staccato, sharp, flowing, " +
							"sustained, marcato, bouncy, smooth, lyrical, crisp, grounded, airy",
						Items: &jsonschema.Schema{Type: "string"},
					},
				},
				Required: []string{"descriptors"},
			},
			"structure": {
				Type:        "object",
				Description: "The phrase structure of the exercise",
				Properties: map[string]*jsonschema.Schema{
					"counts": {
						Type:        "integer",
						Description: "Total counts in one full phrase (e.g. 16, 32)",
					},
					"sides": {
						Type: "integer",
						Description: "Number of sides/repetitions (1 if one-sided, " +
							"2 if the exercise repeats left and right)",
					},
				},
				Required: []string{"counts", "sides"},
			},
		},
		Required: []string{"words", "exercise", "counting_structure", "meter", "quality", "structure"},
	}
}
