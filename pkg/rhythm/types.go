package rhythm

// Subdivision labels the counting pattern between beats.
type Subdivision string

const (
	// SubdivisionNone means beats are counted without subdivisions.
	SubdivisionNone Subdivision = "none"
	// SubdivisionDuple is "one and two and": one subdivision per beat.
	SubdivisionDuple Subdivision = "duple"
	// SubdivisionTriplet is "one and ah two and ah": two per beat.
	SubdivisionTriplet Subdivision = "triplet"
	// SubdivisionUnknown marks denser patterns than triplet.
	SubdivisionUnknown Subdivision = "unknown"
)

// TempoResult is a tempo estimate from classified beat timestamps.
type TempoResult struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
	BeatCount  int     `json:"beat_count"`

	// Intervals are the raw gaps between consecutive beats, unrounded,
	// for downstream inspection.
	Intervals []float64 `json:"intervals"`
}

// SubdivisionResult classifies the counting pattern of a marker
// sequence.
type SubdivisionResult struct {
	Type       Subdivision `json:"subdivision_type"`
	Confidence float64     `json:"confidence"`

	// PerBeat is the number of pulses per beat including the beat
	// itself (2 for duple, 3 for triplet), 0 when no subdivisions were
	// detected.
	PerBeat int `json:"subdivisions_per_beat,omitempty"`
}

// RhythmicSection is a span of audio judged regularly spoken.
type RhythmicSection struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	BPM     float64 `json:"bpm"`
	MeanIOI float64 `json:"mean_ioi"`
	CV      float64 `json:"cv"`

	// WordCount counts the distinct word texts in the section. Merged
	// overlapping windows collapse repeated step names, which slightly
	// understates the true count in favor of a readable word list.
	WordCount int      `json:"word_count"`
	Words     []string `json:"words"`
}

// OnsetTempoResult is a classification-free tempo estimate from word
// onset timing.
type OnsetTempoResult struct {
	BPM              float64           `json:"bpm"`
	Confidence       float64           `json:"confidence"`
	RhythmicSections []RhythmicSection `json:"rhythmic_sections"`
	TotalDuration    float64           `json:"total_duration"`
	RhythmicCoverage float64           `json:"rhythmic_coverage"`

	// IOIHistogramPeakBPM is the secondary estimate from the
	// inter-onset interval histogram, 0 when no stable peak exists.
	IOIHistogramPeakBPM float64 `json:"ioi_histogram_peak_bpm,omitempty"`
}

// Meter is a time signature.
type Meter struct {
	BeatsPerMeasure int `json:"beats_per_measure"`
	BeatUnit        int `json:"beat_unit"`
}

// NormalizedTempo is a coherent metric interpretation: a BPM in the
// normal band together with the meter and subdivision implied by how
// it was reached.
type NormalizedTempo struct {
	BPM         float64     `json:"bpm"`
	Meter       Meter       `json:"meter"`
	Subdivision Subdivision `json:"subdivision"`
	Confidence  float64     `json:"confidence"`
	RawBPM      float64     `json:"raw_bpm"`

	// TempoMultiplier records how RawBPM relates to BPM: 1 in band
	// as-is, 2 or 3 multiplied up from measure level, -2 or -3 divided
	// down from subdivision level. The triple-meter cross-signal
	// override reuses 3 without rescaling RawBPM.
	TempoMultiplier int `json:"tempo_multiplier"`
}
