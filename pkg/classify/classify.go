// Package classify reads the musical structure of a take with a
// multimodal model: per-word rhythmic roles, the exercise being set,
// meter, counting structure, and movement quality.
//
// Models hear the audio but cannot provide word timestamps or numeric
// tempo measurements; timing stays with the transcriber and the rhythm
// package. The markers package merges a Classification's word roles
// with transcriber timestamps.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

// Request carries the audio and context for one classification.
type Request struct {
	// Samples is the take as 16-bit 16kHz mono PCM.
	Samples []int16
	// Words is the timestamped transcription of the same audio, when
	// available. Sharing it nudges the model toward the transcriber's
	// spellings, which improves the later timestamp merge.
	Words []transcribe.Word
	// BPMHint is an onset-based tempo estimate in beats per minute,
	// offered to the model as calibration. Zero means no hint.
	BPMHint float64
}

// Classifier produces a structured reading of one take.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Classification, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req Request) (*Classification, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) (*Classification, error) {
	return f(ctx, req)
}

const analysisPrompt = `Analyze this dance class audio. A teacher is counting aloud to demonstrate rhythm for a ballet exercise.

For each spoken word, classify it:
- "beat": counted numbers (1, 2, 3... 8); assign beat_number
- "and": subdivision words ("and", "&"); assign the beat_number of the preceding beat
- "ah": subdivision words ("ah", "a", "uh"); assign the beat_number of the preceding beat
- "none": non-rhythmic speech (instructions, exercise names, etc.); beat_number is null

Identify the ballet exercise type from the speech.

For counting_structure, report what you observe about the counting pattern.

For meter, determine the time signature from the counting pattern and movement quality (e.g. waltz = 3/4, most barre work = 4/4).

For quality, describe the movement/musical style with 2-5 descriptors (e.g. legato, sharp, flowing, sustained, marcato, bouncy, lyrical, crisp).

For structure, report the phrase length in counts and whether the exercise is performed on one side or both sides.`

// buildPrompt appends the per-request context to the base prompt.
func buildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(analysisPrompt)
	if req.BPMHint > 0 {
		fmt.Fprintf(&sb,
			"\n\nWord-onset timing independently estimated the tempo at roughly %.0f BPM. Treat this as a calibration hint for estimated_bpm, not ground truth.",
			req.BPMHint)
	}
	if len(req.Words) > 0 {
		texts := make([]string, len(req.Words))
		for i, w := range req.Words {
			texts[i] = w.Word
		}
		fmt.Fprintf(&sb,
			"\n\nA separate transcription heard these words in order: %s\nWhen your word list matches what you hear, use the same spellings.",
			strings.Join(texts, " "))
	}
	return sb.String()
}
