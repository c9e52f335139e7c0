package markers

import "github.com/ben-juodvalkis/musical-perception/pkg/transcribe"

// ClassifiedWord is a word labeled with its rhythmic role by a
// classification collaborator. It carries no timing; MergeClassified
// supplies that from the transcription.
type ClassifiedWord struct {
	Word string `json:"word"`

	// Kind is empty for words that are not rhythmic markers.
	Kind Kind `json:"kind,omitempty"`

	// BeatNumber is 0 when the classifier assigned no count.
	BeatNumber int `json:"beat_number,omitempty"`
}

// MergeClassified aligns a collaborator's word classifications with
// transcription timestamps using sequential word matching: both lists
// are walked in order, comparing normalized text. A transcribed word
// that does not match the current classified word is not consumed, so
// it can still match a later one. Classified words with no matching
// transcribed word are dropped; so are words the classifier did not
// mark.
func MergeClassified(classified []ClassifiedWord, words []transcribe.Word) []Marker {
	var ms []Marker
	next := 0

	for _, cw := range classified {
		if cw.Kind == "" {
			continue
		}
		norm := Normalize(cw.Word)
		for i := next; i < len(words); i++ {
			if Normalize(words[i].Word) != norm {
				continue
			}
			ms = append(ms, Marker{
				Kind:       cw.Kind,
				BeatNumber: cw.BeatNumber,
				Timestamp:  words[i].Start,
				Word:       words[i].Word,
			})
			next = i + 1
			break
		}
	}
	return ms
}
