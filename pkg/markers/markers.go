// Package markers classifies transcribed words as rhythmic markers.
//
// Dance teachers count exercises aloud: numbered beats ("one" through
// "eight"), offbeat "and"s, and triplet pickups like "ah". The package
// maps those words onto marker kinds and associates each subdivision
// with the most recent numbered beat, producing the timed marker stream
// that tempo and subdivision analysis consume.
//
// The built-in lexicon is a fallback. Word lists need tuning per accent
// and voice; when a classification collaborator labels the words
// directly, MergeClassified aligns its output with transcription
// timestamps instead.
package markers

import (
	"strings"

	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

// Kind identifies the rhythmic role of a counted word.
type Kind string

const (
	// Beat is a numbered count: "one" through "eight", "1" through "8".
	Beat Kind = "beat"
	// And is the half-beat subdivision, or the second of three in a triplet.
	And Kind = "and"
	// Ah is the third subdivision in a triplet.
	Ah Kind = "ah"
	// E is the second sixteenth in a "1-e-and-a" count.
	E Kind = "e"
)

// kinds maps cleaned words to their marker kind.
var kinds = map[string]Kind{
	"one": Beat, "two": Beat, "three": Beat, "four": Beat,
	"five": Beat, "six": Beat, "seven": Beat, "eight": Beat,
	"1": Beat, "2": Beat, "3": Beat, "4": Beat,
	"5": Beat, "6": Beat, "7": Beat, "8": Beat,

	"and": And, "&": And, "an": And, "n": And, "in": And,

	"ah": Ah, "a": Ah, "uh": Ah, "la": Ah, "the": Ah, "da": Ah, "ta": Ah,

	"e": E, "ee": E,
}

// beatNumbers maps beat words to their numeric count.
var beatNumbers = map[string]int{
	"one": 1, "1": 1,
	"two": 2, "2": 2,
	"three": 3, "3": 3,
	"four": 4, "4": 4,
	"five": 5, "5": 5,
	"six": 6, "6": 6,
	"seven": 7, "7": 7,
	"eight": 8, "8": 8,
}

// Marker is a classified word with its start time in seconds.
type Marker struct {
	Kind Kind `json:"kind"`

	// BeatNumber is the count this marker belongs to (1-8). Subdivision
	// markers inherit the number of the most recent beat; it is 0 for
	// markers heard before the first numbered beat.
	BeatNumber int `json:"beat_number,omitempty"`

	Timestamp float64 `json:"timestamp"`

	// Word is the original transcribed word, uncleaned.
	Word string `json:"word"`
}

// Normalize cleans a word for lexicon lookup and cross-source matching:
// surrounding whitespace trimmed, lowercased, leading and trailing
// punctuation stripped.
func Normalize(word string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(word)), ".,!?;:")
}

// Classify reports the marker kind of a single word. The second return
// value is false for words that are not rhythmic markers.
func Classify(word string) (Kind, bool) {
	k, ok := kinds[Normalize(word)]
	return k, ok
}

// Extract converts transcribed words into timed markers. Words outside
// the lexicon are skipped. Marker timestamps are word start times.
func Extract(words []transcribe.Word) []Marker {
	var ms []Marker
	beat := 0

	for _, w := range words {
		clean := Normalize(w.Word)
		kind, ok := kinds[clean]
		if !ok {
			continue
		}
		if kind == Beat {
			beat = beatNumbers[clean]
		}
		ms = append(ms, Marker{
			Kind:       kind,
			BeatNumber: beat,
			Timestamp:  w.Start,
			Word:       w.Word,
		})
	}
	return ms
}

// BeatTimestamps returns the timestamps of the numbered beat markers,
// in order. These are the onsets tempo estimation runs on.
func BeatTimestamps(ms []Marker) []float64 {
	var ts []float64
	for _, m := range ms {
		if m.Kind == Beat {
			ts = append(ts, m.Timestamp)
		}
	}
	return ts
}
