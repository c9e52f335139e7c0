// Package exercise names the ballet exercise a take belongs to from the
// words spoken at its start.
//
// Detection is keyword spotting against a catalog of spoken variants,
// including the common mis-hearings a transcriber produces for French
// terms ("plea" for plié, "tan do" for tendu). A classification
// collaborator that understands phrases like "tendus to the front"
// natively is preferred when configured; the catalog is the offline
// fallback.
package exercise

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

const (
	baseConfidence    = 0.5
	confidencePerChar = 1.0 / 20
	mentionBoost      = 0.1
	duplicateWindow   = 0.1 // seconds

	// DefaultSearchWindow bounds how far into a take the announcement is
	// expected. Teachers name the exercise before counting it in.
	DefaultSearchWindow = 5.0
)

// Match is one mention of a catalog exercise in a transcription.
type Match struct {
	Type        string  `json:"exercise_type"`
	DisplayName string  `json:"display_name"`
	MatchedText string  `json:"matched_text"`
	Timestamp   float64 `json:"timestamp"`
	Confidence  float64 `json:"confidence"`
}

// Result is the outcome of detection over one take.
type Result struct {
	// Type is the catalog key of the primary exercise, or "" when no
	// exercise was mentioned.
	Type        string  `json:"primary_exercise,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Confidence  float64 `json:"confidence"`
	Matches     []Match `json:"all_matches,omitempty"`
}

// Detect finds the primary exercise of a take. When window is positive
// the search first covers only words starting inside the window, then
// falls back to the whole take; a zero window searches everything at
// once. The primary exercise is the earliest mention, and further
// mentions of it through other spoken forms raise the confidence.
func (c *Catalog) Detect(words []transcribe.Word, window float64) Result {
	matches := c.FindMatches(words, window)
	if len(matches) == 0 && window > 0 {
		matches = c.FindMatches(words, 0)
	}
	if len(matches) == 0 {
		return Result{}
	}

	primary := matches[0]
	mentions := 0
	for _, m := range matches {
		if m.Type == primary.Type {
			mentions++
		}
	}
	confidence := math.Min(1, primary.Confidence+float64(mentions-1)*mentionBoost)

	return Result{
		Type:        primary.Type,
		DisplayName: primary.DisplayName,
		Confidence:  math.Round(confidence*100) / 100,
		Matches:     matches,
	}
}

// FindMatches returns every exercise mention ordered by timestamp. A
// positive window restricts the search to words starting inside the
// first window seconds. Each spoken variant matches at most once, at
// its first occurrence, and mentions of one exercise closer than
// duplicateWindow apart collapse into one match.
func (c *Catalog) FindMatches(words []transcribe.Word, window float64) []Match {
	if window > 0 {
		var inWindow []transcribe.Word
		for _, w := range words {
			if w.Start < window {
				inWindow = append(inWindow, w)
			}
		}
		words = inWindow
	}
	if len(words) == 0 {
		return nil
	}

	cleaned := make([]string, len(words))
	for i, w := range words {
		cleaned[i] = cleanText(w.Word)
	}
	fullText := strings.Join(cleaned, " ")

	var matches []Match
	for _, entry := range c.Exercises {
		for _, variant := range entry.Variants {
			vc := cleanText(variant)
			if vc == "" || !strings.Contains(fullText, vc) {
				continue
			}
			parts := strings.Fields(vc)
			for i := range cleaned {
				if cleaned[i] != parts[0] || !tokensFollow(cleaned, i, parts) {
					continue
				}
				matches = append(matches, Match{
					Type:        entry.Type,
					DisplayName: entry.displayName(),
					MatchedText: variant,
					Timestamp:   words[i].Start,
					Confidence:  math.Min(1, baseConfidence+float64(utf8.RuneCountInString(vc))*confidencePerChar),
				})
				break
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp < matches[j].Timestamp
	})
	return dedupe(matches)
}

// tokensFollow reports whether the remaining tokens of a multi-word
// variant appear consecutively after position i.
func tokensFollow(cleaned []string, i int, parts []string) bool {
	for j := 1; j < len(parts); j++ {
		if i+j >= len(cleaned) || cleaned[i+j] != parts[j] {
			return false
		}
	}
	return true
}

type dupKey struct {
	typ string
	ts  float64
}

func dedupe(matches []Match) []Match {
	seen := make(map[dupKey]bool, len(matches))
	unique := matches[:0]
	for _, m := range matches {
		key := dupKey{m.Type, math.Round(m.Timestamp/duplicateWindow) * duplicateWindow}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, m)
	}
	return unique
}

// cleanText lowercases a token and strips surrounding whitespace and
// punctuation, mirroring how transcribed words are normalized.
func cleanText(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), `.,!?;:'"`)
}
