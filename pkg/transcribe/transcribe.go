// Package transcribe turns spoken audio into word-level timestamps.
//
// A Transcriber takes 16 kHz mono PCM samples and returns the words it
// heard, each with a start and end offset in seconds from the beginning
// of the audio. Words are normalized to lowercase with surrounding
// whitespace removed, so downstream consumers can match on text without
// caring about the transcription backend's formatting.
//
// The package ships an HTTP Client for whisper-style transcription
// services; anything else can plug in through TranscriberFunc.
package transcribe

import "context"

// Word is a single transcribed word with its time span in seconds
// relative to the start of the audio.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the span of the word in seconds.
func (w Word) Duration() float64 {
	return w.End - w.Start
}

// Transcriber produces word-level timestamps for 16 kHz mono PCM audio.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) ([]Word, error)
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, samples []int16) ([]Word, error)

// Transcribe calls f(ctx, samples).
func (f TranscriberFunc) Transcribe(ctx context.Context, samples []int16) ([]Word, error) {
	return f(ctx, samples)
}
