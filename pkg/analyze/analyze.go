// Package analyze orchestrates the full reading of one take. The
// transcriber owns timestamps, the classifier owns word roles, and the
// rhythm package reconciles their tempo signals into one coherent
// metric interpretation.
package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/classify"
	"github.com/ben-juodvalkis/musical-perception/pkg/exercise"
	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

// Analyzer runs the analysis pipeline over one take of audio.
type Analyzer struct {
	transcriber transcribe.Transcriber
	classifier  classify.Classifier
	detector    *rhythm.Detector
	catalog     *exercise.Catalog
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClassifier sets the classification collaborator. Without one,
// markers come from the built-in lexicon instead.
func WithClassifier(c classify.Classifier) Option {
	return func(a *Analyzer) {
		a.classifier = c
	}
}

// WithDetector overrides the onset tempo detector.
func WithDetector(d *rhythm.Detector) Option {
	return func(a *Analyzer) {
		if d != nil {
			a.detector = d
		}
	}
}

// WithCatalog overrides the exercise catalog used when the classifier
// offers no exercise reading.
func WithCatalog(c *exercise.Catalog) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.catalog = c
		}
	}
}

// New creates an Analyzer. The transcriber is required.
func New(t transcribe.Transcriber, opts ...Option) *Analyzer {
	if t == nil {
		panic("analyze: nil transcriber")
	}
	a := &Analyzer{
		transcriber: t,
		detector:    rhythm.NewDetector(rhythm.DefaultConfig()),
		catalog:     exercise.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze reads one take of 16-bit 16kHz mono PCM. Transcription
// failure is an error; classification failure degrades to an
// onset-only reading.
func (a *Analyzer) Analyze(ctx context.Context, samples []int16) (*MusicalParameters, error) {
	words, err := a.transcriber.Transcribe(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	onset := a.detector.Detect(words)
	return a.read(ctx, samples, words, onset), nil
}

// AnalyzeEvent reads a fired trigger event, reusing its transcription
// and onset tempo instead of recomputing them.
func (a *Analyzer) AnalyzeEvent(ctx context.Context, ev *trigger.Event) *MusicalParameters {
	if ev == nil {
		panic("analyze: nil event")
	}
	return a.read(ctx, pcm.Int16s(ev.Audio), ev.Words, ev.OnsetTempo)
}

// AnalyzeWords reads a take from an existing transcription without
// audio. No classifier runs; markers come from the built-in lexicon.
func (a *Analyzer) AnalyzeWords(words []transcribe.Word) *MusicalParameters {
	onset := a.detector.Detect(words)
	return a.assemble(words, markers.Extract(words), onset, nil)
}

func (a *Analyzer) read(ctx context.Context, samples []int16, words []transcribe.Word, onset *rhythm.OnsetTempoResult) *MusicalParameters {
	if a.classifier == nil {
		return a.assemble(words, markers.Extract(words), onset, nil)
	}

	req := classify.Request{Samples: samples, Words: words}
	if onset != nil {
		req.BPMHint = onset.BPM
	}
	c, err := a.classifier.Classify(ctx, req)
	if err != nil {
		// A lexicon fallback here could silently misread words the
		// collaborator was configured to judge, so the reading stays
		// onset-only.
		if cerr, ok := classify.AsError(err); ok && cerr.IsAuthError() {
			slog.Error("analyze: classifier credentials rejected", "backend", cerr.Backend, "status", cerr.Status)
		}
		slog.Warn("analyze: classification failed, continuing with onsets only", "error", err)
		return a.assemble(words, nil, onset, nil)
	}
	return a.assemble(words, markers.MergeClassified(c.Words, words), onset, c)
}

func (a *Analyzer) assemble(words []transcribe.Word, ms []markers.Marker, onset *rhythm.OnsetTempoResult, c *classify.Classification) *MusicalParameters {
	tempo := rhythm.EstimateTempo(markers.BeatTimestamps(ms))

	var meterHint *rhythm.Meter
	var subdivisionHint rhythm.Subdivision
	if c != nil {
		meterHint = c.Meter
		if c.CountingStructure != nil {
			subdivisionHint = c.CountingStructure.SubdivisionType
		}
	}
	normalized := rhythm.InterpretMeter(onset, tempo, meterHint, subdivisionHint)

	meter := meterHint
	var normalizedBPM float64
	var multiplier int
	if normalized != nil {
		m := normalized.Meter
		meter = &m
		normalizedBPM = normalized.BPM
		multiplier = normalized.TempoMultiplier
	}

	p := &MusicalParameters{
		Tempo:           tempo,
		OnsetTempo:      onset,
		NormalizedTempo: normalized,
		NormalizedBPM:   normalizedBPM,
		TempoMultiplier: multiplier,
		Subdivision:     rhythm.ClassifySubdivisions(ms),
		Meter:           meter,
		Exercise:        a.exerciseReading(words, c),
		Words:           words,
		Markers:         ms,
	}
	if c != nil {
		p.Quality = c.Quality
		p.Structure = c.Structure
	}
	return p
}

// exerciseReading prefers the classifier's identification, falling
// back to catalog keyword spotting over the transcript.
func (a *Analyzer) exerciseReading(words []transcribe.Word, c *classify.Classification) *exercise.Result {
	if c != nil && c.Exercise != nil {
		e := c.Exercise
		return &exercise.Result{
			Type:        e.Type,
			DisplayName: e.DisplayName,
			Confidence:  e.Confidence,
			Matches: []exercise.Match{{
				Type:        e.Type,
				DisplayName: e.DisplayName,
				MatchedText: e.Reasoning,
				Confidence:  e.Confidence,
			}},
		}
	}
	if len(words) == 0 {
		return nil
	}
	r := a.catalog.Detect(words, exercise.DefaultSearchWindow)
	if r.Type == "" {
		return nil
	}
	return &r
}
