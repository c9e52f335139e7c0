package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/classify"
	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

var countNames = []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}

// countedWords returns n counted beats starting at time zero, interval
// seconds apart.
func countedWords(n int, interval float64) []transcribe.Word {
	words := make([]transcribe.Word, n)
	for i := range words {
		start := float64(i) * interval
		words[i] = transcribe.Word{Word: countNames[i%8], Start: start, End: start + 0.1}
	}
	return words
}

// countedClassification labels the same words as numbered beats.
func countedClassification(words []transcribe.Word) []markers.ClassifiedWord {
	cws := make([]markers.ClassifiedWord, len(words))
	for i, w := range words {
		cws[i] = markers.ClassifiedWord{Word: w.Word, Kind: markers.Beat, BeatNumber: i%8 + 1}
	}
	return cws
}

func stubTranscriber(words []transcribe.Word) transcribe.Transcriber {
	return transcribe.TranscriberFunc(func(context.Context, []int16) ([]transcribe.Word, error) {
		return words, nil
	})
}

func stubClassifier(c *classify.Classification) classify.Classifier {
	return classify.ClassifierFunc(func(context.Context, classify.Request) (*classify.Classification, error) {
		return c, nil
	})
}

func TestAnalyzeFullPipeline(t *testing.T) {
	words := countedWords(8, 0.5)
	classification := &classify.Classification{
		Words: countedClassification(words),
		Exercise: &classify.ExerciseReading{
			Type: "tendu", DisplayName: "Tendu", Confidence: 0.92,
			Reasoning: "the teacher announces tendus",
		},
		Meter:   &rhythm.Meter{BeatsPerMeasure: 4, BeatUnit: 4},
		Quality: &classify.Quality{Descriptors: []string{"sharp"}},
	}
	a := New(stubTranscriber(words), WithClassifier(stubClassifier(classification)))

	p, err := a.Analyze(context.Background(), pcm.Silence(16000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if p.Tempo == nil || p.Tempo.BPM != 120 {
		t.Errorf("Tempo = %+v, want 120 BPM", p.Tempo)
	}
	if len(p.Markers) != 8 {
		t.Fatalf("len(Markers) = %d, want 8", len(p.Markers))
	}
	if p.Markers[2].Timestamp != 1.0 || p.Markers[2].BeatNumber != 3 {
		t.Errorf("Markers[2] = %+v", p.Markers[2])
	}
	if p.NormalizedTempo == nil || p.NormalizedTempo.BPM != 120 || p.NormalizedTempo.TempoMultiplier != 1 {
		t.Errorf("NormalizedTempo = %+v", p.NormalizedTempo)
	}
	if p.NormalizedBPM != 120 || p.TempoMultiplier != 1 {
		t.Errorf("flat fields = %v/%v", p.NormalizedBPM, p.TempoMultiplier)
	}
	if p.Meter == nil || *p.Meter != (rhythm.Meter{BeatsPerMeasure: 4, BeatUnit: 4}) {
		t.Errorf("Meter = %+v", p.Meter)
	}
	if p.Exercise == nil || p.Exercise.Type != "tendu" {
		t.Errorf("Exercise = %+v", p.Exercise)
	}
	if len(p.Exercise.Matches) != 1 || p.Exercise.Matches[0].MatchedText != "the teacher announces tendus" {
		t.Errorf("Exercise.Matches = %+v", p.Exercise.Matches)
	}
	if p.Quality == nil || len(p.Quality.Descriptors) != 1 {
		t.Errorf("Quality = %+v", p.Quality)
	}
	if p.Subdivision.Type != rhythm.SubdivisionNone {
		t.Errorf("Subdivision = %+v", p.Subdivision)
	}
	if len(p.Words) != 8 {
		t.Errorf("len(Words) = %d", len(p.Words))
	}
}

func TestAnalyzeTranscriberError(t *testing.T) {
	boom := errors.New("sidecar down")
	tr := transcribe.TranscriberFunc(func(context.Context, []int16) ([]transcribe.Word, error) {
		return nil, boom
	})
	a := New(tr)
	if _, err := a.Analyze(context.Background(), pcm.Silence(1600)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped sidecar error", err)
	}
}

func TestAnalyzeClassifierFailureDegrades(t *testing.T) {
	words := countedWords(8, 0.5)
	failing := classify.ClassifierFunc(func(context.Context, classify.Request) (*classify.Classification, error) {
		return nil, errors.New("model offline")
	})
	a := New(stubTranscriber(words), WithClassifier(failing))

	p, err := a.Analyze(context.Background(), pcm.Silence(16000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.Tempo != nil {
		t.Errorf("Tempo = %+v, want nil in degraded reading", p.Tempo)
	}
	if len(p.Markers) != 0 {
		t.Errorf("Markers = %+v, want none", p.Markers)
	}
	if p.OnsetTempo == nil {
		t.Error("OnsetTempo missing; onset analysis should survive")
	}
	if p.Quality != nil || p.Structure != nil {
		t.Errorf("classifier sections present: %+v / %+v", p.Quality, p.Structure)
	}
	if len(p.Words) != 8 {
		t.Errorf("len(Words) = %d", len(p.Words))
	}
}

func TestAnalyzeWithoutClassifierUsesLexicon(t *testing.T) {
	words := []transcribe.Word{
		{Word: "one", Start: 0.0}, {Word: "and", Start: 0.25},
		{Word: "two", Start: 0.5}, {Word: "and", Start: 0.75},
		{Word: "three", Start: 1.0}, {Word: "and", Start: 1.25},
		{Word: "four", Start: 1.5},
	}
	a := New(stubTranscriber(words))

	p, err := a.Analyze(context.Background(), pcm.Silence(16000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(p.Markers) != 7 {
		t.Fatalf("len(Markers) = %d, want 7", len(p.Markers))
	}
	if p.Tempo == nil || p.Tempo.BPM != 120 {
		t.Errorf("Tempo = %+v, want 120 BPM from lexicon beats", p.Tempo)
	}
	if p.Subdivision.Type != rhythm.SubdivisionDuple {
		t.Errorf("Subdivision = %+v, want duple", p.Subdivision)
	}
	if p.NormalizedBPM != 120 {
		t.Errorf("NormalizedBPM = %v", p.NormalizedBPM)
	}
}

func TestAnalyzeWords(t *testing.T) {
	words := []transcribe.Word{
		{Word: "plié", Start: 0.2, End: 0.6},
		{Word: "one", Start: 1.0}, {Word: "two", Start: 1.5},
		{Word: "three", Start: 2.0}, {Word: "four", Start: 2.5},
	}
	tr := transcribe.TranscriberFunc(func(context.Context, []int16) ([]transcribe.Word, error) {
		t.Fatal("AnalyzeWords must not transcribe")
		return nil, nil
	})
	p := New(tr).AnalyzeWords(words)

	if p.Tempo == nil || p.Tempo.BPM != 120 {
		t.Errorf("Tempo = %+v", p.Tempo)
	}
	if len(p.Markers) != 4 {
		t.Errorf("len(Markers) = %d, want 4 lexicon beats", len(p.Markers))
	}
	if p.Exercise == nil || p.Exercise.Type != "plie" {
		t.Errorf("Exercise = %+v, want catalog plie", p.Exercise)
	}
	if p.Exercise != nil && p.Exercise.Confidence != 0.7 {
		t.Errorf("Exercise.Confidence = %v, want 0.7", p.Exercise.Confidence)
	}
}

func TestAnalyzeEventReusesOnset(t *testing.T) {
	words := countedWords(8, 0.5)
	onset := &rhythm.OnsetTempoResult{BPM: 123, Confidence: 0.9}
	samples := pcm.Silence(trigger.ChunkSamples)

	var gotHint float64
	capture := classify.ClassifierFunc(func(_ context.Context, req classify.Request) (*classify.Classification, error) {
		gotHint = req.BPMHint
		return &classify.Classification{Words: countedClassification(words)}, nil
	})
	tr := transcribe.TranscriberFunc(func(context.Context, []int16) ([]transcribe.Word, error) {
		t.Fatal("AnalyzeEvent must not transcribe")
		return nil, nil
	})
	a := New(tr, WithClassifier(capture))

	ev := &trigger.Event{
		Audio:      pcm.Bytes(samples),
		Words:      words,
		OnsetTempo: onset,
		Timestamp:  12.5,
	}
	p := a.AnalyzeEvent(context.Background(), ev)

	if gotHint != 123 {
		t.Errorf("BPMHint = %v, want the event's onset BPM", gotHint)
	}
	if p.OnsetTempo != onset {
		t.Error("OnsetTempo recomputed instead of reused")
	}
	if p.Tempo == nil || p.Tempo.BPM != 120 {
		t.Errorf("Tempo = %+v", p.Tempo)
	}
}

func TestAnalyzeMeterFollowsNormalized(t *testing.T) {
	// Beats one second apart: measure-level pulse, doubled into the
	// normal band. The normalized meter overrides the classifier hint.
	words := countedWords(4, 1.0)
	classification := &classify.Classification{
		Words: countedClassification(words),
		Meter: &rhythm.Meter{BeatsPerMeasure: 3, BeatUnit: 4},
	}
	a := New(stubTranscriber(words), WithClassifier(stubClassifier(classification)))

	p, err := a.Analyze(context.Background(), pcm.Silence(16000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.TempoMultiplier != 2 || p.NormalizedBPM != 120 {
		t.Fatalf("normalized = %v x%v, want 120 x2", p.NormalizedBPM, p.TempoMultiplier)
	}
	if p.Meter == nil || p.Meter.BeatsPerMeasure != 4 {
		t.Errorf("Meter = %+v, want 4/4 override", p.Meter)
	}
}

func TestAnalyzeEmptyTranscription(t *testing.T) {
	a := New(stubTranscriber(nil))
	p, err := a.Analyze(context.Background(), pcm.Silence(1600))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.Tempo != nil || p.OnsetTempo != nil || p.NormalizedTempo != nil {
		t.Errorf("tempo fields from empty transcription: %+v", p)
	}
	if p.Exercise != nil {
		t.Errorf("Exercise = %+v", p.Exercise)
	}
	if p.Subdivision.Type != rhythm.SubdivisionNone || p.Subdivision.Confidence != 1.0 {
		t.Errorf("Subdivision = %+v", p.Subdivision)
	}
}

func TestNewPanicsWithoutTranscriber(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(nil)
}
