package trigger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/wake"
)

func silentChunk() []int16 {
	return make([]int16, ChunkSamples)
}

var neverWake = wake.ScorerFunc(func(chunk []int16) map[string]float64 {
	return map[string]float64{"stub": 0.0}
})

var alwaysWake = wake.ScorerFunc(func(chunk []int16) map[string]float64 {
	return map[string]float64{"stub": 0.9}
})

// onceWake wakes on the first chunk only, so later idle chunks stay
// idle.
func onceWake() wake.Scorer {
	fired := false
	return wake.ScorerFunc(func(chunk []int16) map[string]float64 {
		if fired {
			return map[string]float64{"stub": 0.0}
		}
		fired = true
		return map[string]float64{"stub": 0.9}
	})
}

// rhythmicWords counts one through twelve at 120 BPM.
func rhythmicWords() []transcribe.Word {
	words := make([]transcribe.Word, 12)
	for i := range words {
		start := float64(i) * 0.5
		words[i] = transcribe.Word{Word: fmt.Sprint(i + 1), Start: start, End: start + 0.1}
	}
	return words
}

// irregularWords is conversational speech with no steady pulse.
func irregularWords() []transcribe.Word {
	return []transcribe.Word{
		{Word: "so", Start: 0.0, End: 0.2},
		{Word: "we're", Start: 0.3, End: 0.5},
		{Word: "going", Start: 0.6, End: 0.8},
		{Word: "to", Start: 2.5, End: 2.6},
		{Word: "do", Start: 2.7, End: 2.9},
		{Word: "tendus", Start: 4.5, End: 5.0},
		{Word: "and", Start: 7.0, End: 7.1},
		{Word: "then", Start: 7.2, End: 7.4},
	}
}

func transcribing(words []transcribe.Word) transcribe.Transcriber {
	return transcribe.TranscriberFunc(func(ctx context.Context, samples []int16) ([]transcribe.Word, error) {
		return words, nil
	})
}

func TestStartsIdle(t *testing.T) {
	trig := New(neverWake, transcribing(nil))
	if trig.State() != StateIdle {
		t.Fatalf("State = %v, want idle", trig.State())
	}
}

func TestIdleWithoutWake(t *testing.T) {
	trig := New(neverWake, transcribing(nil))

	event, err := trig.Feed(context.Background(), silentChunk(), 0.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted without wake")
	}
	if trig.State() != StateIdle {
		t.Errorf("State = %v, want idle", trig.State())
	}
}

func TestWakeTransitionsToListening(t *testing.T) {
	trig := New(alwaysWake, transcribing(nil))

	event, err := trig.Feed(context.Background(), silentChunk(), 0.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted on wake transition")
	}
	if trig.State() != StateListening {
		t.Errorf("State = %v, want listening", trig.State())
	}
}

func TestRhythmFiresEvent(t *testing.T) {
	trig := New(onceWake(), transcribing(rhythmicWords()),
		WithRhythmCheckInterval(0))

	ctx := context.Background()
	if _, err := trig.Feed(ctx, silentChunk(), 0.0); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if trig.State() != StateListening {
		t.Fatalf("State = %v, want listening after wake", trig.State())
	}

	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event == nil {
		t.Fatal("no event for rhythmic speech")
	}
	if len(event.Words) != 12 {
		t.Errorf("len(Words) = %d, want 12", len(event.Words))
	}
	if event.OnsetTempo == nil {
		t.Fatal("event has no onset tempo")
	}
	if event.OnsetTempo.Confidence < DefaultRhythmConfidenceThreshold {
		t.Errorf("Confidence = %v, want >= %v",
			event.OnsetTempo.Confidence, DefaultRhythmConfidenceThreshold)
	}
	if event.Timestamp != 1.0 {
		t.Errorf("Timestamp = %v, want 1.0", event.Timestamp)
	}
	if trig.State() != StateIdle {
		t.Errorf("State = %v, want idle after firing", trig.State())
	}
}

func TestPostWakeTimeout(t *testing.T) {
	trig := New(onceWake(), transcribing(irregularWords()),
		WithPostWakeTimeout(5.0), WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)
	if trig.State() != StateListening {
		t.Fatalf("State = %v, want listening", trig.State())
	}

	event, err := trig.Feed(ctx, silentChunk(), 6.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted on timeout")
	}
	if trig.State() != StateIdle {
		t.Errorf("State = %v, want idle after timeout", trig.State())
	}
}

func TestIrregularSpeechKeepsListening(t *testing.T) {
	trig := New(onceWake(), transcribing(irregularWords()),
		WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)

	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted for irregular speech")
	}
	if trig.State() != StateListening {
		t.Errorf("State = %v, want listening", trig.State())
	}
}

func TestEmptyTranscriptionKeepsListening(t *testing.T) {
	trig := New(onceWake(), transcribing(nil), WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)

	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted for empty transcription")
	}
	if trig.State() != StateListening {
		t.Errorf("State = %v, want listening", trig.State())
	}
}

func TestMultipleCycles(t *testing.T) {
	trig := New(alwaysWake, transcribing(rhythmicWords()),
		WithRhythmCheckInterval(0))

	ctx := context.Background()
	for cycle := range 2 {
		base := float64(cycle) * 2
		trig.Feed(ctx, silentChunk(), base)
		if trig.State() != StateListening {
			t.Fatalf("cycle %d: State = %v, want listening", cycle, trig.State())
		}
		event, err := trig.Feed(ctx, silentChunk(), base+1)
		if err != nil {
			t.Fatalf("cycle %d: Feed: %v", cycle, err)
		}
		if event == nil {
			t.Fatalf("cycle %d: no event", cycle)
		}
		if trig.State() != StateIdle {
			t.Fatalf("cycle %d: State = %v, want idle", cycle, trig.State())
		}
	}
}

func TestBufferOverflowResets(t *testing.T) {
	trig := New(onceWake(), transcribing(nil),
		WithBufferSeconds(0.1), WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)
	if trig.State() != StateListening {
		t.Fatal("wake did not transition")
	}

	// One 80ms chunk is under the 100ms cap.
	trig.Feed(ctx, silentChunk(), 0.08)
	if trig.State() != StateListening {
		t.Fatalf("State = %v, want listening under cap", trig.State())
	}

	// The second chunk pushes 160ms past the cap.
	event, err := trig.Feed(ctx, silentChunk(), 0.16)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("event emitted on overflow")
	}
	if trig.State() != StateIdle {
		t.Errorf("State = %v, want idle after overflow", trig.State())
	}
}

func TestManualReset(t *testing.T) {
	trig := New(alwaysWake, transcribing(nil))

	trig.Feed(context.Background(), silentChunk(), 0.0)
	if trig.State() != StateListening {
		t.Fatal("wake did not transition")
	}

	trig.Reset()
	if trig.State() != StateIdle {
		t.Errorf("State = %v, want idle after Reset", trig.State())
	}
}

func TestWakeThreshold(t *testing.T) {
	lowScore := wake.ScorerFunc(func(chunk []int16) map[string]float64 {
		return map[string]float64{"stub": 0.3}
	})

	strict := New(lowScore, transcribing(nil))
	strict.Feed(context.Background(), silentChunk(), 0.0)
	if strict.State() != StateIdle {
		t.Errorf("score 0.3 woke the default threshold")
	}

	lenient := New(lowScore, transcribing(nil), WithWakeThreshold(0.2))
	lenient.Feed(context.Background(), silentChunk(), 0.0)
	if lenient.State() != StateListening {
		t.Errorf("score 0.3 did not wake threshold 0.2")
	}
}

func TestRhythmCheckThrottle(t *testing.T) {
	calls := 0
	counting := transcribe.TranscriberFunc(func(ctx context.Context, samples []int16) ([]transcribe.Word, error) {
		calls++
		return rhythmicWords(), nil
	})
	trig := New(onceWake(), counting, WithRhythmCheckInterval(5.0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)

	trig.Feed(ctx, silentChunk(), 1.0)
	if calls != 0 {
		t.Fatalf("transcribed %d times inside the interval, want 0", calls)
	}

	event, err := trig.Feed(ctx, silentChunk(), 5.1)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if calls != 1 {
		t.Errorf("transcribe calls = %d, want 1", calls)
	}
	if event == nil {
		t.Error("no event after the interval elapsed")
	}
}

func TestEventCarriesBufferedAudio(t *testing.T) {
	trig := New(onceWake(), transcribing(rhythmicWords()),
		WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)
	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event == nil {
		t.Fatal("no event")
	}

	// Only the listening chunk is buffered; the waking chunk is not.
	if want := ChunkSamples * 2; len(event.Audio) != want {
		t.Errorf("len(Audio) = %d, want %d", len(event.Audio), want)
	}
}

func TestTranscriberErrorPropagates(t *testing.T) {
	failing := transcribe.TranscriberFunc(func(ctx context.Context, samples []int16) ([]transcribe.Word, error) {
		return nil, errors.New("asr unreachable")
	})
	trig := New(onceWake(), failing, WithRhythmCheckInterval(0))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)

	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err == nil {
		t.Fatal("expected transcriber error")
	}
	if event != nil {
		t.Error("event emitted alongside error")
	}
	if trig.State() != StateListening {
		t.Errorf("State = %v, want listening after error", trig.State())
	}
}

func TestWithDetector(t *testing.T) {
	// A detector demanding ten words per window never confirms the
	// twelve-word fixture inside a 3s window.
	cfg := rhythm.DefaultConfig()
	cfg.MinWords = 10
	trig := New(onceWake(), transcribing(rhythmicWords()),
		WithRhythmCheckInterval(0), WithDetector(rhythm.NewDetector(cfg)))

	ctx := context.Background()
	trig.Feed(ctx, silentChunk(), 0.0)
	event, err := trig.Feed(ctx, silentChunk(), 1.0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if event != nil {
		t.Error("strict detector still fired")
	}
}
