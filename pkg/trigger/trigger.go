// Package trigger decides when buffered audio is worth full analysis.
//
// Trigger is a two-state machine fed 80ms chunks of 16-bit 16kHz mono
// audio. In the idle state it watches a wake scorer; a wake raises the
// listening state, which buffers audio and periodically transcribes it
// looking for rhythmic speech. Confirmed rhythm emits an Event carrying
// the buffered audio and returns to idle.
//
// A Trigger is not safe for concurrent use. Callers feeding audio from
// a capture goroutine must serialize Feed themselves.
package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/wake"
)

// ChunkSamples is the expected chunk length: 80ms at 16kHz.
const ChunkSamples = 1280

// Defaults for the trigger thresholds and timing.
const (
	DefaultWakeThreshold             = 0.5
	DefaultRhythmConfidenceThreshold = 0.3
	DefaultBufferSeconds             = 30.0
	DefaultPostWakeTimeout           = 60.0
	DefaultRhythmCheckInterval       = 3.0
)

// State is the trigger's position in its cycle.
type State int

const (
	// StateIdle waits for a wake score above the threshold.
	StateIdle State = iota
	// StateListening buffers audio and checks it for rhythm.
	StateListening
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is emitted when rhythmic speech is confirmed. It carries
// everything downstream analysis needs, so the caller can release the
// live audio stream immediately.
type Event struct {
	// Audio is the buffered segment as 16-bit little-endian PCM at 16kHz.
	Audio      []byte                   `json:"audio_segment"`
	Words      []transcribe.Word        `json:"words"`
	OnsetTempo *rhythm.OnsetTempoResult `json:"onset_tempo"`
	// Timestamp is the stream time at which the trigger fired.
	Timestamp float64 `json:"timestamp"`
}

// Trigger gates analysis behind wake detection plus rhythm
// confirmation.
type Trigger struct {
	scorer      wake.Scorer
	transcriber transcribe.Transcriber
	detector    *rhythm.Detector

	wakeThreshold   float64
	rhythmThreshold float64
	bufferSeconds   float64
	postWakeTimeout float64
	checkInterval   float64

	state           State
	wakeTimestamp   float64
	buf             []int16
	bufferedSeconds float64
	lastRhythmCheck float64
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithWakeThreshold sets the score at or above which a wake is
// accepted (default 0.5). Must be positive.
func WithWakeThreshold(v float64) Option {
	return func(t *Trigger) {
		if v > 0 {
			t.wakeThreshold = v
		}
	}
}

// WithRhythmConfidenceThreshold sets the minimum onset tempo confidence
// that fires an event (default 0.3). Must be positive.
func WithRhythmConfidenceThreshold(v float64) Option {
	return func(t *Trigger) {
		if v > 0 {
			t.rhythmThreshold = v
		}
	}
}

// WithBufferSeconds caps how much audio accumulates while listening
// (default 30). Exceeding the cap abandons the episode.
func WithBufferSeconds(v float64) Option {
	return func(t *Trigger) {
		if v > 0 {
			t.bufferSeconds = v
		}
	}
}

// WithPostWakeTimeout sets how long after a wake the trigger keeps
// listening without confirmed rhythm (default 60s).
func WithPostWakeTimeout(v float64) Option {
	return func(t *Trigger) {
		if v > 0 {
			t.postWakeTimeout = v
		}
	}
}

// WithRhythmCheckInterval sets the minimum stream time between
// transcription attempts while listening (default 3s). Zero checks on
// every chunk.
func WithRhythmCheckInterval(v float64) Option {
	return func(t *Trigger) {
		if v >= 0 {
			t.checkInterval = v
		}
	}
}

// WithDetector replaces the onset rhythm detector used to confirm
// rhythmic speech.
func WithDetector(d *rhythm.Detector) Option {
	return func(t *Trigger) {
		if d != nil {
			t.detector = d
		}
	}
}

// New creates a Trigger in the idle state. The scorer and transcriber
// are required.
func New(scorer wake.Scorer, transcriber transcribe.Transcriber, opts ...Option) *Trigger {
	if scorer == nil {
		panic("trigger: nil scorer")
	}
	if transcriber == nil {
		panic("trigger: nil transcriber")
	}
	t := &Trigger{
		scorer:          scorer,
		transcriber:     transcriber,
		detector:        rhythm.NewDetector(rhythm.DefaultConfig()),
		wakeThreshold:   DefaultWakeThreshold,
		rhythmThreshold: DefaultRhythmConfidenceThreshold,
		bufferSeconds:   DefaultBufferSeconds,
		postWakeTimeout: DefaultPostWakeTimeout,
		checkInterval:   DefaultRhythmCheckInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current state.
func (t *Trigger) State() State {
	return t.state
}

// Reset returns to idle and discards any buffered audio.
func (t *Trigger) Reset() {
	t.state = StateIdle
	t.buf = t.buf[:0]
	t.bufferedSeconds = 0
	t.wakeTimestamp = 0
	t.lastRhythmCheck = 0
}

// Feed advances the state machine with one audio chunk. Timestamps are
// stream time in seconds and must not decrease between calls. The
// returned Event is non-nil only when rhythm was just confirmed; a nil
// Event with nil error means keep feeding. Errors come from the
// transcriber and leave the trigger listening with its buffer intact.
func (t *Trigger) Feed(ctx context.Context, chunk []int16, timestamp float64) (*Event, error) {
	if t.state == StateIdle {
		t.handleIdle(chunk, timestamp)
		return nil, nil
	}
	return t.handleListening(ctx, chunk, timestamp)
}

// handleIdle watches for a wake. The waking chunk itself is not
// buffered.
func (t *Trigger) handleIdle(chunk []int16, timestamp float64) {
	for name, score := range t.scorer.Score(chunk) {
		if score < t.wakeThreshold {
			continue
		}
		slog.Debug("trigger: wake detected",
			"detector", name, "score", score, "timestamp", timestamp)
		t.state = StateListening
		t.wakeTimestamp = timestamp
		t.buf = t.buf[:0]
		t.bufferedSeconds = 0
		t.lastRhythmCheck = timestamp
		return
	}
}

func (t *Trigger) handleListening(ctx context.Context, chunk []int16, timestamp float64) (*Event, error) {
	t.buf = append(t.buf, chunk...)
	t.bufferedSeconds += pcm.L16Mono16K.Seconds(len(chunk))

	if elapsed := timestamp - t.wakeTimestamp; elapsed > t.postWakeTimeout {
		slog.Debug("trigger: gave up waiting for rhythm", "elapsed", elapsed)
		t.Reset()
		return nil, nil
	}
	if t.bufferedSeconds > t.bufferSeconds {
		slog.Debug("trigger: buffer overflow", "buffered", t.bufferedSeconds)
		t.Reset()
		return nil, nil
	}
	if timestamp-t.lastRhythmCheck < t.checkInterval {
		return nil, nil
	}
	t.lastRhythmCheck = timestamp

	words, err := t.transcriber.Transcribe(ctx, t.buf)
	if err != nil {
		return nil, fmt.Errorf("transcribe buffered audio: %w", err)
	}
	if len(words) == 0 {
		return nil, nil
	}

	onset := t.detector.Detect(words)
	if onset == nil || onset.Confidence < t.rhythmThreshold {
		return nil, nil
	}

	slog.Debug("trigger: rhythm confirmed",
		"bpm", onset.BPM, "confidence", onset.Confidence, "words", len(words))
	event := &Event{
		Audio:      pcm.Bytes(t.buf),
		Words:      words,
		OnsetTempo: onset,
		Timestamp:  timestamp,
	}
	t.Reset()
	return event, nil
}
