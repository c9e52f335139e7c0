// Package events is the durable archive of fired trigger events. Each
// record keeps the trigger's transcription and onset tempo alongside
// the audio segment, msgpack-encoded in the key-value store; audio
// above an inline threshold is offloaded to blob storage. A blake3
// content hash deduplicates repeated appends of the same take.
package events

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"

	"github.com/ben-juodvalkis/musical-perception/pkg/kv"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/storage"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("events: not found")

// DefaultInlineLimit is the largest audio payload stored inside the
// record itself when a blob store is configured. 256KiB holds about 8
// seconds of 16-bit 16kHz mono audio.
const DefaultInlineLimit = 256 << 10

// Record is one archived trigger event.
type Record struct {
	ID     string `json:"id" msgpack:"id"`
	Stream string `json:"stream" msgpack:"stream"`

	// CreatedAt is the wall-clock append time.
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`

	// Timestamp is the stream time at which the trigger fired.
	Timestamp float64 `json:"timestamp" msgpack:"timestamp"`

	Words      []transcribe.Word        `json:"words" msgpack:"words"`
	OnsetTempo *rhythm.OnsetTempoResult `json:"onset_tempo,omitempty" msgpack:"onset_tempo,omitempty"`

	// AudioHash is the hex blake3 hash of the audio segment.
	AudioHash string `json:"audio_hash" msgpack:"audio_hash"`
	AudioSize int    `json:"audio_size" msgpack:"audio_size"`

	// Audio is the segment when stored inline, nil when offloaded.
	Audio []byte `json:"-" msgpack:"audio,omitempty"`

	// AudioKey is the blob storage key when the segment was offloaded.
	AudioKey string `json:"audio_key,omitempty" msgpack:"audio_key,omitempty"`
}

// Store archives trigger events on a key-value store.
type Store struct {
	kv          kv.Store
	blobs       storage.Store
	inlineLimit int
}

// Option configures a Store.
type Option func(*Store)

// WithBlobStore offloads audio payloads above the inline limit.
// Without one, audio is always stored inline.
func WithBlobStore(s storage.Store) Option {
	return func(st *Store) {
		st.blobs = s
	}
}

// WithInlineLimit overrides DefaultInlineLimit. Ignored without a blob
// store.
func WithInlineLimit(n int) Option {
	return func(st *Store) {
		if n > 0 {
			st.inlineLimit = n
		}
	}
}

// New creates an event store over a key-value store.
func New(kvStore kv.Store, opts ...Option) *Store {
	if kvStore == nil {
		panic("events: nil kv store")
	}
	s := &Store{
		kv:          kvStore,
		inlineLimit: DefaultInlineLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append archives a fired event under the named stream. Appending
// audio already archived in the stream returns the existing record
// instead of writing a duplicate.
func (s *Store) Append(ctx context.Context, stream string, ev *trigger.Event) (*Record, error) {
	if err := ValidateStream(stream); err != nil {
		return nil, err
	}
	if ev == nil {
		panic("events: nil event")
	}

	sum := blake3.Sum256(ev.Audio)
	hash := hex.EncodeToString(sum[:])

	if id, err := s.lookupHash(ctx, stream, hash); err != nil {
		return nil, err
	} else if id != "" {
		slog.Debug("events: duplicate audio", "stream", stream, "id", id, "hash", hash)
		return s.Get(ctx, stream, id)
	}

	uid, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new id: %w", err)
	}
	rec := &Record{
		ID:         uid.String(),
		Stream:     stream,
		CreatedAt:  time.Now().UTC(),
		Timestamp:  ev.Timestamp,
		Words:      ev.Words,
		OnsetTempo: ev.OnsetTempo,
		AudioHash:  hash,
		AudioSize:  len(ev.Audio),
	}

	if s.blobs != nil && len(ev.Audio) > s.inlineLimit {
		rec.AudioKey = blobKey(stream, rec.ID)
		if err := storage.WriteAll(ctx, s.blobs, rec.AudioKey, ev.Audio); err != nil {
			return nil, fmt.Errorf("offload audio: %w", err)
		}
	} else {
		rec.Audio = ev.Audio
	}

	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	err = s.kv.BatchSet(ctx, []kv.Entry{
		{Key: eventKey(stream, rec.ID), Value: data},
		{Key: hashKey(stream, hash), Value: []byte(rec.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}
	slog.Debug("events: appended", "stream", stream, "id", rec.ID,
		"audio_bytes", rec.AudioSize, "offloaded", rec.AudioKey != "")
	return rec, nil
}

// Get retrieves one record. The audio payload is returned as stored;
// use Audio to resolve offloaded segments.
func (s *Store) Get(ctx context.Context, stream, id string) (*Record, error) {
	if err := ValidateStream(stream); err != nil {
		return nil, err
	}
	data, err := s.kv.Get(ctx, eventKey(stream, id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// Audio returns the record's audio segment, fetching it from blob
// storage when offloaded.
func (s *Store) Audio(ctx context.Context, rec *Record) ([]byte, error) {
	if rec.AudioKey == "" {
		return rec.Audio, nil
	}
	if s.blobs == nil {
		return nil, errors.New("events: record offloaded but no blob store configured")
	}
	return storage.ReadAll(ctx, s.blobs, rec.AudioKey)
}

// List iterates the records of one stream in append order, or of all
// streams when stream is empty.
func (s *Store) List(ctx context.Context, stream string) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		if stream != "" {
			if err := ValidateStream(stream); err != nil {
				yield(nil, err)
				return
			}
		}
		for entry, err := range s.kv.List(ctx, streamPrefix(stream)) {
			if err != nil {
				yield(nil, err)
				return
			}
			rec, err := decodeRecord(entry.Value)
			if err != nil {
				if !yield(nil, fmt.Errorf("record %s: %w", entry.Key, err)) {
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Delete removes a record, its hash index entry, and any offloaded
// audio. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, stream, id string) error {
	rec, err := s.Get(ctx, stream, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	keys := []kv.Key{eventKey(stream, id), hashKey(stream, rec.AudioHash)}
	if err := s.kv.BatchDelete(ctx, keys); err != nil {
		return err
	}
	if rec.AudioKey != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, rec.AudioKey); err != nil {
			return fmt.Errorf("delete audio blob: %w", err)
		}
	}
	return nil
}

// Prune keeps the newest keep records of a stream and deletes the
// rest, returning how many were removed.
func (s *Store) Prune(ctx context.Context, stream string, keep int) (int, error) {
	if err := ValidateStream(stream); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	var ids []string
	for rec, err := range s.List(ctx, stream) {
		if err != nil {
			return 0, err
		}
		ids = append(ids, rec.ID)
	}
	if len(ids) <= keep {
		return 0, nil
	}

	doomed := ids[:len(ids)-keep]
	for _, id := range doomed {
		if err := s.Delete(ctx, stream, id); err != nil {
			return 0, err
		}
	}
	slog.Debug("events: pruned", "stream", stream, "removed", len(doomed), "kept", keep)
	return len(doomed), nil
}

// lookupHash resolves an audio hash to an existing record ID, "" when
// unseen.
func (s *Store) lookupHash(ctx context.Context, stream, hash string) (string, error) {
	id, err := s.kv.Get(ctx, hashKey(stream, hash))
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(id), nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// ValidateStream rejects stream names the key encoding cannot carry.
// Ingest endpoints apply the same rule before accepting a connection.
func ValidateStream(stream string) error {
	if stream == "" || strings.ContainsRune(stream, rune(kv.DefaultSeparator)) {
		return fmt.Errorf("events: invalid stream name %q", stream)
	}
	return nil
}

func blobKey(stream, id string) string {
	return stream + "/" + id + ".pcm"
}
