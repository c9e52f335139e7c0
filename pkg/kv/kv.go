// Package kv is a key-value store with hierarchical path keys, the
// persistence layer under the event store. Keys are string slices
// (e.g. ["events", "studio-a", "01J..."]) joined with a configurable
// separator for storage.
//
// The Badger implementation persists to disk; Memory backs tests.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path as a slice of segments. Segments must not
// contain the configured separator; encoding panics when one does.
type Key []string

// String joins the key with ':' for display and logs, regardless of
// the store's configured separator.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair, as listed and batch-written.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key, ErrNotFound when absent.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a value, overwriting any existing one.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error

	// List iterates entries whose key starts with the given prefix
	// segments, in lexicographic order of the encoded key. A nil
	// prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores multiple entries.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes multiple keys.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases the store's resources.
	Close() error
}

// DefaultSeparator joins key segments in encoded form.
const DefaultSeparator byte = ':'

// Options configures key encoding shared by all implementations.
type Options struct {
	// Separator overrides DefaultSeparator when non-zero.
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode joins key segments with the separator. Panics when a segment
// contains the separator, since such a key could never round-trip.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	for _, seg := range k {
		if strings.IndexByte(seg, s) >= 0 {
			panic(fmt.Sprintf("kv: key segment %q contains separator %q", seg, s))
		}
	}
	return []byte(strings.Join(k, string(s)))
}

// decode splits an encoded key back into segments.
func (o *Options) decode(b []byte) Key {
	return strings.Split(string(b), string(o.sep()))
}
