// Package storage is blob storage for audio archives. The event store
// offloads audio segments here when they exceed its inline threshold,
// and the CLI export path reads them back.
//
// Keys are forward-slash separated paths relative to the store root.
package storage

import (
	"context"
	"io"
)

// Store is a minimal blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get opens the named blob for reading. The caller closes the
	// returned reader. A missing blob is an error wrapping
	// os.ErrNotExist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put opens the named blob for writing, truncating any existing
	// content. The write is not durable until the returned writer is
	// closed; Close reports the final error.
	Put(ctx context.Context, key string) (io.WriteCloser, error)

	// Delete removes the named blob. Deleting an absent blob is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the named blob exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// WriteAll stores data under key in one call.
func WriteAll(ctx context.Context, s Store, key string, data []byte) error {
	w, err := s.Put(ctx, key)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadAll retrieves the full content of key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	r, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
