// Package storage provides the whole-document persistence port used by the
// pipeline: load an entire JSON document, mutate it in memory, save it back.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document exists for the key.
// Callers treat it as "start from empty".
var ErrNotFound = errors.New("document not found")

// Store is the whole-document persistence contract. Implementations
// serialize values as JSON; Load unmarshals the stored document into v.
// There are no partial or incremental writes.
type Store interface {
	// Load reads the document for key into v. Returns ErrNotFound when the
	// document does not exist.
	Load(ctx context.Context, key string, v any) error
	// Save serializes v and replaces the document for key.
	Save(ctx context.Context, key string, v any) error
	// Delete removes the document for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
	// Keys lists the keys of all stored documents.
	Keys(ctx context.Context) ([]string, error)
}
