// Package dnc maintains the Do Not Call registry: a persistent set of
// blocked phone numbers with the reason and source of each block.
package dnc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/phone"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

// DocumentKey is the storage key for the DNC mapping.
const DocumentKey = "dnc"

// Registry is the Do Not Call registry. The whole mapping is loaded and
// re-serialized on every mutating call; expected cardinality is thousands,
// not millions.
type Registry struct {
	store storage.Store
	log   logger.Interface
	now   func() time.Time
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(store storage.Store, log logger.Interface) *Registry {
	return &Registry{
		store: store,
		log:   log.WithComponent("dnc"),
		now:   time.Now,
	}
}

// IsBlocked reports whether the phone number is on the DNC list. A phone
// that fails to normalize is never blocked.
func (r *Registry) IsBlocked(ctx context.Context, rawPhone string) (bool, error) {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return false, nil
	}

	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	_, blocked := entries[key]
	return blocked, nil
}

// Add inserts or overwrites the entry for the phone's key. Returns false
// only when the phone fails to normalize. Overwriting silently replaces
// reason, source, and timestamp: last write wins, no history retained.
func (r *Registry) Add(ctx context.Context, rawPhone, reason, source string) (bool, error) {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return false, nil
	}

	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	entries[key] = domain.DNCEntry{
		PhoneKey:      key,
		OriginalPhone: rawPhone,
		Reason:        reason,
		Source:        source,
		AddedAt:       r.now(),
	}

	if saveErr := r.store.Save(ctx, DocumentKey, entries); saveErr != nil {
		return false, fmt.Errorf("save dnc list: %w", saveErr)
	}

	r.log.Info("number added to DNC list", "phone_key", key, "source", source)
	return true, nil
}

// Remove deletes the entry for the phone's key. Returns true iff an entry
// existed and was deleted.
func (r *Registry) Remove(ctx context.Context, rawPhone string) (bool, error) {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return false, nil
	}

	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	if _, exists := entries[key]; !exists {
		return false, nil
	}

	delete(entries, key)
	if saveErr := r.store.Save(ctx, DocumentKey, entries); saveErr != nil {
		return false, fmt.Errorf("save dnc list: %w", saveErr)
	}

	r.log.Info("number removed from DNC list", "phone_key", key)
	return true, nil
}

// Count returns the number of blocked phone keys.
func (r *Registry) Count(ctx context.Context) (int, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// List returns all DNC entries.
func (r *Registry) List(ctx context.Context) ([]domain.DNCEntry, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DNCEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry)
	}
	return out, nil
}

// load reads the whole mapping, treating a missing or malformed document
// as empty.
func (r *Registry) load(ctx context.Context) (map[string]domain.DNCEntry, error) {
	entries := make(map[string]domain.DNCEntry)
	err := r.store.Load(ctx, DocumentKey, &entries)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load dnc list: %w", err)
	}
	if entries == nil {
		entries = make(map[string]domain.DNCEntry)
	}
	return entries, nil
}
