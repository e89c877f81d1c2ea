package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/upwardright/rebalance/internal/apperrors"
)

// KVEntry is a key-value pair persisted in the Badger-backed flat store.
type KVEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

// BadgerStore implements KeyValueStore on BadgerDB. It backs the flat
// credential store, which predates the structured one and is kept as an
// eventually-reconciled duplicate.
type BadgerStore struct {
	store *badgerhold.Store
}

// OpenBadgerStore opens (creating if needed) a Badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create flat store directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open flat store: %w", err)
	}
	return &BadgerStore{store: store}, nil
}

// Get retrieves a value by key.
func (s *BadgerStore) Get(_ context.Context, key string) (string, error) {
	var entry KVEntry
	if err := s.store.Get(key, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("%w: get %s: %v", apperrors.ErrStorageUnavailable, key, err)
	}
	return entry.Value, nil
}

// Set stores a key-value pair, replacing any existing value.
func (s *BadgerStore) Set(_ context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value}
	if err := s.store.Upsert(key, &entry); err != nil {
		return fmt.Errorf("%w: set %s: %v", apperrors.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Delete removes a key; deleting an absent key is not an error.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	if err := s.store.Delete(key, KVEntry{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("%w: delete %s: %v", apperrors.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Keys lists the stored keys matching a prefix.
func (s *BadgerStore) Keys(_ context.Context, prefix string) ([]string, error) {
	var entries []KVEntry
	if err := s.store.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", apperrors.ErrStorageUnavailable, err)
	}

	var keys []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Key, prefix) {
			keys = append(keys, entry.Key)
		}
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.store.Close()
}
