package docstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/atlas/pkg/errors"
)

// MemoryStore keeps documents in a process-local map. Intended for
// development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	data    []byte
	updated time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

// Get retrieves a document by name.
func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return slices.Clone(doc.data), nil
}

// Put stores a document under the given name. The data is copied, so
// callers may reuse the slice.
func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = memoryDoc{data: slices.Clone(data), updated: time.Now()}
	return nil
}

// Delete removes a document.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[name]; !ok {
		return errNotFound(name)
	}
	delete(s.docs, name)
	return nil
}

// List returns metadata for all stored documents, sorted by name.
func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.docs))
	for name, doc := range s.docs {
		entries = append(entries, Entry{Name: name, Size: int64(len(doc.data)), UpdatedAt: doc.updated})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
