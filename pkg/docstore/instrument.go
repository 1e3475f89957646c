package docstore

import (
	"context"
	"time"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Instrument wraps a store so reads, writes and deletes are reported to
// the registered observability.StoreHooks. Open applies it automatically.
func Instrument(inner Store, backend string) Store {
	return &instrumented{inner: inner, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

var _ Store = (*instrumented)(nil)

func (s *instrumented) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.inner.Get(ctx, name)
	// A miss is a routine outcome, not a backend failure.
	hookErr := err
	if errors.Is(err, errors.ErrCodeDocumentNotFound) {
		hookErr = nil
	}
	observability.Store().OnGet(ctx, s.backend, name, err == nil, time.Since(start), hookErr)
	return data, err
}

func (s *instrumented) Put(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := s.inner.Put(ctx, name, data)
	observability.Store().OnPut(ctx, s.backend, name, len(data), time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	err := s.inner.Delete(ctx, name)
	hookErr := err
	if errors.Is(err, errors.ErrCodeDocumentNotFound) {
		hookErr = nil
	}
	observability.Store().OnDelete(ctx, s.backend, name, hookErr)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]Entry, error) { return s.inner.List(ctx) }
func (s *instrumented) Close() error                              { return s.inner.Close() }
