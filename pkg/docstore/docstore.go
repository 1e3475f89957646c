// Package docstore persists named map documents across storage backends.
//
// A document is the raw JSON produced by pkg/document, stored verbatim
// under a caller-chosen name. The Store interface abstracts over four
// implementations:
//   - memory: process-local map for development and tests
//   - file: one JSON file per document under a base directory
//   - redis: shared storage for multi-instance servers
//   - mongo: durable storage with a unique index on the document name
//
// Names are validated with errors.ValidateDocumentName before they reach
// a backend, so a name is always safe to use as a file basename, a Redis
// key suffix and a Mongo filter value.
//
// # Usage
//
// Create a store from configuration:
//
//	store, err := docstore.Open(ctx, docstore.Config{Backend: "file"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// Store and retrieve documents:
//
//	if err := store.Put(ctx, "floorplans", data); err != nil {
//	    return err
//	}
//	data, err := store.Get(ctx, "floorplans")
package docstore

import (
	"context"
	"time"

	"github.com/matzehuels/atlas/pkg/errors"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Entry describes a stored document without its contents.
type Entry struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by name.
	// Returns an error with code DOCUMENT_NOT_FOUND when absent.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores a document under the given name, replacing any
	// previous contents.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a document.
	// Returns an error with code DOCUMENT_NOT_FOUND when absent.
	Delete(ctx context.Context, name string) error

	// List returns metadata for all stored documents, sorted by name.
	List(ctx context.Context) ([]Entry, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a storage backend.
type Config struct {
	// Backend is one of memory, file, redis or mongo. Empty means file.
	Backend string `toml:"backend" json:"backend"`

	// Path is the base directory for the file backend. Empty means
	// ~/.config/atlas/documents.
	Path string `toml:"path" json:"path"`

	// URL is the connection string for the redis and mongo backends,
	// e.g. redis://localhost:6379/0 or mongodb://localhost:27017.
	URL string `toml:"url" json:"url"`

	// Database is the Mongo database name. Empty means atlas.
	Database string `toml:"database" json:"database"`
}

// Open creates the store selected by cfg and instruments it with the
// registered observability hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}

	var (
		store Store
		err   error
	)
	switch backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendFile:
		store, err = NewFileStore(cfg.Path)
	case BackendRedis:
		store, err = NewRedisStore(ctx, cfg.URL)
	case BackendMongo:
		store, err = NewMongoStore(ctx, cfg.URL, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(store, backend), nil
}

func errNotFound(name string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", name)
}
