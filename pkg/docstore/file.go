package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/atlas/pkg/errors"
)

// FileStore persists each document as a JSON file under a base
// directory. The mutex only guards against races within this process;
// concurrent processes are kept safe by the atomic rename in Put.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at baseDir, creating
// the directory if needed. If baseDir is empty, it defaults to
// ~/.config/atlas/documents.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "resolve home directory")
		}
		baseDir = filepath.Join(home, ".config", "atlas", "documents")
	}

	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create document directory %s", baseDir)
	}

	return &FileStore{baseDir: baseDir}, nil
}

// Get retrieves a document by name.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, errNotFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read document %q", name)
	}
	return data, nil
}

// Put stores a document under the given name. The write goes through a
// temp file and a rename, so a crash cannot leave a half-written
// document behind.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".doc-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write document %q", name)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write document %q", name)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write document %q", name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write document %q", name)
	}
	return nil
}

// Delete removes a document.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return errNotFound(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete document %q", name)
	}
	return nil
}

// List returns metadata for all stored documents. os.ReadDir yields
// entries sorted by filename, which satisfies the sorted-by-name
// contract.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirents, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list documents")
	}

	var entries []Entry
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:      strings.TrimSuffix(name, ".json"),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	return entries, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}
