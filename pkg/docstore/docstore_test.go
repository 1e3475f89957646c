package docstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/observability"
)

// testStore runs the backend-independent Store contract against a fresh
// store per subtest.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("MissingDocument", func(t *testing.T) {
		s := open(t)
		if _, err := s.Get(ctx, "ghost"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
			t.Errorf("Get(ghost) error = %v, want DOCUMENT_NOT_FOUND", err)
		}
		if err := s.Delete(ctx, "ghost"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
			t.Errorf("Delete(ghost) error = %v, want DOCUMENT_NOT_FOUND", err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := open(t)
		if err := s.Put(ctx, "floorplans", []byte(`{"maps": [1]}`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		data, err := s.Get(ctx, "floorplans")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(data, []byte(`{"maps": [1]}`)) {
			t.Errorf("Get() = %q", data)
		}

		if err := s.Put(ctx, "floorplans", []byte(`{"maps": [2]}`)); err != nil {
			t.Fatalf("Put() overwrite error = %v", err)
		}
		data, err = s.Get(ctx, "floorplans")
		if err != nil {
			t.Fatalf("Get() after overwrite error = %v", err)
		}
		if !bytes.Equal(data, []byte(`{"maps": [2]}`)) {
			t.Errorf("Get() after overwrite = %q", data)
		}
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		s := open(t)
		if err := s.Put(ctx, "venue", []byte("{}")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Delete(ctx, "venue"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, "venue"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
			t.Errorf("Get() after delete error = %v, want DOCUMENT_NOT_FOUND", err)
		}
	})

	t.Run("ListSortedWithMetadata", func(t *testing.T) {
		s := open(t)
		before := time.Now().Add(-time.Second)
		if err := s.Put(ctx, "venue", []byte("0123456789")); err != nil {
			t.Fatalf("Put(venue) error = %v", err)
		}
		if err := s.Put(ctx, "atrium", []byte("01234")); err != nil {
			t.Fatalf("Put(atrium) error = %v", err)
		}

		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("List() returned %d entries, want 2", len(entries))
		}
		if entries[0].Name != "atrium" || entries[1].Name != "venue" {
			t.Errorf("List() order = %q, %q, want atrium, venue", entries[0].Name, entries[1].Name)
		}
		if entries[0].Size != 5 || entries[1].Size != 10 {
			t.Errorf("List() sizes = %d, %d, want 5, 10", entries[0].Size, entries[1].Size)
		}
		for _, e := range entries {
			if e.UpdatedAt.Before(before) {
				t.Errorf("entry %q UpdatedAt = %v, too old", e.Name, e.UpdatedAt)
			}
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		s := open(t)
		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("List() on empty store returned %d entries", len(entries))
		}
	})

	t.Run("InvalidNames", func(t *testing.T) {
		s := open(t)
		for _, name := range []string{"", "a/b", `a\b`, ".hidden", "..", "tab\tname"} {
			if _, err := s.Get(ctx, name); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Get(%q) error = %v, want INVALID_INPUT", name, err)
			}
			if err := s.Put(ctx, name, []byte("{}")); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Put(%q) error = %v, want INVALID_INPUT", name, err)
			}
			if err := s.Delete(ctx, name); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Delete(%q) error = %v, want INVALID_INPUT", name, err)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store { return NewMemoryStore() })

	t.Run("CopiesData", func(t *testing.T) {
		ctx := context.Background()
		s := NewMemoryStore()

		original := []byte(`{"maps": []}`)
		if err := s.Put(ctx, "doc", original); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		original[0] = 'X'

		got, err := s.Get(ctx, "doc")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got[0] != '{' {
			t.Error("Put() did not copy its input")
		}

		got[0] = 'Y'
		again, err := s.Get(ctx, "doc")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if again[0] != '{' {
			t.Error("Get() did not copy the stored data")
		}
	})
}

func TestFileStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		return s
	})

	ctx := context.Background()

	t.Run("PersistsAcrossInstances", func(t *testing.T) {
		dir := t.TempDir()
		first, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if err := first.Put(ctx, "floorplans", []byte(`{"maps": []}`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		second, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() reopen error = %v", err)
		}
		data, err := second.Get(ctx, "floorplans")
		if err != nil {
			t.Fatalf("Get() from second instance error = %v", err)
		}
		if !bytes.Equal(data, []byte(`{"maps": []}`)) {
			t.Errorf("Get() = %q", data)
		}
	})

	t.Run("DocumentsAreJSONFiles", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if err := s.Put(ctx, "atrium", []byte("{}")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "atrium.json")); err != nil {
			t.Errorf("expected atrium.json on disk: %v", err)
		}
	})

	t.Run("ListIgnoresStrayFiles", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if err := s.Put(ctx, "atrium", []byte("{}")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".doc-12345"), []byte("x"), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
			t.Fatalf("Mkdir() error = %v", err)
		}

		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "atrium" {
			t.Errorf("List() = %+v, want just atrium", entries)
		}
	})

	t.Run("CreatesMissingDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "documents")
		if _, err := NewFileStore(dir); err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("base directory was not created: %v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoryBackend", func(t *testing.T) {
		s, err := Open(ctx, Config{Backend: BackendMemory})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		if err := s.Put(ctx, "doc", []byte("{}")); err != nil {
			t.Errorf("Put() error = %v", err)
		}
	})

	t.Run("FileBackendUsesPath", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Open(ctx, Config{Backend: BackendFile, Path: dir})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		if err := s.Put(ctx, "doc", []byte("{}")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "doc.json")); err != nil {
			t.Errorf("document not stored under configured path: %v", err)
		}
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		if _, err := Open(ctx, Config{Backend: "etcd"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Open(etcd) error = %v, want INVALID_INPUT", err)
		}
	})
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	gets, hits, puts, deletes int
	errs                      int
	lastBackend               string
}

func (h *recordingStoreHooks) OnGet(_ context.Context, backend, _ string, hit bool, _ time.Duration, err error) {
	h.gets++
	h.lastBackend = backend
	if hit {
		h.hits++
	}
	if err != nil {
		h.errs++
	}
}

func (h *recordingStoreHooks) OnPut(_ context.Context, backend, _ string, _ int, _ time.Duration, err error) {
	h.puts++
	h.lastBackend = backend
	if err != nil {
		h.errs++
	}
}

func (h *recordingStoreHooks) OnDelete(_ context.Context, backend, _ string, err error) {
	h.deletes++
	h.lastBackend = backend
	if err != nil {
		h.errs++
	}
}

func TestInstrumentReportsHooks(t *testing.T) {
	ctx := context.Background()
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	t.Cleanup(observability.Reset)

	s := Instrument(NewMemoryStore(), BackendMemory)
	if err := s.Put(ctx, "doc", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Get(ctx, "doc"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := s.Get(ctx, "ghost"); err == nil {
		t.Fatal("Get(ghost) should fail")
	}
	if err := s.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if hooks.puts != 1 || hooks.gets != 2 || hooks.deletes != 1 {
		t.Errorf("hook counts = %d puts, %d gets, %d deletes", hooks.puts, hooks.gets, hooks.deletes)
	}
	if hooks.hits != 1 {
		t.Errorf("hits = %d, want 1", hooks.hits)
	}
	if hooks.errs != 0 {
		t.Errorf("errs = %d, want 0: a miss is not a backend failure", hooks.errs)
	}
	if hooks.lastBackend != BackendMemory {
		t.Errorf("backend = %q, want %q", hooks.lastBackend, BackendMemory)
	}
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "memcached://localhost:11211")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewRedisStore() error = %v, want INVALID_INPUT", err)
	}
}

func TestNewMongoStoreRejectsBadURL(t *testing.T) {
	_, err := NewMongoStore(context.Background(), "bogus://localhost", "")
	if err == nil {
		t.Error("NewMongoStore() with a bad scheme should fail")
	}
}
