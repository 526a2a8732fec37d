package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// storeFactories builds one of each backend against temp storage.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(SQLiteStoreConfig{
		DSN: filepath.Join(t.TempDir(), "creds.db"),
	})
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = sqliteStore.Close()
	})

	return map[string]Store{
		"mem":    NewMemStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "credentials.json")),
		"sqlite": sqliteStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := store.Get(ctx, KeyToken); err != nil || ok {
				t.Fatalf("empty get: got ok=%v err=%v", ok, err)
			}

			if err := store.Set(ctx, KeyToken, "t1"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, KeyUser, `{"email":"a@b.c"}`); err != nil {
				t.Fatalf("set user: %v", err)
			}

			token, ok, err := store.Get(ctx, KeyToken)
			if err != nil || !ok || token != "t1" {
				t.Fatalf("get: got %q/%v/%v", token, ok, err)
			}

			// Overwrite replaces.
			if err := store.Set(ctx, KeyToken, "t2"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			token, _, _ = store.Get(ctx, KeyToken)
			if token != "t2" {
				t.Errorf("got %q after overwrite", token)
			}

			if err := store.Delete(ctx, KeyToken); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, KeyToken); ok {
				t.Error("expected token gone after delete")
			}

			// Deleting a missing key is a no-op.
			if err := store.Delete(ctx, "missing"); err != nil {
				t.Errorf("delete missing: %v", err)
			}
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	first := NewFileStore(path)
	if err := first.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewFileStore(path)
	token, ok, err := second.Get(ctx, KeyToken)
	if err != nil || !ok || token != "t1" {
		t.Fatalf("got %q/%v/%v from fresh instance", token, ok, err)
	}
}

func TestFileStore_DocumentShapeAndPermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := NewFileStore(path)
	if err := store.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("got file mode %o, want 600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc struct {
		Version string            `json:"version"`
		Entries map[string]string `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Version != "1" || doc.Entries[KeyToken] != "t1" {
		t.Errorf("got document %+v", doc)
	}
}

func TestFileStore_MissingFileReadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-written.json"))
	if _, ok, err := store.Get(context.Background(), KeyToken); err != nil || ok {
		t.Errorf("got ok=%v err=%v, want empty result", ok, err)
	}
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "creds.db")

	first, err := NewSQLiteStore(SQLiteStoreConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := first.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewSQLiteStore(SQLiteStoreConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer second.Close()

	token, ok, err := second.Get(ctx, KeyToken)
	if err != nil || !ok || token != "t1" {
		t.Fatalf("got %q/%v/%v after reopen", token, ok, err)
	}
}
