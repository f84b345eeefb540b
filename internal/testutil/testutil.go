// Package testutil provides shared test helpers for setting up draft
// stores and media directories.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/store"
)

// TestDB creates a temporary SQLite draft store that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestMediaDir creates a temporary media directory with a storage
// provider.
func TestMediaDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
