// Package testutil provides shared test helpers for setting up document
// directories and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/studyplan/internal/storage"
	"github.com/starford/studyplan/internal/store"
)

// Today is the fixed date test databases treat as "now".
var Today = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

// Clock returns a clock frozen at Today.
func Clock() func() time.Time {
	return func() time.Time { return Today }
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "studyplan-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name(), store.WithClock(Clock()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDocs creates a temporary documents directory with a storage.FS.
func TestDocs(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// Days returns Today shifted by n days.
func Days(n int) time.Time {
	return Today.AddDate(0, 0, n)
}
