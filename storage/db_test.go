package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func testDatabase(t *testing.T, db Database) {
	t.Helper()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("missing key err = %v, want ErrKeyNotFound", err)
	}

	if err := db.Put([]byte("alpha"), []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, err := db.Get([]byte("alpha"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "one" {
		t.Fatalf("value = %q, want one", value)
	}

	if err := db.Put([]byte("alpha"), []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, err = db.Get([]byte("alpha"))
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(value) != "two" {
		t.Fatalf("value = %q, want two", value)
	}

	if err := db.Delete([]byte("alpha")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("alpha")); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("deleted key err = %v, want ErrKeyNotFound", err)
	}

	// Deleting a missing key is not an error.
	if err := db.Delete([]byte("alpha")); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	testDatabase(t, db)
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	original := []byte("payload")
	if err := db.Put([]byte("key"), original); err != nil {
		t.Fatalf("put: %v", err)
	}
	original[0] = 'X'
	value, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "payload" {
		t.Fatalf("stored value mutated: %q", value)
	}
	value[0] = 'Y'
	again, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(again) != "payload" {
		t.Fatalf("returned slice aliases storage: %q", again)
	}
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	testDatabase(t, db)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Put([]byte("key"), []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}
	db.Close()

	db, err = NewLevelDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	value, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(value) != "value" {
		t.Fatalf("value = %q, want value", value)
	}
}
