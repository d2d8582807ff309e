package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func rawItems(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		out[i] = json.RawMessage(item)
	}
	return out
}

func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store database is nil")
	}

	dbPath := filepath.Join(tempDir, dbFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNew_CreatesMissingDirectory(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "nested", "store")

	store, err := New(dataPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dataPath, dbFileName)); err != nil {
		t.Errorf("Database file was not created: %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	// A regular file cannot be used as a parent directory.
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := New(filepath.Join(file, "store"))
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestStore_Close(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Error closing store: %v", err)
	}

	// Test closing already closed store
	if err := store.Close(); err != nil {
		t.Errorf("Error closing already closed store: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{db: nil}
	if err := store.Close(); err != nil {
		t.Errorf("Expected no error for nil db, got: %v", err)
	}
}

func TestPutItems_PreservesOrder(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	// More than 255 items so that a little-endian key would sort wrongly.
	var items []json.RawMessage
	for i := 0; i < 300; i++ {
		b, _ := json.Marshal(map[string]int{"n": i})
		items = append(items, b)
	}

	if err := store.PutItems("ordered", items); err != nil {
		t.Fatalf("Failed to put items: %v", err)
	}

	got, err := store.Items("ordered")
	if err != nil {
		t.Fatalf("Failed to get items: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("Expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if string(got[i]) != string(items[i]) {
			t.Fatalf("Item %d: expected %s, got %s", i, items[i], got[i])
		}
	}
}

func TestPutItems_ReplacesDataset(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.PutItems("ds", rawItems(`{"a":1}`, `{"a":2}`, `{"a":3}`)); err != nil {
		t.Fatalf("Failed to put items: %v", err)
	}
	if err := store.PutItems("ds", rawItems(`{"b":1}`)); err != nil {
		t.Fatalf("Failed to replace items: %v", err)
	}

	got, err := store.Items("ds")
	if err != nil {
		t.Fatalf("Failed to get items: %v", err)
	}
	if len(got) != 1 || string(got[0]) != `{"b":1}` {
		t.Errorf("Expected only the replacement item, got %v", got)
	}
}

func TestPutItems_EmptyName(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.PutItems("", rawItems(`{}`)); err == nil {
		t.Error("Expected error for empty dataset name")
	}
}

func TestItems_UnknownDataset(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.Items("missing")
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Expected ErrDatasetNotFound, got %v", err)
	}
}

func TestDatasets(t *testing.T) {
	tempDir := t.TempDir()
	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.PutItems("model-b", rawItems(`{}`, `{}`)); err != nil {
		t.Fatalf("Failed to put items: %v", err)
	}
	if err := store.PutItems("model-a", rawItems(`{}`)); err != nil {
		t.Fatalf("Failed to put items: %v", err)
	}
	store.Close()

	// Data survives reopening.
	store, err = New(tempDir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	infos, err := store.Datasets()
	if err != nil {
		t.Fatalf("Failed to list datasets: %v", err)
	}

	expected := []DatasetInfo{{Name: "model-a", Items: 1}, {Name: "model-b", Items: 2}}
	if len(infos) != len(expected) {
		t.Fatalf("Expected %d datasets, got %d", len(expected), len(infos))
	}
	for i := range expected {
		if infos[i] != expected[i] {
			t.Errorf("Dataset %d: expected %+v, got %+v", i, expected[i], infos[i])
		}
	}
}

func TestOpenReadOnly_MissingStore(t *testing.T) {
	tempDir := t.TempDir()
	dataPath := filepath.Join(tempDir, "absent")

	_, err := OpenReadOnly(dataPath)
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Expected ErrDatasetNotFound, got %v", err)
	}
	if _, err := os.Stat(dataPath); !os.IsNotExist(err) {
		t.Errorf("Directory was created: %v", err)
	}

	_, err = OpenReadOnly(tempDir)
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Expected ErrDatasetNotFound for empty directory, got %v", err)
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, found %d entries", len(entries))
	}
}

func TestOpenReadOnly_ReadsDatasets(t *testing.T) {
	tempDir := t.TempDir()
	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.PutItems("baseline", rawItems(`{"a":1}`, `{"a":2}`)); err != nil {
		t.Fatalf("Failed to put items: %v", err)
	}
	store.Close()

	ro, err := OpenReadOnly(tempDir)
	if err != nil {
		t.Fatalf("Failed to open store read-only: %v", err)
	}
	defer ro.Close()

	items, err := ro.Items("baseline")
	if err != nil {
		t.Fatalf("Failed to read items: %v", err)
	}
	if len(items) != 2 || string(items[1]) != `{"a":2}` {
		t.Errorf("Unexpected items: %s", items)
	}

	if err := ro.PutItems("other", rawItems(`{}`)); err == nil {
		t.Error("Expected write to fail on read-only store")
	}
}
