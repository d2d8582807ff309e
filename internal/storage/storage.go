// Package storage keeps labeled impact datasets in a local BoltDB file.
//
// Each dataset lives in its own nested bucket under the datasets bucket. Items
// are stored as raw JSON keyed by their big-endian position, so a cursor walk
// returns them in ingestion order.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	datasetsBucket = "datasets" // Parent bucket holding one bucket per dataset
	dbFileName     = "impact-data.db"
)

// ErrDatasetNotFound is returned when a dataset name has no bucket.
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	Name  string
	Items int
}

// Store provides persistent storage for labeled datasets using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (creating if needed) the store under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, dbFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(datasetsBucket)); err != nil {
			return fmt.Errorf("create datasets bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store under dataPath without creating or
// modifying anything on disk. A missing database file is reported as
// ErrDatasetNotFound.
func OpenReadOnly(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFileName)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no store at %s", ErrDatasetNotFound, dataPath)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database. Calling it more than once is safe.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// PutItems replaces the contents of dataset with items, in order.
func (s *Store) PutItems(dataset string, items []json.RawMessage) error {
	if dataset == "" {
		return fmt.Errorf("dataset name is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		parent := tx.Bucket([]byte(datasetsBucket))
		if parent.Bucket([]byte(dataset)) != nil {
			if err := parent.DeleteBucket([]byte(dataset)); err != nil {
				return fmt.Errorf("clear dataset %s: %w", dataset, err)
			}
		}

		b, err := parent.CreateBucket([]byte(dataset))
		if err != nil {
			return fmt.Errorf("create dataset %s: %w", dataset, err)
		}

		for i, item := range items {
			if err := b.Put(itemKey(uint64(i)), item); err != nil {
				return fmt.Errorf("put item %d: %w", i, err)
			}
		}
		return nil
	})
}

// Items returns the raw items of dataset in ingestion order.
func (s *Store) Items(dataset string) ([]json.RawMessage, error) {
	var items []json.RawMessage

	err := s.db.View(func(tx *bbolt.Tx) error {
		parent := tx.Bucket([]byte(datasetsBucket))
		if parent == nil {
			return fmt.Errorf("%w: %s", ErrDatasetNotFound, dataset)
		}
		b := parent.Bucket([]byte(dataset))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrDatasetNotFound, dataset)
		}

		items = make([]json.RawMessage, 0, b.Stats().KeyN)
		return b.ForEach(func(_, v []byte) error {
			// Values are only valid for the life of the transaction.
			item := make(json.RawMessage, len(v))
			copy(item, v)
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Datasets lists stored datasets with their item counts, sorted by name.
func (s *Store) Datasets() ([]DatasetInfo, error) {
	var infos []DatasetInfo

	err := s.db.View(func(tx *bbolt.Tx) error {
		parent := tx.Bucket([]byte(datasetsBucket))
		if parent == nil {
			return nil
		}
		return parent.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil // not a bucket
			}
			infos = append(infos, DatasetInfo{
				Name:  string(k),
				Items: parent.Bucket(k).Stats().KeyN,
			})
			return nil
		})
	})
	return infos, err
}

func itemKey(i uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, i)
	return key
}
