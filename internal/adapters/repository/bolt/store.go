// Package bolt provides a unit-of-work store on an embedded bbolt database.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trebuchet-org/lockgov/internal/adapters/repository/records"
	"github.com/trebuchet-org/lockgov/internal/usecase"
	bolt "go.etcd.io/bbolt"
)

// DBFile is the database file name under the data directory.
const DBFile = "lockgov.db"

var defaultOpts = bolt.Options{
	// open timeout when file is locked
	Timeout: time.Second,
	// faster for large databases
	FreelistType: bolt.FreelistMapType,
}

// Store maps every unit of work onto one bbolt transaction. bbolt allows a
// single writer at a time, which serializes Update calls.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) dataDir/lockgov.db and ensures all buckets exist.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	opts := defaultOpts
	db, err := bolt.Open(filepath.Join(dataDir, DBFile), 0644, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		for _, name := range records.Buckets {
			if _, err := btx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) View(ctx context.Context, fn func(tx usecase.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(records.New(kv{btx}))
	})
}

// Update runs fn inside a bbolt read-write transaction which is rolled
// back when fn fails.
func (s *Store) Update(ctx context.Context, fn func(tx usecase.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(records.New(kv{btx}))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

type kv struct {
	tx *bolt.Tx
}

func (k kv) bucket(name string) (*bolt.Bucket, error) {
	b := k.tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("unknown bucket %q", name)
	}
	return b, nil
}

// Get copies the value out since bbolt memory is only valid inside the
// transaction.
func (k kv) Get(name string, key []byte) ([]byte, bool, error) {
	b, err := k.bucket(name)
	if err != nil {
		return nil, false, err
	}
	v := b.Get(key)
	if v == nil {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (k kv) Put(name string, key, value []byte) error {
	b, err := k.bucket(name)
	if err != nil {
		return err
	}
	return b.Put(key, value)
}

func (k kv) Delete(name string, key []byte) error {
	b, err := k.bucket(name)
	if err != nil {
		return err
	}
	return b.Delete(key)
}

func (k kv) ForEach(name string, fn func(key, value []byte) error) error {
	b, err := k.bucket(name)
	if err != nil {
		return err
	}
	return b.ForEach(fn)
}

var _ usecase.Store = (*Store)(nil)
