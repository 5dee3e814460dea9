// Package memory provides an in-process unit-of-work store, optionally
// persisted as a JSON file in the data directory.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofrs/flock"
	"github.com/trebuchet-org/lockgov/internal/adapters/repository/records"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// StateFile is the name of the persisted state under the data directory.
const StateFile = "state.json"

// LockFile guards StateFile across processes sharing a data directory.
const LockFile = "state.lock"

const lockRetryDelay = 50 * time.Millisecond

var errReadOnly = errors.New("write in a read-only transaction")

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("store is closed")

// Store keeps every record in memory. Updates write into an overlay that
// is merged into the committed state only when fn returns nil.
//
// A file-backed store holds LockFile for the whole of each transaction
// (shared for View, exclusive for Update) and re-reads StateFile under
// it, so processes sharing the data directory never commit over each
// other's writes.
type Store struct {
	mu      sync.RWMutex
	path    string
	lock    *flock.Flock
	buckets map[string]map[string][]byte
	closed  bool
}

// NewStore creates an empty store that is never persisted.
func NewStore() *Store {
	return &Store{buckets: emptyBuckets()}
}

// NewFileStore creates a store persisted to dataDir/state.json, loading
// the existing state if present.
func NewFileStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		path: filepath.Join(dataDir, StateFile),
		lock: flock.New(filepath.Join(dataDir, LockFile)),
	}
	buckets, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	s.buckets = buckets
	return s, nil
}

func emptyBuckets() map[string]map[string][]byte {
	b := make(map[string]map[string][]byte, len(records.Buckets))
	for _, name := range records.Buckets {
		b[name] = make(map[string][]byte)
	}
	return b
}

// View runs fn against the committed state.
func (s *Store) View(ctx context.Context, fn func(tx usecase.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.path != "" {
		return s.viewFile(ctx, fn)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(records.New(&overlay{base: s.buckets, readOnly: true}))
}

func (s *Store) viewFile(ctx context.Context, fn func(tx usecase.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	return fn(records.New(&overlay{base: s.buckets, readOnly: true}))
}

// Update runs fn against a private overlay and commits it when fn
// succeeds. With persistence enabled the file is written before the
// in-memory state changes, so a failed write leaves both untouched.
func (s *Store) Update(ctx context.Context, fn func(tx usecase.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.path != "" {
		unlock, err := s.acquire(ctx, false)
		if err != nil {
			return err
		}
		defer unlock()
		if err := s.refresh(); err != nil {
			return err
		}
	}

	ov := &overlay{base: s.buckets, writes: make(map[string]map[string][]byte)}
	if err := fn(records.New(ov)); err != nil {
		return err
	}
	if len(ov.writes) == 0 {
		return nil
	}

	next := make(map[string]map[string][]byte, len(s.buckets))
	for name, bucket := range s.buckets {
		w, touched := ov.writes[name]
		if !touched {
			next[name] = bucket
			continue
		}
		merged := maps.Clone(bucket)
		for k, v := range w {
			if v == nil {
				delete(merged, k)
			} else {
				merged[k] = v
			}
		}
		next[name] = merged
	}

	if s.path != "" {
		if err := s.save(next); err != nil {
			return fmt.Errorf("failed to persist state: %w", err)
		}
	}
	s.buckets = next
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// acquire takes the data directory lock, retrying until ctx is done.
func (s *Store) acquire(ctx context.Context, shared bool) (func(), error) {
	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s: held by another process", s.lock.Path())
	}
	return func() { _ = s.lock.Unlock() }, nil
}

// refresh replaces the cached state with what is on disk.
func (s *Store) refresh() error {
	buckets, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	s.buckets = buckets
	return nil
}

// persisted layout: bucket -> hex key -> record
type fileState map[string]map[string]json.RawMessage

// load reads StateFile. A missing file is an empty state.
func (s *Store) load() (map[string]map[string][]byte, error) {
	buckets := emptyBuckets()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return buckets, nil
	}
	if err != nil {
		return nil, err
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	for name, bucket := range state {
		if _, ok := buckets[name]; !ok {
			return nil, fmt.Errorf("unknown bucket %q", name)
		}
		for hexKey, raw := range bucket {
			key, err := hexutil.Decode(hexKey)
			if err != nil {
				return nil, fmt.Errorf("invalid key %q in bucket %q: %w", hexKey, name, err)
			}
			buckets[name][string(key)] = []byte(raw)
		}
	}
	return buckets, nil
}

func (s *Store) save(buckets map[string]map[string][]byte) error {
	state := make(fileState, len(buckets))
	for name, bucket := range buckets {
		out := make(map[string]json.RawMessage, len(bucket))
		for k, v := range bucket {
			out[hexutil.Encode([]byte(k))] = json.RawMessage(v)
		}
		state[name] = out
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpPath, s.path)
}

// overlay is the records.KV of one transaction. A nil value in writes
// marks a deletion.
type overlay struct {
	base     map[string]map[string][]byte
	writes   map[string]map[string][]byte
	readOnly bool
}

func (o *overlay) bucket(name string) (map[string][]byte, error) {
	b, ok := o.base[name]
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", name)
	}
	return b, nil
}

func (o *overlay) Get(name string, key []byte) ([]byte, bool, error) {
	b, err := o.bucket(name)
	if err != nil {
		return nil, false, err
	}
	if w, ok := o.writes[name]; ok {
		if v, ok := w[string(key)]; ok {
			return v, v != nil, nil
		}
	}
	v, ok := b[string(key)]
	return v, ok, nil
}

func (o *overlay) Put(name string, key, value []byte) error {
	return o.write(name, key, append([]byte(nil), value...))
}

func (o *overlay) Delete(name string, key []byte) error {
	return o.write(name, key, nil)
}

func (o *overlay) write(name string, key, value []byte) error {
	if o.readOnly {
		return errReadOnly
	}
	if _, err := o.bucket(name); err != nil {
		return err
	}
	w, ok := o.writes[name]
	if !ok {
		w = make(map[string][]byte)
		o.writes[name] = w
	}
	w[string(key)] = value
	return nil
}

func (o *overlay) ForEach(name string, fn func(key, value []byte) error) error {
	b, err := o.bucket(name)
	if err != nil {
		return err
	}
	w := o.writes[name]
	for k, v := range b {
		if _, shadowed := w[k]; shadowed {
			continue
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	for k, v := range w {
		if v == nil {
			continue
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

var _ usecase.Store = (*Store)(nil)
