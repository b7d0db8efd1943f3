// Copyright 2025 Certen Protocol
//
// Keyed account storage backing the simulated on-chain singletons
// (ValidatorSet, MintState) and keyed records (VerifiedBurn, ProcessedBurn).
//
// Per spec §5, the host chain gives every keyed write atomic "insert-new"
// semantics and serializes any two calls that touch the same address.
// KV itself does not provide that atomicity across goroutines - see
// Store.CreateIfAbsent, which layers a mutex over it the same way the
// teacher's pkg/ledger.LedgerStore documents a single-writer assumption.
// The KV implementation itself is the teacher's pkg/kvdb.KVAdapter,
// wrapping CometBFT's dbm.DB.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/xencat-protocol/bridge-validator/pkg/kvdb"
)

// ErrNotFound is returned by Get/Load when no value exists at a key.
var ErrNotFound = errors.New("store: key not found")

// ErrAlreadyExists is returned by CreateIfAbsent when the key is already
// occupied - the on-chain replay barrier described in spec §4.7 step 5 and
// §4.8 step 4.
var ErrAlreadyExists = errors.New("store: key already exists")

// KV is the minimal key-value interface the Store needs, matching
// kvdb.KVAdapter's shape.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// NewDBAdapter wraps a cometbft-db database (memdb for tests, goleveldb in
// production) as a KV, via the teacher's kvdb.KVAdapter.
func NewDBAdapter(db dbm.DB) KV {
	return kvdb.NewKVAdapter(db)
}

// Store provides JSON-marshalled keyed access over a KV, with an
// atomic-insert-new primitive used to enforce the protocol's replay
// barriers and singleton-creation rules.
//
// CONCURRENCY: Store serializes all writes behind a single mutex. This
// mirrors spec §5's "the host chain gives us atomic insert-new semantics
// on keyed state" - here a single process plays the role of the chain's
// account-locking discipline.
type Store struct {
	mu sync.Mutex
	kv KV
}

// New wraps a KV in a Store.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Has reports whether a value exists at key.
func (s *Store) Has(key []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Load reads and JSON-decodes the value at key into out.
func (s *Store) Load(key []byte, out any) error {
	s.mu.Lock()
	v, err := s.kv.Get(key)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("store: get: %w", err)
	}
	if v == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(v, out); err != nil {
		return fmt.Errorf("store: decode value at key: %w", err)
	}
	return nil
}

// Save JSON-encodes value and writes it at key, overwriting any existing
// value. Used for singletons whose mutation is authority-gated elsewhere
// (ValidatorSet, MintState) rather than protected by CreateIfAbsent.
func (s *Store) Save(key []byte, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode value: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Set(key, b)
}

// CreateIfAbsent writes value at key only if key currently holds nothing,
// returning ErrAlreadyExists otherwise. This is the insert-new primitive
// spec §4.7 step 5 and §4.8 step 4 depend on: VerifiedBurn and
// ProcessedBurn may each be created exactly once.
func (s *Store) CreateIfAbsent(key []byte, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode value: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("store: get: %w", err)
	}
	if existing != nil {
		return ErrAlreadyExists
	}
	return s.kv.Set(key, b)
}
