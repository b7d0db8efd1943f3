// Copyright 2025 Certen Protocol
//
// Validator Set Registry (C6) - the on-chain singleton holding the current
// set of validator public keys, the threshold, and a monotonic version.
//
// Per spec §3 and §4.6: created once at genesis, mutated only by a
// privileged update that bumps version, never destroyed. Singleton per
// destination program, stored at store.ValidatorSetKey().

package validatorset

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
)

// Record is one validator's entry in the set: public key, optional label,
// optional attestation endpoint hint. Equality on public key alone.
type Record struct {
	PublicKey    ed25519.PublicKey `json:"public_key"`
	Label        string            `json:"label,omitempty"`
	EndpointHint string            `json:"endpoint_hint,omitempty"`
}

// Set is the ordered sequence of Records (order defines canonical
// iteration for fee distribution in C8), the threshold, and the version.
type Set struct {
	Validators []Record `json:"validators"`
	Threshold  int      `json:"threshold"`
	Version    uint64   `json:"version"`
}

// IsMember reports whether pubkey is a member of the set, by exact byte
// equality.
func (s *Set) IsMember(pubkey ed25519.PublicKey) bool {
	for _, v := range s.Validators {
		if bytes.Equal(v.PublicKey, pubkey) {
			return true
		}
	}
	return false
}

// Registry manages the singleton Set in durable storage.
type Registry struct {
	store *store.Store
}

// NewRegistry wraps a store.Store for validator-set operations.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

func validateThreshold(numValidators, threshold int) error {
	if threshold < 1 || threshold > numValidators {
		return bridgeerr.Newf(bridgeerr.KindInvalidThreshold,
			"threshold %d must be between 1 and %d", threshold, numValidators)
	}
	return nil
}

func validateNoDuplicates(validators []Record) error {
	seen := make(map[string]bool, len(validators))
	for _, v := range validators {
		key := string(v.PublicKey)
		if seen[key] {
			return bridgeerr.Newf(bridgeerr.KindMalformedMessage, "duplicate validator public key in set")
		}
		seen[key] = true
	}
	return nil
}

// Initialize creates the singleton Set at version 1. Rejects duplicate
// public keys, an out-of-range threshold, or a set that already exists.
//
// Operation: initialize(validators, threshold) - C6.
func (r *Registry) Initialize(validators []Record, threshold int) (*Set, error) {
	if err := validateNoDuplicates(validators); err != nil {
		return nil, err
	}
	if err := validateThreshold(len(validators), threshold); err != nil {
		return nil, err
	}

	set := &Set{Validators: validators, Threshold: threshold, Version: 1}
	if err := r.store.CreateIfAbsent(store.ValidatorSetKey(), set); err != nil {
		if err == store.ErrAlreadyExists {
			return nil, bridgeerr.New(bridgeerr.KindMalformedMessage, "validator set already initialized")
		}
		return nil, fmt.Errorf("validatorset: initialize: %w", err)
	}
	return set, nil
}

// Update replaces the validator set, enforcing invariant I1 and the
// post-condition version_new = version_old + 1. Authority-gated by the
// caller (the HTTP/CLI layer must check the caller is the authority before
// calling this).
//
// Operation: update(new_validators, new_threshold) - C6.
func (r *Registry) Update(newValidators []Record, newThreshold int) (*Set, error) {
	if err := validateNoDuplicates(newValidators); err != nil {
		return nil, err
	}
	if err := validateThreshold(len(newValidators), newThreshold); err != nil {
		return nil, err
	}

	current, err := r.Current()
	if err != nil {
		return nil, fmt.Errorf("validatorset: update: load current set: %w", err)
	}

	updated := &Set{
		Validators: newValidators,
		Threshold:  newThreshold,
		Version:    current.Version + 1,
	}
	if err := r.store.Save(store.ValidatorSetKey(), updated); err != nil {
		return nil, fmt.Errorf("validatorset: update: save: %w", err)
	}
	return updated, nil
}

// Current loads the singleton Set.
func (r *Registry) Current() (*Set, error) {
	var s Set
	if err := r.store.Load(store.ValidatorSetKey(), &s); err != nil {
		if err == store.ErrNotFound {
			return nil, bridgeerr.New(bridgeerr.KindInternal, "validator set not initialized")
		}
		return nil, fmt.Errorf("validatorset: load current: %w", err)
	}
	return &s, nil
}
