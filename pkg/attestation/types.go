// Copyright 2025 Certen Protocol
//
// Attestation types - the transient, never-persisted-by-the-core artifact
// produced by C4 and consumed by C7. Per spec §3, an Attestation is owned
// by the user during transport and discarded after submission.

package attestation

import (
	"crypto/ed25519"
	"time"
)

// Attestation is a validator's cryptographic endorsement of a detected
// burn, per spec §3: {validator_pubkey, signature (64 bytes), timestamp}.
type Attestation struct {
	ValidatorPubkey ed25519.PublicKey `json:"validator_pubkey"`
	Signature       []byte            `json:"signature"`

	// Timestamp is advisory only - per spec §4.4 and §9, it is never part
	// of the signed payload. A field must be either in the digest or out
	// of the trust boundary; this one is deliberately out.
	Timestamp time.Time `json:"timestamp"`
}

// Payload is the bundle submitted to the light-client verifier per spec
// §4.7: {user, amount, validator_set_version, attestations}.
type Payload struct {
	User                [32]byte
	Amount              uint64
	ValidatorSetVersion uint64
	Attestations        []Attestation
}
