// Copyright 2025 Certen Protocol
//
// Deterministic addressing (abstraction of PDA-style derivation).
//
// Per spec §9, "we treat PDA-style deterministic addressing as an
// abstraction" - the host chain's real mechanics (finding an address off
// the Ed25519 curve, bump seeds, program ownership) are out of scope.
// What matters for the protocol is the property spec §6 calls out: the
// address is a pure function of labelled seed tuples, and asset_id is a
// mandatory seed for VerifiedBurn and ProcessedBurn so that two different
// assets can never collide on the same record (invariant I5).
package store

import (
	"crypto/sha256"
	"encoding/binary"
)

// DeriveKey computes a deterministic address from an ordered list of
// labelled seeds, mirroring the seed tuples in spec §6.
func DeriveKey(seeds ...[]byte) []byte {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	return h.Sum(nil)
}

// U8Seed encodes a single byte as a seed.
func U8Seed(v uint8) []byte { return []byte{v} }

// U64LESeed encodes a uint64 as an 8-byte little-endian seed, matching the
// canonical message's endianness convention.
func U64LESeed(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// VerifiedBurnKey derives the address of a VerifiedBurn record.
// Seeds per spec §6: ("verified_burn_v3", asset_id, user, burn_nonce).
func VerifiedBurnKey(assetID uint8, user [32]byte, burnNonce uint64) []byte {
	return DeriveKey([]byte("verified_burn_v3"), U8Seed(assetID), user[:], U64LESeed(burnNonce))
}

// ProcessedBurnKey derives the address of a ProcessedBurn record.
// Seeds per spec §6: ("processed_burn_v3", asset_id, burn_nonce, user).
func ProcessedBurnKey(assetID uint8, burnNonce uint64, user [32]byte) []byte {
	return DeriveKey([]byte("processed_burn_v3"), U8Seed(assetID), U64LESeed(burnNonce), user[:])
}

// ValidatorSetKey derives the address of the singleton ValidatorSet.
func ValidatorSetKey() []byte {
	return DeriveKey([]byte("validator_set_v3"))
}

// MintStateKey derives the address of the singleton MintState for a given
// asset - one mint program per mirror asset, per spec §4.8's asset
// isolation barrier.
func MintStateKey(assetID uint8) []byte {
	return DeriveKey([]byte("mint_state_v3"), U8Seed(assetID))
}

// BurnRecordKey derives the source-chain BurnRecord address, per spec
// §4.2 step 1: the burn program id and the 8-byte little-endian nonce.
func BurnRecordKey(burnProgramID []byte, burnNonce uint64) []byte {
	return DeriveKey(burnProgramID, U64LESeed(burnNonce))
}
