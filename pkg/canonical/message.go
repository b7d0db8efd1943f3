// Copyright 2025 Certen Protocol
//
// Canonical Message (C9) - bit-exact signed message layout shared by the
// attestation signer and the light-client verifier. Per spec §3 and §6,
// any deviation in field order, endianness, or domain separator produces a
// different SHA-256 digest and therefore a signature the other side
// rejects. This is the sole enforcement mechanism for asset-to-signature
// binding, so the layout lives in exactly one place and both sides import
// it rather than re-deriving it.

package canonical

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
)

// DomainSeparator is the raw 19-byte ASCII prefix of every canonical
// message. No null terminator, no padding, no length prefix.
const DomainSeparator = "XENCAT_X1_BRIDGE_V1"

// MessageLen is the total byte length of the canonical message:
// 19 (domain) + 1 (asset_id) + 8 (version) + 8 (nonce) + 8 (amount) + 32 (user).
const MessageLen = len(DomainSeparator) + 1 + 8 + 8 + 8 + 32

// UserPubkeyLen is the fixed width of a Solana-family public key.
const UserPubkeyLen = 32

// Fields are the typed inputs to a canonical message, mirroring spec §3's
// CanonicalMessage entity.
type Fields struct {
	AssetID              asset.ID
	ValidatorSetVersion  uint64
	BurnNonce            uint64
	Amount               uint64
	User                 [UserPubkeyLen]byte
}

// Bytes lays out the exact 76-byte canonical message per spec §6:
//
//	offset  size  field
//	0       19    domain separator
//	19      1     asset_id (u8)
//	20      8     validator_set_version (u64 LE)
//	28      8     burn_nonce (u64 LE)
//	36      8     amount (u64 LE)
//	44      32    user public key
func (f Fields) Bytes() []byte {
	buf := make([]byte, 0, MessageLen)
	buf = append(buf, []byte(DomainSeparator)...)
	buf = append(buf, byte(f.AssetID))

	var versionBuf, nonceBuf, amountBuf [8]byte
	binary.LittleEndian.PutUint64(versionBuf[:], f.ValidatorSetVersion)
	binary.LittleEndian.PutUint64(nonceBuf[:], f.BurnNonce)
	binary.LittleEndian.PutUint64(amountBuf[:], f.Amount)

	buf = append(buf, versionBuf[:]...)
	buf = append(buf, nonceBuf[:]...)
	buf = append(buf, amountBuf[:]...)
	buf = append(buf, f.User[:]...)
	return buf
}

// Digest returns SHA-256(Bytes()) - the 32-byte value validators sign and
// the light client re-derives and checks signatures against.
func (f Fields) Digest() [32]byte {
	return sha256.Sum256(f.Bytes())
}

// UserFromSlice copies a variable-length public key into the fixed-width
// field, failing if it is not exactly UserPubkeyLen bytes.
func UserFromSlice(b []byte) ([UserPubkeyLen]byte, error) {
	var out [UserPubkeyLen]byte
	if len(b) != UserPubkeyLen {
		return out, fmt.Errorf("canonical: user public key must be %d bytes, got %d", UserPubkeyLen, len(b))
	}
	copy(out[:], b)
	return out, nil
}
