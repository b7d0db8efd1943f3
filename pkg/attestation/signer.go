// Copyright 2025 Certen Protocol
//
// Attestation Signer (C4) - produces the canonical attestation digest and
// signs it with the validator's Ed25519 key.
//
// Per spec §4.4: the digest-then-sign discipline is the sole mechanism
// enforcing asset-to-signature binding. Any component that re-derives the
// digest with one different field produces a different digest and
// therefore an invalid signature.

package attestation

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/canonical"
)

// Signer creates validator attestations over the canonical message.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewSigner creates a Signer with the given Ed25519 private key.
func NewSigner(privateKey ed25519.PrivateKey) (*Signer, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("attestation: invalid private key size: expected %d, got %d", ed25519.PrivateKeySize, len(privateKey))
	}
	return &Signer{
		privateKey: privateKey,
		publicKey:  privateKey.Public().(ed25519.PublicKey),
	}, nil
}

// PublicKey returns the validator's public key.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Sign constructs the canonical message per §3, computes its SHA-256
// digest, and signs the digest with the validator's Ed25519 key.
//
// Operation: sign(asset_id, burn_nonce, user, amount, validator_set_version) -> Attestation
func (s *Signer) Sign(assetID asset.ID, burnNonce uint64, user [32]byte, amount uint64, validatorSetVersion uint64) (*Attestation, error) {
	fields := canonical.Fields{
		AssetID:             assetID,
		ValidatorSetVersion: validatorSetVersion,
		BurnNonce:           burnNonce,
		Amount:              amount,
		User:                user,
	}
	digest := fields.Digest()
	signature := ed25519.Sign(s.privateKey, digest[:])

	return &Attestation{
		ValidatorPubkey: s.publicKey,
		Signature:       signature,
		Timestamp:       time.Now(),
	}, nil
}
