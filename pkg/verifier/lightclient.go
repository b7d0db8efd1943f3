// Copyright 2025 Certen Protocol
//
// Attestation verifier - light client (C7: submit_burn_attestation_v3).
//
// Grounded on this repo's teacher's pkg/anchor_proof/verifier.go (which
// rebuilds a digest and checks signatures against a known signer set) and
// pkg/consensus's distinct-signer counting, generalized to the protocol's
// own canonical message and threshold rule.
package verifier

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/attestation"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/canonical"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
)

// VerifiedBurn is the record created once a submission clears the
// threshold, the on-chain replay barrier for the verification layer.
// Fields match spec §3's data model.
type VerifiedBurn struct {
	AssetID             asset.ID  `json:"asset_id"`
	BurnNonce           uint64    `json:"burn_nonce"`
	User                [32]byte  `json:"user"`
	Amount              uint64    `json:"amount"`
	VerifiedAt          time.Time `json:"verified_at"`
	ValidatorSetVersion uint64    `json:"validator_set_version"`
}

// Verifier runs submit_burn_attestation_v3 against a validator set
// registry and a durable store.
type Verifier struct {
	store      *store.Store
	validators *validatorset.Registry
}

// New builds a Verifier.
func New(s *store.Store, validators *validatorset.Registry) *Verifier {
	return &Verifier{store: s, validators: validators}
}

// SubmitBurnAttestation implements spec §4.7's verification algorithm.
//
// Operation: submit_burn_attestation_v3(asset_id, burn_nonce, payload) - C7.
func (v *Verifier) SubmitBurnAttestation(assetID asset.ID, burnNonce uint64, payload attestation.Payload) (*VerifiedBurn, error) {
	set, err := v.validators.Current()
	if err != nil {
		return nil, fmt.Errorf("verifier: load validator set: %w", err)
	}

	if payload.ValidatorSetVersion != set.Version {
		return nil, bridgeerr.Newf(bridgeerr.KindVersionMismatch,
			"payload targets validator set version %d, current is %d", payload.ValidatorSetVersion, set.Version)
	}

	fields := canonical.Fields{
		AssetID:             assetID,
		ValidatorSetVersion: payload.ValidatorSetVersion,
		BurnNonce:           burnNonce,
		Amount:              payload.Amount,
		User:                payload.User,
	}
	digest := fields.Digest()

	seen := make(map[string]bool, len(payload.Attestations))
	verifiedCount := 0
	for _, att := range payload.Attestations {
		key := string(att.ValidatorPubkey)
		if seen[key] {
			return nil, bridgeerr.New(bridgeerr.KindDuplicateValidator, "validator public key appears more than once in submission")
		}
		seen[key] = true

		if !set.IsMember(att.ValidatorPubkey) {
			return nil, bridgeerr.New(bridgeerr.KindUnknownValidator, "attesting public key is not a member of the current validator set")
		}

		if !ed25519.Verify(att.ValidatorPubkey, digest[:], att.Signature) {
			return nil, bridgeerr.New(bridgeerr.KindInvalidSignature, "signature does not verify against the canonical digest")
		}

		verifiedCount++
	}

	if verifiedCount < set.Threshold {
		return nil, bridgeerr.Newf(bridgeerr.KindInsufficientAttestations,
			"%d verified attestations, need %d", verifiedCount, set.Threshold)
	}

	verified := &VerifiedBurn{
		AssetID:             assetID,
		BurnNonce:           burnNonce,
		User:                payload.User,
		Amount:              payload.Amount,
		VerifiedAt:          time.Now().UTC(),
		ValidatorSetVersion: payload.ValidatorSetVersion,
	}
	key := store.VerifiedBurnKey(uint8(assetID), payload.User, burnNonce)
	if err := v.store.CreateIfAbsent(key, verified); err != nil {
		if err == store.ErrAlreadyExists {
			return nil, bridgeerr.New(bridgeerr.KindAlreadyVerified, "a VerifiedBurn already exists for this (asset_id, user, burn_nonce)")
		}
		return nil, fmt.Errorf("verifier: create VerifiedBurn: %w", err)
	}

	return verified, nil
}

// LoadVerifiedBurn reads an existing VerifiedBurn, used by the mint
// program (C8) in its own lookup step.
func LoadVerifiedBurn(s *store.Store, assetID asset.ID, user [32]byte, burnNonce uint64) (*VerifiedBurn, error) {
	var vb VerifiedBurn
	key := store.VerifiedBurnKey(uint8(assetID), user, burnNonce)
	if err := s.Load(key, &vb); err != nil {
		if err == store.ErrNotFound {
			return nil, bridgeerr.New(bridgeerr.KindBurnNotFound, "no VerifiedBurn exists for this (asset_id, user, burn_nonce)")
		}
		return nil, fmt.Errorf("verifier: load VerifiedBurn: %w", err)
	}
	return &vb, nil
}
