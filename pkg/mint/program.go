// Copyright 2025 Certen Protocol
//
// Mint program (C8: mint_from_burn_v3).
//
// Grounded on this repo's teacher's pkg/ledger (keyed state transitions
// with an explicit state-machine comment) and pkg/execution's fee
// distribution loop, generalized to the asset-isolation and
// validator-set-version-pin rules of spec §4.8.
package mint

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
	"github.com/xencat-protocol/bridge-validator/pkg/verifier"
)

// State is the singleton configuration of one mirror asset's mint
// program: which asset it mints, the validator-set version it is pinned
// to, and the per-validator fee it charges on every mint.
type State struct {
	AssetID                asset.ID `json:"asset_id"`
	ValidatorSetVersionPin uint64   `json:"validator_set_version_pin"`
	FeePerValidator        uint64   `json:"fee_per_validator"`
}

// Processed is the replay barrier created once a VerifiedBurn has been
// minted, per spec §4.8 step 4. Fields match spec §3's data model.
type Processed struct {
	AssetID     asset.ID  `json:"asset_id"`
	BurnNonce   uint64    `json:"burn_nonce"`
	User        [32]byte  `json:"user"`
	Amount      uint64    `json:"amount"`
	ProcessedAt time.Time `json:"processed_at"`
}

// FeeLedger is the ambient account-balance side effect of fee
// distribution and minting - abstracted as a minimal debit/credit
// interface so Program stays testable without a real token ledger.
type FeeLedger interface {
	// Transfer moves amount from payer to payee. Implementations may
	// return an error if payer has insufficient balance.
	Transfer(payer, payee ed25519.PublicKey, amount uint64) error
	// MintTo credits amount of the mirror token to user's account.
	MintTo(user [32]byte, amount uint64) error
}

// Program runs mint_from_burn_v3 for a single mirror asset's mint state.
type Program struct {
	store      *store.Store
	validators *validatorset.Registry
	ledger     FeeLedger
}

// New builds a Program.
func New(s *store.Store, validators *validatorset.Registry, ledger FeeLedger) *Program {
	return &Program{store: s, validators: validators, ledger: ledger}
}

// Initialize creates the singleton MintState for one asset's mint
// program. Not part of spec §4.8's numbered algorithm, but required to
// bring a mint program into existence before mint_from_burn_v3 can run.
func (p *Program) Initialize(assetID asset.ID, validatorSetVersionPin uint64, feePerValidator uint64) (*State, error) {
	state := &State{AssetID: assetID, ValidatorSetVersionPin: validatorSetVersionPin, FeePerValidator: feePerValidator}
	key := store.MintStateKey(uint8(assetID))
	if err := p.store.CreateIfAbsent(key, state); err != nil {
		if err == store.ErrAlreadyExists {
			return nil, bridgeerr.Newf(bridgeerr.KindInternal, "mint program for asset %s already initialized", assetID)
		}
		return nil, fmt.Errorf("mint: initialize: %w", err)
	}
	return state, nil
}

func (p *Program) loadState(assetID asset.ID) (*State, error) {
	var s State
	key := store.MintStateKey(uint8(assetID))
	if err := p.store.Load(key, &s); err != nil {
		if err == store.ErrNotFound {
			return nil, bridgeerr.New(bridgeerr.KindAssetNotMintable, "no mint program exists for this asset")
		}
		return nil, fmt.Errorf("mint: load MintState: %w", err)
	}
	return &s, nil
}

// MintFromBurn implements spec §4.8's algorithm.
//
// payer is the account fee-debited for per-validator distribution;
// validatorAccounts must equal the current validator set's public keys,
// in order, by exact byte equality.
//
// Operation: mint_from_burn_v3(burn_nonce, asset_id) - C8.
func (p *Program) MintFromBurn(assetID asset.ID, user [32]byte, burnNonce uint64, payer ed25519.PublicKey, validatorAccounts []ed25519.PublicKey) (*Processed, error) {
	state, err := p.loadState(assetID)
	if err != nil {
		return nil, err
	}
	if state.AssetID != assetID {
		return nil, bridgeerr.Newf(bridgeerr.KindAssetNotMintable,
			"mint program is bound to asset %s, refusing asset %s", state.AssetID, assetID)
	}

	verified, err := verifier.LoadVerifiedBurn(p.store, assetID, user, burnNonce)
	if err != nil {
		return nil, err
	}
	if verified.User != user {
		return nil, bridgeerr.New(bridgeerr.KindUserMismatch, "VerifiedBurn user does not match claimed user")
	}

	set, err := p.validators.Current()
	if err != nil {
		return nil, fmt.Errorf("mint: load validator set: %w", err)
	}
	if state.ValidatorSetVersionPin != set.Version {
		return nil, bridgeerr.Newf(bridgeerr.KindValidatorSetVersionDrift,
			"mint program pinned to validator set version %d, current is %d", state.ValidatorSetVersionPin, set.Version)
	}

	if len(validatorAccounts) != len(set.Validators) {
		return nil, bridgeerr.Newf(bridgeerr.KindMalformedMessage,
			"supplied %d validator accounts, current set has %d", len(validatorAccounts), len(set.Validators))
	}
	for i, v := range set.Validators {
		if !bytes.Equal(v.PublicKey, validatorAccounts[i]) {
			return nil, bridgeerr.Newf(bridgeerr.KindMalformedMessage,
				"validator account at index %d does not match the current set's order", i)
		}
	}

	processed := &Processed{
		AssetID:     assetID,
		BurnNonce:   burnNonce,
		User:        user,
		Amount:      verified.Amount,
		ProcessedAt: time.Now().UTC(),
	}
	key := store.ProcessedBurnKey(uint8(assetID), burnNonce, user)
	if err := p.store.CreateIfAbsent(key, processed); err != nil {
		if err == store.ErrAlreadyExists {
			return nil, bridgeerr.New(bridgeerr.KindAlreadyProcessed, "a ProcessedBurn already exists for this (asset_id, user, burn_nonce)")
		}
		return nil, fmt.Errorf("mint: create ProcessedBurn: %w", err)
	}

	if state.FeePerValidator > 0 {
		for _, v := range set.Validators {
			if err := p.ledger.Transfer(payer, v.PublicKey, state.FeePerValidator); err != nil {
				return nil, fmt.Errorf("mint: distribute fee: %w", err)
			}
		}
	}

	if err := p.ledger.MintTo(user, verified.Amount); err != nil {
		return nil, fmt.Errorf("mint: mint to user: %w", err)
	}

	return processed, nil
}
