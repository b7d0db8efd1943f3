// Copyright 2025 Certen Protocol
//
// Burn observer (C2: detect_burn).
//
// Grounded on other_examples/renproject-lightnode's watcher.go, which
// fetches a transaction by signature and walks its instructions looking
// for a recognized mint/burn; generalized here to also walk inner
// (CPI) instructions per spec §4.2 step 4, and to enforce the
// exactly-one-burn rule from step 5.
package burn

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/chain/solanarpc"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
)

// mintAccountIndex is the classic SPL Token Burn instruction's account
// layout: [0] token account, [1] mint, [2] owner/authority.
const mintAccountIndex = 1

// Detected is the result of a successful detect_burn call.
type Detected struct {
	AssetID asset.ID
	User    [32]byte
	Amount  uint64
	Slot    uint64
	TxID    solana.Signature
}

// Observer runs detect_burn against a source-chain RPC client.
type Observer struct {
	client    solanarpc.Client
	registry  *asset.Registry
	burnProgramID []byte
}

// New builds an Observer. burnProgramID is the raw bytes of the burn
// program's address, used as a derivation seed for BurnRecord lookups.
func New(client solanarpc.Client, registry *asset.Registry, burnProgramID []byte) *Observer {
	return &Observer{client: client, registry: registry, burnProgramID: burnProgramID}
}

// DetectBurn implements spec §4.2's detect_burn algorithm end to end.
func (o *Observer) DetectBurn(ctx context.Context, burnNonce uint64) (Detected, error) {
	recordAddr := store.BurnRecordKey(o.burnProgramID, burnNonce)
	pubkey := solana.PublicKeyFromBytes(recordAddr)

	accountData, err := o.client.GetAccountData(ctx, pubkey)
	if err != nil {
		return Detected{}, bridgeerr.Newf(bridgeerr.KindBurnNotFound, "fetch BurnRecord account: %v", err)
	}

	sig, err := o.client.FindTransactionForAddress(ctx, pubkey)
	if err != nil {
		return Detected{}, bridgeerr.Newf(bridgeerr.KindBurnNotFound, "find transaction for BurnRecord: %v", err)
	}

	tx, err := o.client.FetchTransaction(ctx, sig)
	if err != nil {
		return Detected{}, fmt.Errorf("burn: fetch transaction: %w", bridgeerr.Newf(bridgeerr.KindRPCError, "%v", err))
	}

	var matches []DecodedBurn
	var mints []solana.PublicKey
	for _, ix := range tx.Instructions {
		decoded, ok := MatchBurn(ix.ProgramID, ix.Data)
		if !ok {
			continue
		}
		matches = append(matches, decoded)
		if len(ix.Accounts) > mintAccountIndex {
			mints = append(mints, ix.Accounts[mintAccountIndex])
		} else {
			mints = append(mints, solana.PublicKey{})
		}
	}

	switch len(matches) {
	case 0:
		return Detected{}, bridgeerr.New(bridgeerr.KindNoBurnFound, "no classic-SPL Burn instruction found in transaction")
	default:
		if len(matches) > 1 {
			return Detected{}, bridgeerr.Newf(bridgeerr.KindAmbiguousBurn,
				"transaction contains %d classic-SPL Burn instructions, want exactly 1", len(matches))
		}
	}

	assetID, err := o.registry.AssetOf(mints[0].String())
	if err != nil {
		return Detected{}, err
	}

	record, err := DecodeRecord(accountData)
	if err != nil {
		return Detected{}, fmt.Errorf("burn: decode BurnRecord: %w", err)
	}
	if record.Nonce != burnNonce {
		return Detected{}, bridgeerr.Newf(bridgeerr.KindMalformedMessage,
			"BurnRecord nonce %d does not match requested nonce %d", record.Nonce, burnNonce)
	}
	if matches[0].Amount != record.Amount {
		return Detected{}, bridgeerr.Newf(bridgeerr.KindAmbiguousBurn,
			"Burn instruction amount %d does not match BurnRecord amount %d", matches[0].Amount, record.Amount)
	}

	return Detected{
		AssetID: assetID,
		User:    record.User,
		Amount:  record.Amount,
		Slot:    tx.Slot,
		TxID:    sig,
	}, nil
}
