// Copyright 2025 Certen Protocol
//
// KVLedger is a FeeLedger backed by the same keyed store.Store used for
// ValidatorSet/MintState/VerifiedBurn/ProcessedBurn - balances are just
// more keyed accounts, per spec §4.8 step 5's "transfer ... from the
// caller to that validator's account" and step 6's "mint ... to the
// user's token account".
package mint

import (
	"crypto/ed25519"
	"fmt"

	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
)

type balance struct {
	Amount uint64 `json:"amount"`
}

func feeAccountKey(pubkey ed25519.PublicKey) []byte {
	return store.DeriveKey([]byte("fee_account_v3"), pubkey)
}

func mirrorBalanceKey(user [32]byte) []byte {
	return store.DeriveKey([]byte("mirror_balance_v3"), user[:])
}

// KVLedger implements FeeLedger over a store.Store.
type KVLedger struct {
	store *store.Store
}

// NewKVLedger builds a KVLedger.
func NewKVLedger(s *store.Store) *KVLedger {
	return &KVLedger{store: s}
}

func (l *KVLedger) load(key []byte) (uint64, error) {
	var b balance
	if err := l.store.Load(key, &b); err != nil {
		if err == store.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return b.Amount, nil
}

// Transfer moves amount from payer's fee account to payee's fee account.
// payer is not required to pre-exist; an implicit zero balance that would
// go negative fails with InsufficientAttestations's sibling - a plain
// internal error, since fee insufficiency is a caller bug, not a protocol
// condition with its own taxonomy entry.
func (l *KVLedger) Transfer(payer, payee ed25519.PublicKey, amount uint64) error {
	payerKey := feeAccountKey(payer)
	payerBalance, err := l.load(payerKey)
	if err != nil {
		return fmt.Errorf("mint: load payer balance: %w", err)
	}
	if payerBalance < amount {
		return bridgeerr.Newf(bridgeerr.KindInternal, "payer balance %d is insufficient for fee %d", payerBalance, amount)
	}

	payeeKey := feeAccountKey(payee)
	payeeBalance, err := l.load(payeeKey)
	if err != nil {
		return fmt.Errorf("mint: load payee balance: %w", err)
	}

	if err := l.store.Save(payerKey, balance{Amount: payerBalance - amount}); err != nil {
		return fmt.Errorf("mint: debit payer: %w", err)
	}
	if err := l.store.Save(payeeKey, balance{Amount: payeeBalance + amount}); err != nil {
		return fmt.Errorf("mint: credit payee: %w", err)
	}
	return nil
}

// MintTo credits amount of the mirror token to user's balance.
func (l *KVLedger) MintTo(user [32]byte, amount uint64) error {
	key := mirrorBalanceKey(user)
	current, err := l.load(key)
	if err != nil {
		return fmt.Errorf("mint: load mirror balance: %w", err)
	}
	if err := l.store.Save(key, balance{Amount: current + amount}); err != nil {
		return fmt.Errorf("mint: credit mirror balance: %w", err)
	}
	return nil
}

// BalanceOf returns a user's current mirror-token balance, for
// introspection endpoints.
func (l *KVLedger) BalanceOf(user [32]byte) (uint64, error) {
	return l.load(mirrorBalanceKey(user))
}

// FeeAccountBalance returns a validator's accumulated fee balance.
func (l *KVLedger) FeeAccountBalance(pubkey ed25519.PublicKey) (uint64, error) {
	return l.load(feeAccountKey(pubkey))
}
