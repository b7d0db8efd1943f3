package mint

import (
	"crypto/ed25519"
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/xencat-protocol/bridge-validator/pkg/store"
)

func newTestLedger(t *testing.T) *KVLedger {
	t.Helper()
	return NewKVLedger(store.New(store.NewDBAdapter(dbm.NewMemDB())))
}

func TestKVLedgerMintTo(t *testing.T) {
	l := newTestLedger(t)
	var user [32]byte
	user[0] = 1

	if err := l.MintTo(user, 100); err != nil {
		t.Fatalf("MintTo: %v", err)
	}
	if err := l.MintTo(user, 50); err != nil {
		t.Fatalf("MintTo: %v", err)
	}

	bal, err := l.BalanceOf(user)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if bal != 150 {
		t.Fatalf("balance = %d, want 150", bal)
	}
}

func TestKVLedgerTransferRejectsInsufficientBalance(t *testing.T) {
	l := newTestLedger(t)
	payer, _, _ := ed25519.GenerateKey(nil)
	payee, _, _ := ed25519.GenerateKey(nil)

	if err := l.Transfer(payer, payee, 10); err == nil {
		t.Fatal("expected error for insufficient payer balance")
	}
}

func TestKVLedgerTransferMovesBalance(t *testing.T) {
	l := newTestLedger(t)
	payer, _, _ := ed25519.GenerateKey(nil)
	payee, _, _ := ed25519.GenerateKey(nil)

	if err := l.store.Save(feeAccountKey(payer), balance{Amount: 100}); err != nil {
		t.Fatalf("seed payer balance: %v", err)
	}

	if err := l.Transfer(payer, payee, 40); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	payerBal, _ := l.FeeAccountBalance(payer)
	payeeBal, _ := l.FeeAccountBalance(payee)
	if payerBal != 60 || payeeBal != 40 {
		t.Fatalf("payer=%d payee=%d, want 60/40", payerBal, payeeBal)
	}
}
