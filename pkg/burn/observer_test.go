package burn

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/chain/solanarpc"
)

type fakeRPC struct {
	accountData []byte
	sig         solana.Signature
	tx          *solanarpc.Transaction
}

func (f *fakeRPC) CurrentSlot(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeRPC) FindTransactionForAddress(ctx context.Context, addr solana.PublicKey) (solana.Signature, error) {
	return f.sig, nil
}

func (f *fakeRPC) FetchTransaction(ctx context.Context, sig solana.Signature) (*solanarpc.Transaction, error) {
	if f.tx == nil {
		return nil, errors.New("no transaction configured")
	}
	return f.tx, nil
}

func (f *fakeRPC) GetAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	if f.accountData == nil {
		return nil, errors.New("no account configured")
	}
	return f.accountData, nil
}

func encodeRecord(user [32]byte, amount, nonce uint64) []byte {
	data := make([]byte, RecordLen)
	copy(data[0:32], user[:])
	binary.LittleEndian.PutUint64(data[32:40], amount)
	binary.LittleEndian.PutUint64(data[40:48], nonce)
	return data
}

func burnIx(mint solana.PublicKey, amount uint64) solanarpc.Instruction {
	return solanarpc.Instruction{
		ProgramID: TokenProgramID,
		Accounts:  []solana.PublicKey{solana.NewWallet().PublicKey(), mint, solana.NewWallet().PublicKey()},
		Data:      burnInstructionData(amount),
		TopLevel:  true,
	}
}

func newRegistry(t *testing.T, mint string) *asset.Registry {
	t.Helper()
	r, err := asset.New([]asset.Entry{{Mint: mint, Asset: asset.XENCAT, Name: "xencat"}})
	if err != nil {
		t.Fatalf("asset.New: %v", err)
	}
	return r
}

func TestDetectBurnHappyPath(t *testing.T) {
	var user [32]byte
	user[0] = 7
	mint := solana.NewWallet().PublicKey()

	rpc := &fakeRPC{
		accountData: encodeRecord(user, 10_000, 180),
		tx: &solanarpc.Transaction{
			Slot:         500,
			Instructions: []solanarpc.Instruction{burnIx(mint, 10_000)},
		},
	}

	observer := New(rpc, newRegistry(t, mint.String()), []byte("burn-program"))
	detected, err := observer.DetectBurn(context.Background(), 180)
	if err != nil {
		t.Fatalf("DetectBurn: %v", err)
	}
	if detected.Amount != 10_000 || detected.User != user || detected.Slot != 500 {
		t.Fatalf("unexpected detected burn: %+v", detected)
	}
}

func TestDetectBurnRejectsAmbiguousBurn(t *testing.T) {
	var user [32]byte
	mint := solana.NewWallet().PublicKey()

	rpc := &fakeRPC{
		accountData: encodeRecord(user, 10_000, 180),
		tx: &solanarpc.Transaction{
			Slot: 500,
			Instructions: []solanarpc.Instruction{
				burnIx(mint, 10_000),
				burnIx(mint, 5_000),
			},
		},
	}

	observer := New(rpc, newRegistry(t, mint.String()), []byte("burn-program"))
	_, err := observer.DetectBurn(context.Background(), 180)
	if bridgeerr.KindOf(err) != bridgeerr.KindAmbiguousBurn {
		t.Fatalf("Kind = %v, want KindAmbiguousBurn", bridgeerr.KindOf(err))
	}
}

func TestDetectBurnRejectsNoBurn(t *testing.T) {
	var user [32]byte
	mint := solana.NewWallet().PublicKey()

	rpc := &fakeRPC{
		accountData: encodeRecord(user, 10_000, 180),
		tx: &solanarpc.Transaction{
			Slot:         500,
			Instructions: []solanarpc.Instruction{},
		},
	}

	observer := New(rpc, newRegistry(t, mint.String()), []byte("burn-program"))
	_, err := observer.DetectBurn(context.Background(), 180)
	if bridgeerr.KindOf(err) != bridgeerr.KindNoBurnFound {
		t.Fatalf("Kind = %v, want KindNoBurnFound", bridgeerr.KindOf(err))
	}
}

func TestDetectBurnRejectsUnknownMint(t *testing.T) {
	var user [32]byte
	mint := solana.NewWallet().PublicKey()
	otherMint := solana.NewWallet().PublicKey()

	rpc := &fakeRPC{
		accountData: encodeRecord(user, 10_000, 180),
		tx: &solanarpc.Transaction{
			Slot:         500,
			Instructions: []solanarpc.Instruction{burnIx(otherMint, 10_000)},
		},
	}

	observer := New(rpc, newRegistry(t, mint.String()), []byte("burn-program"))
	_, err := observer.DetectBurn(context.Background(), 180)
	if bridgeerr.KindOf(err) != bridgeerr.KindUnknownAsset {
		t.Fatalf("Kind = %v, want KindUnknownAsset", bridgeerr.KindOf(err))
	}
}
