package mint

import (
	"crypto/ed25519"
	"errors"
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
	"github.com/xencat-protocol/bridge-validator/pkg/verifier"
)

type fakeLedger struct {
	transfers []uint64
	minted    map[[32]byte]uint64
	failMint  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{minted: make(map[[32]byte]uint64)}
}

func (f *fakeLedger) Transfer(payer, payee ed25519.PublicKey, amount uint64) error {
	f.transfers = append(f.transfers, amount)
	return nil
}

func (f *fakeLedger) MintTo(user [32]byte, amount uint64) error {
	if f.failMint {
		return errors.New("mint failed")
	}
	f.minted[user] += amount
	return nil
}

type testSetup struct {
	program    *Program
	validators *validatorset.Registry
	verifier   *verifier.Verifier
	store      *store.Store
	ledger     *fakeLedger
	pubkeys    []ed25519.PublicKey
}

func setup(t *testing.T, n, threshold int) testSetup {
	t.Helper()
	s := store.New(store.NewDBAdapter(dbm.NewMemDB()))
	vreg := validatorset.NewRegistry(s)

	records := make([]validatorset.Record, n)
	pubkeys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		records[i] = validatorset.Record{PublicKey: pub}
		pubkeys[i] = pub
	}
	if _, err := vreg.Initialize(records, threshold); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ledger := newFakeLedger()
	return testSetup{
		program:    New(s, vreg, ledger),
		validators: vreg,
		verifier:   verifier.New(s, vreg),
		store:      s,
		ledger:     ledger,
		pubkeys:    pubkeys,
	}
}

func (ts testSetup) createVerifiedBurn(t *testing.T, assetID asset.ID, user [32]byte, burnNonce, amount uint64) {
	t.Helper()
	vb := &verifier.VerifiedBurn{AssetID: assetID, User: user, Amount: amount}
	key := store.VerifiedBurnKey(uint8(assetID), user, burnNonce)
	if err := ts.store.CreateIfAbsent(key, vb); err != nil {
		t.Fatalf("seed VerifiedBurn: %v", err)
	}
}

func TestMintFromBurnHappyPath(t *testing.T) {
	ts := setup(t, 3, 2)
	var user [32]byte
	user[0] = 5

	if _, err := ts.program.Initialize(asset.XENCAT, 1, 50); err != nil {
		t.Fatalf("Initialize mint state: %v", err)
	}
	ts.createVerifiedBurn(t, asset.XENCAT, user, 180, 10_000)

	payer, _, _ := ed25519.GenerateKey(nil)
	processed, err := ts.program.MintFromBurn(asset.XENCAT, user, 180, payer, ts.pubkeys)
	if err != nil {
		t.Fatalf("MintFromBurn: %v", err)
	}
	if processed.Amount != 10_000 {
		t.Fatalf("Amount = %d, want 10000", processed.Amount)
	}
	if ts.ledger.minted[user] != 10_000 {
		t.Fatalf("minted = %d, want 10000", ts.ledger.minted[user])
	}
	if len(ts.ledger.transfers) != 3 {
		t.Fatalf("transfers = %d, want 3", len(ts.ledger.transfers))
	}
}

func TestMintFromBurnRejectsWrongAsset(t *testing.T) {
	ts := setup(t, 3, 2)
	var user [32]byte

	if _, err := ts.program.Initialize(asset.XENCAT, 1, 0); err != nil {
		t.Fatalf("Initialize mint state: %v", err)
	}
	ts.createVerifiedBurn(t, asset.DGN, user, 180, 10_000)

	payer, _, _ := ed25519.GenerateKey(nil)
	_, err := ts.program.MintFromBurn(asset.DGN, user, 180, payer, ts.pubkeys)
	if bridgeerr.KindOf(err) != bridgeerr.KindAssetNotMintable {
		t.Fatalf("Kind = %v, want KindAssetNotMintable", bridgeerr.KindOf(err))
	}
}

func TestMintFromBurnRejectsReplay(t *testing.T) {
	ts := setup(t, 3, 2)
	var user [32]byte

	if _, err := ts.program.Initialize(asset.XENCAT, 1, 0); err != nil {
		t.Fatalf("Initialize mint state: %v", err)
	}
	ts.createVerifiedBurn(t, asset.XENCAT, user, 180, 10_000)

	payer, _, _ := ed25519.GenerateKey(nil)
	if _, err := ts.program.MintFromBurn(asset.XENCAT, user, 180, payer, ts.pubkeys); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	_, err := ts.program.MintFromBurn(asset.XENCAT, user, 180, payer, ts.pubkeys)
	if bridgeerr.KindOf(err) != bridgeerr.KindAlreadyProcessed {
		t.Fatalf("Kind = %v, want KindAlreadyProcessed", bridgeerr.KindOf(err))
	}
}

func TestMintFromBurnRejectsVersionDrift(t *testing.T) {
	ts := setup(t, 3, 2)
	var user [32]byte

	if _, err := ts.program.Initialize(asset.XENCAT, 1, 0); err != nil {
		t.Fatalf("Initialize mint state: %v", err)
	}
	ts.createVerifiedBurn(t, asset.XENCAT, user, 180, 10_000)

	newValidators := make([]validatorset.Record, 3)
	for i := range newValidators {
		pub, _, _ := ed25519.GenerateKey(nil)
		newValidators[i] = validatorset.Record{PublicKey: pub}
	}
	if _, err := ts.validators.Update(newValidators, 2); err != nil {
		t.Fatalf("Update: %v", err)
	}

	payer, _, _ := ed25519.GenerateKey(nil)
	_, err := ts.program.MintFromBurn(asset.XENCAT, user, 180, payer, ts.pubkeys)
	if bridgeerr.KindOf(err) != bridgeerr.KindValidatorSetVersionDrift {
		t.Fatalf("Kind = %v, want KindValidatorSetVersionDrift", bridgeerr.KindOf(err))
	}
}

func TestMintFromBurnRejectsMissingVerifiedBurn(t *testing.T) {
	ts := setup(t, 3, 2)
	var user [32]byte

	if _, err := ts.program.Initialize(asset.XENCAT, 1, 0); err != nil {
		t.Fatalf("Initialize mint state: %v", err)
	}

	payer, _, _ := ed25519.GenerateKey(nil)
	_, err := ts.program.MintFromBurn(asset.XENCAT, user, 180, payer, ts.pubkeys)
	if bridgeerr.KindOf(err) != bridgeerr.KindBurnNotFound {
		t.Fatalf("Kind = %v, want KindBurnNotFound", bridgeerr.KindOf(err))
	}
}
