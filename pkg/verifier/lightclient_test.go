package verifier

import (
	"crypto/ed25519"
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/attestation"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
)

func generateKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	t.Helper()
	return ed25519.GenerateKey(nil)
}

type harness struct {
	verifier   *Verifier
	validators *validatorset.Registry
	signers    []*attestation.Signer
	store      *store.Store
}

func newHarness(t *testing.T, n, threshold int) harness {
	t.Helper()
	s := store.New(store.NewDBAdapter(dbm.NewMemDB()))
	vreg := validatorset.NewRegistry(s)

	records := make([]validatorset.Record, n)
	signers := make([]*attestation.Signer, n)
	for i := 0; i < n; i++ {
		pub, priv, err := generateKey(t)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		records[i] = validatorset.Record{PublicKey: pub}
		signer, err := attestation.NewSigner(priv)
		if err != nil {
			t.Fatalf("NewSigner: %v", err)
		}
		signers[i] = signer
	}
	if _, err := vreg.Initialize(records, threshold); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	return harness{
		verifier:   New(s, vreg),
		validators: vreg,
		signers:    signers,
		store:      s,
	}
}

func sign(t *testing.T, signers []*attestation.Signer, indices []int, assetID asset.ID, burnNonce, amount, version uint64, user [32]byte) []attestation.Attestation {
	t.Helper()
	out := make([]attestation.Attestation, 0, len(indices))
	for _, i := range indices {
		att, err := signers[i].Sign(assetID, burnNonce, user, amount, version)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		out = append(out, *att)
	}
	return out
}

func TestSubmitBurnAttestationHappyPath(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte
	user[0] = 9

	payload := attestation.Payload{
		User:                user,
		Amount:              10_000,
		ValidatorSetVersion: 1,
		Attestations:        sign(t, h.signers, []int{0, 1, 2}, asset.XENCAT, 180, 10_000, 1, user),
	}

	vb, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if err != nil {
		t.Fatalf("SubmitBurnAttestation: %v", err)
	}
	if vb.Amount != 10_000 || vb.User != user {
		t.Fatalf("unexpected VerifiedBurn: %+v", vb)
	}
}

func TestSubmitBurnAttestationRejectsReplay(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte

	payload := attestation.Payload{
		User:                user,
		Amount:              10_000,
		ValidatorSetVersion: 1,
		Attestations:        sign(t, h.signers, []int{0, 1, 2}, asset.XENCAT, 180, 10_000, 1, user),
	}

	if _, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	_, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if bridgeerr.KindOf(err) != bridgeerr.KindAlreadyVerified {
		t.Fatalf("Kind = %v, want KindAlreadyVerified", bridgeerr.KindOf(err))
	}
}

func TestSubmitBurnAttestationRejectsBelowThreshold(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte

	payload := attestation.Payload{
		User:                user,
		Amount:              10_000,
		ValidatorSetVersion: 1,
		Attestations:        sign(t, h.signers, []int{0, 1}, asset.XENCAT, 180, 10_000, 1, user),
	}

	_, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if bridgeerr.KindOf(err) != bridgeerr.KindInsufficientAttestations {
		t.Fatalf("Kind = %v, want KindInsufficientAttestations", bridgeerr.KindOf(err))
	}
}

func TestSubmitBurnAttestationRejectsDuplicateValidator(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte

	atts := sign(t, h.signers, []int{0, 1}, asset.XENCAT, 180, 10_000, 1, user)
	atts = append(atts, atts[0])

	payload := attestation.Payload{User: user, Amount: 10_000, ValidatorSetVersion: 1, Attestations: atts}
	_, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if bridgeerr.KindOf(err) != bridgeerr.KindDuplicateValidator {
		t.Fatalf("Kind = %v, want KindDuplicateValidator", bridgeerr.KindOf(err))
	}
}

func TestSubmitBurnAttestationRejectsUnknownValidator(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte

	_, outsiderPriv, err := generateKey(t)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	outsider, err := attestation.NewSigner(outsiderPriv)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	atts := sign(t, h.signers, []int{0, 1}, asset.XENCAT, 180, 10_000, 1, user)
	atts = append(atts, sign(t, []*attestation.Signer{outsider}, []int{0}, asset.XENCAT, 180, 10_000, 1, user)...)

	payload := attestation.Payload{User: user, Amount: 10_000, ValidatorSetVersion: 1, Attestations: atts}
	_, err = h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if bridgeerr.KindOf(err) != bridgeerr.KindUnknownValidator {
		t.Fatalf("Kind = %v, want KindUnknownValidator", bridgeerr.KindOf(err))
	}
}

func TestSubmitBurnAttestationRejectsVersionMismatch(t *testing.T) {
	h := newHarness(t, 5, 3)
	var user [32]byte

	payload := attestation.Payload{
		User:                user,
		Amount:              10_000,
		ValidatorSetVersion: 99,
		Attestations:        sign(t, h.signers, []int{0, 1, 2}, asset.XENCAT, 180, 10_000, 99, user),
	}

	_, err := h.verifier.SubmitBurnAttestation(asset.XENCAT, 180, payload)
	if bridgeerr.KindOf(err) != bridgeerr.KindVersionMismatch {
		t.Fatalf("Kind = %v, want KindVersionMismatch", bridgeerr.KindOf(err))
	}
}
