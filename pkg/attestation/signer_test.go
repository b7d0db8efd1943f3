package attestation

import (
	"crypto/ed25519"
	"testing"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/canonical"
)

func TestSignProducesVerifiableSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := NewSigner(priv)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	var user [32]byte
	user[0] = 7

	att, err := signer.Sign(asset.XENCAT, 180, user, 10_000, 1)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	fields := canonical.Fields{AssetID: asset.XENCAT, ValidatorSetVersion: 1, BurnNonce: 180, Amount: 10_000, User: user}
	digest := fields.Digest()

	if !ed25519.Verify(pub, digest[:], att.Signature) {
		t.Fatalf("signature does not verify against canonical digest")
	}
	if string(att.ValidatorPubkey) != string(pub) {
		t.Fatalf("attestation carries wrong public key")
	}
}

func TestSignTamperedFieldInvalidatesSignature(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	signer, _ := NewSigner(priv)

	var user [32]byte
	att, err := signer.Sign(asset.XENCAT, 180, user, 10_000, 1)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := canonical.Fields{AssetID: asset.XENCAT, ValidatorSetVersion: 1, BurnNonce: 180, Amount: 10_001, User: user}
	digest := tampered.Digest()

	if ed25519.Verify(pub, digest[:], att.Signature) {
		t.Fatalf("signature must not verify against a different amount")
	}
}

func TestNewSignerRejectsWrongKeySize(t *testing.T) {
	if _, err := NewSigner(make([]byte, 10)); err == nil {
		t.Fatalf("expected error for undersized key")
	}
}
