package asset

import "testing"

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New([]Entry{
		{Mint: "XenCatMint1111111111111111111111111111111", Asset: XENCAT, Name: "XenCat"},
		{Mint: "DgnMint11111111111111111111111111111111111", Asset: DGN, Name: "Degen"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestAssetOf(t *testing.T) {
	r := testRegistry(t)

	t.Run("known mint", func(t *testing.T) {
		id, err := r.AssetOf("XenCatMint1111111111111111111111111111111")
		if err != nil {
			t.Fatalf("AssetOf: %v", err)
		}
		if id != XENCAT {
			t.Fatalf("got asset %v, want XENCAT", id)
		}
	})

	t.Run("unknown mint", func(t *testing.T) {
		_, err := r.AssetOf("NotRegistered")
		if err == nil {
			t.Fatalf("expected error for unknown mint")
		}
	})
}

func TestNameOf(t *testing.T) {
	r := testRegistry(t)
	if got := r.NameOf(XENCAT); got != "XenCat" {
		t.Fatalf("NameOf(XENCAT) = %q, want %q", got, "XenCat")
	}
	if got := r.NameOf(ID(99)); got != "asset(99)" {
		t.Fatalf("NameOf(unregistered) = %q, want fallback form", got)
	}
}

func TestNewDuplicateMint(t *testing.T) {
	_, err := New([]Entry{
		{Mint: "Dup", Asset: XENCAT},
		{Mint: "Dup", Asset: DGN},
	})
	if err == nil {
		t.Fatalf("expected duplicate-mint error")
	}
}
