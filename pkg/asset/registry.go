// Copyright 2025 Certen Protocol
//
// Asset Registry (C1) - static mint -> asset mapping
// Per spec §4.1: a config-driven table mapping source-chain mint address to
// a stable, frozen-forever 8-bit Asset code. Authoritative for both the
// off-chain observer and any on-chain sanity checks.

package asset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
)

// ID is the stable 8-bit numeric representation of a bridged asset.
// Existing codes are frozen forever; new variants may only be appended.
type ID uint8

const (
	XENCAT ID = 1
	DGN    ID = 2
)

func (a ID) String() string {
	switch a {
	case XENCAT:
		return "XENCAT"
	case DGN:
		return "DGN"
	default:
		return fmt.Sprintf("asset(%d)", uint8(a))
	}
}

// Entry is one row of the registry: a source-chain mint address (base58)
// mapped to its Asset code, plus a human label for logging.
type Entry struct {
	Mint  string `yaml:"mint"`
	Asset ID     `yaml:"asset_id"`
	Name  string `yaml:"name"`
}

// File is the on-disk YAML shape loaded by LoadFile, mirroring the teacher's
// config/anchor_config.go struct-tag-driven YAML loading.
type File struct {
	Assets []Entry `yaml:"assets"`
}

// Registry is the compile-time-or-config table described in spec §4.1.
// It is immutable after construction; additions are explicit registry
// changes (a new Entry), never a runtime mutation.
type Registry struct {
	byMint map[string]ID
	names  map[ID]string
}

// New builds a Registry from explicit entries.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		byMint: make(map[string]ID, len(entries)),
		names:  make(map[ID]string, len(entries)),
	}
	for _, e := range entries {
		if e.Mint == "" {
			return nil, fmt.Errorf("asset registry: entry for asset %d has empty mint", e.Asset)
		}
		if _, exists := r.byMint[e.Mint]; exists {
			return nil, fmt.Errorf("asset registry: duplicate mint %q", e.Mint)
		}
		r.byMint[e.Mint] = e.Asset
		name := e.Name
		if name == "" {
			name = e.Asset.String()
		}
		r.names[e.Asset] = name
	}
	return r, nil
}

// LoadFile reads a YAML registry file from disk, in the style of the
// teacher's AnchorConfig loader.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset registry: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("asset registry: parse %s: %w", path, err)
	}
	return New(f.Assets)
}

// AssetOf resolves a source-chain mint address to its Asset code.
// Fails with bridgeerr.KindUnknownAsset for any mint not in the table.
func (r *Registry) AssetOf(mint string) (ID, error) {
	id, ok := r.byMint[mint]
	if !ok {
		return 0, bridgeerr.Newf(bridgeerr.KindUnknownAsset, "mint %q is not registered", mint)
	}
	return id, nil
}

// NameOf returns the human-readable name for an Asset, falling back to its
// numeric String() form if no explicit label was registered.
func (r *Registry) NameOf(id ID) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return id.String()
}

// Entries returns all registered assets and their names, for /health and
// /asset-registry introspection.
func (r *Registry) Entries() map[ID]string {
	out := make(map[ID]string, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}
