// Copyright 2025 Certen Protocol
//
// OpenDB opens the shared goleveldb directory backing keyed on-chain-style
// storage, the same database.NewClient-style "one constructor, validated
// inputs" pattern as this repo's teacher's pkg/database.Client.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	dbm "github.com/cometbft/cometbft-db"
)

// OpenDB opens (creating if necessary) a goleveldb database at dataDir,
// named "bridge".
func OpenDB(dataDir string) (dbm.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir %s: %w", dataDir, err)
	}
	db, err := dbm.NewGoLevelDB("bridge", dataDir)
	if err != nil {
		return nil, fmt.Errorf("store: open goleveldb at %s: %w", filepath.Join(dataDir, "bridge.db"), err)
	}
	return db, nil
}
