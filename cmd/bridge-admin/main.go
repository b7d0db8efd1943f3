// Bridge Admin CLI
// Initializes and updates the validator set and per-asset mint programs
// against the same on-disk store the validator server reads.

package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/config"
	"github.com/xencat-protocol/bridge-validator/pkg/mint"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	kvdb, err := store.OpenDB(cfg.StoreDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open store: %v\n", err)
		os.Exit(1)
	}
	db := store.New(store.NewDBAdapter(kvdb))
	registry := validatorset.NewRegistry(db)

	switch os.Args[1] {
	case "init-validator-set":
		runInitValidatorSet(registry, os.Args[2:])
	case "update-validator-set":
		runUpdateValidatorSet(registry, os.Args[2:])
	case "init-mint":
		runInitMint(db, registry, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage:
  bridge-admin init-validator-set -validators=hex1,hex2,... -threshold=N
  bridge-admin update-validator-set -validators=hex1,hex2,... -threshold=N
  bridge-admin init-mint -asset=ID -validator-set-version=N -fee-per-validator=N`)
}

func parsePubkeys(csv string) ([]validatorset.Record, error) {
	parts := strings.Split(csv, ",")
	records := make([]validatorset.Record, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		raw, err := hex.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("invalid hex public key %q: %w", p, err)
		}
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("public key %q has length %d, want %d", p, len(raw), ed25519.PublicKeySize)
		}
		records = append(records, validatorset.Record{PublicKey: raw})
	}
	return records, nil
}

func runInitValidatorSet(registry *validatorset.Registry, args []string) {
	fs := flag.NewFlagSet("init-validator-set", flag.ExitOnError)
	validators := fs.String("validators", "", "comma-separated hex-encoded Ed25519 public keys")
	threshold := fs.Int("threshold", 0, "minimum distinct attestations required")
	fs.Parse(args)

	records, err := parsePubkeys(*validators)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	set, err := registry.Initialize(records, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: initialize validator set: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("validator set initialized: version=%d validators=%d threshold=%d\n", set.Version, len(set.Validators), set.Threshold)
}

func runUpdateValidatorSet(registry *validatorset.Registry, args []string) {
	fs := flag.NewFlagSet("update-validator-set", flag.ExitOnError)
	validators := fs.String("validators", "", "comma-separated hex-encoded Ed25519 public keys")
	threshold := fs.Int("threshold", 0, "minimum distinct attestations required")
	fs.Parse(args)

	records, err := parsePubkeys(*validators)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	set, err := registry.Update(records, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: update validator set: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("validator set updated: version=%d validators=%d threshold=%d\n", set.Version, len(set.Validators), set.Threshold)
}

func runInitMint(db *store.Store, registry *validatorset.Registry, args []string) {
	fs := flag.NewFlagSet("init-mint", flag.ExitOnError)
	assetID := fs.Int("asset", 0, "asset id")
	versionPin := fs.Uint64("validator-set-version", 0, "validator set version to pin this mint program to")
	feePerValidator := fs.Uint64("fee-per-validator", 0, "fee distributed to each validator per mint")
	fs.Parse(args)

	program := mint.New(db, registry, nil)
	state, err := program.Initialize(asset.ID(*assetID), *versionPin, *feePerValidator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: initialize mint program: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("mint program initialized: asset=%s version_pin=%d fee_per_validator=%d\n",
		state.AssetID, state.ValidatorSetVersionPin, state.FeePerValidator)
}
