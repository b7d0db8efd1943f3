// Copyright 2025 Certen Protocol
//
// Config reads the validator's runtime configuration from environment
// variables, in the same getEnv/getEnvInt/Validate style as this repo's
// teacher's pkg/config.Config.

package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the bridge validator service.
type Config struct {
	// Identity
	ValidatorPrivateKeyHex string // VALIDATOR_PRIVATE_KEY: hex-encoded 64-byte Ed25519 private key
	ValidatorLabel         string

	// Source chain
	SourceRPCEndpoint string // SOURCE_RPC
	BurnProgramIDHex  string // BURN_PROGRAM_ID
	FinalitySlots     uint64 // FINALITY_SLOTS, default 32

	// Server
	ListenAddr  string // LISTEN_ADDR, host:port
	MetricsAddr string // METRICS_ADDR

	// Asset registry
	AssetRegistryPath string // ASSET_REGISTRY_PATH, YAML file per pkg/asset.LoadFile

	// Keyed on-chain-style storage (ValidatorSet, MintState, VerifiedBurn,
	// ProcessedBurn), shared by the validator server and the bridge-admin
	// CLI via a goleveldb directory on disk.
	StoreDataDir string // STORE_DATA_DIR

	// Audit database (optional)
	DatabaseURL      string
	DatabaseRequired bool

	LogLevel string
}

// Load reads configuration from environment variables, applying the same
// defaults-for-safe-values / empty-for-secrets discipline as the teacher.
func Load() (*Config, error) {
	cfg := &Config{
		ValidatorPrivateKeyHex: getEnv("VALIDATOR_PRIVATE_KEY", ""),
		ValidatorLabel:         getEnv("VALIDATOR_LABEL", "validator"),

		SourceRPCEndpoint: getEnv("SOURCE_RPC", ""),
		BurnProgramIDHex:  getEnv("BURN_PROGRAM_ID", ""),
		FinalitySlots:     getEnvUint64("FINALITY_SLOTS", 32),

		ListenAddr:  getEnv("LISTEN_ADDR", "0.0.0.0:"+getEnv("LISTEN_PORT", "8080")),
		MetricsAddr: getEnv("METRICS_ADDR", "0.0.0.0:"+getEnv("METRICS_PORT", "9090")),

		AssetRegistryPath: getEnv("ASSET_REGISTRY_PATH", "./asset_registry.yaml"),
		StoreDataDir:      getEnv("STORE_DATA_DIR", "./data/bridge-store"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseRequired: getEnvBool("DATABASE_REQUIRED", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate checks that all required configuration is present before the
// service starts accepting requests.
func (c *Config) Validate() error {
	var errs []string

	if c.ValidatorPrivateKeyHex == "" {
		errs = append(errs, "VALIDATOR_PRIVATE_KEY is required but not set")
	} else if _, err := hex.DecodeString(c.ValidatorPrivateKeyHex); err != nil {
		errs = append(errs, fmt.Sprintf("VALIDATOR_PRIVATE_KEY is not valid hex: %v", err))
	}

	if c.SourceRPCEndpoint == "" {
		errs = append(errs, "SOURCE_RPC is required but not set")
	}
	if c.BurnProgramIDHex == "" {
		errs = append(errs, "BURN_PROGRAM_ID is required but not set")
	}
	if c.FinalitySlots == 0 {
		errs = append(errs, "FINALITY_SLOTS must be greater than zero")
	}
	if c.DatabaseRequired && c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required but not set (DATABASE_REQUIRED=true)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
