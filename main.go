// Copyright 2025 Certen Protocol

package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/attestation"
	"github.com/xencat-protocol/bridge-validator/pkg/audit"
	"github.com/xencat-protocol/bridge-validator/pkg/burn"
	"github.com/xencat-protocol/bridge-validator/pkg/chain/solanarpc"
	"github.com/xencat-protocol/bridge-validator/pkg/config"
	"github.com/xencat-protocol/bridge-validator/pkg/finality"
	"github.com/xencat-protocol/bridge-validator/pkg/metrics"
	"github.com/xencat-protocol/bridge-validator/pkg/mint"
	"github.com/xencat-protocol/bridge-validator/pkg/server"
	"github.com/xencat-protocol/bridge-validator/pkg/store"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
	"github.com/xencat-protocol/bridge-validator/pkg/verifier"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("starting bridge validator")

	var (
		listenAddr  = flag.String("listen", "", "HTTP listen address (overrides LISTEN_ADDR env var)")
		showHelp    = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *showHelp {
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	privKeyBytes, err := hex.DecodeString(cfg.ValidatorPrivateKeyHex)
	if err != nil {
		log.Fatalf("failed to decode VALIDATOR_PRIVATE_KEY: %v", err)
	}
	signer, err := attestation.NewSigner(ed25519.PrivateKey(privKeyBytes))
	if err != nil {
		log.Fatalf("failed to initialize signer: %v", err)
	}
	log.Printf("validator public key: %s", hex.EncodeToString(signer.PublicKey()))

	registry, err := asset.LoadFile(cfg.AssetRegistryPath)
	if err != nil {
		log.Fatalf("failed to load asset registry from %s: %v", cfg.AssetRegistryPath, err)
	}

	burnProgramID, err := hex.DecodeString(cfg.BurnProgramIDHex)
	if err != nil {
		log.Fatalf("failed to decode BURN_PROGRAM_ID: %v", err)
	}

	rpcClient := solanarpc.New(cfg.SourceRPCEndpoint, rpc.CommitmentConfirmed)
	observer := burn.New(rpcClient, registry, burnProgramID)
	gate := finality.New(rpcClient, cfg.FinalitySlots)

	kvdb, err := store.OpenDB(cfg.StoreDataDir)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	db := store.New(store.NewDBAdapter(kvdb))
	validators := validatorset.NewRegistry(db)
	v := verifier.New(db, validators)
	ledger := mint.NewKVLedger(db)
	mintProg := mint.New(db, validators, ledger)

	var auditRepo *audit.Repository
	if cfg.DatabaseURL != "" {
		auditClient, err := audit.NewClient(cfg.DatabaseURL)
		if err != nil {
			if cfg.DatabaseRequired {
				log.Fatalf("audit database connection required but failed: %v", err)
			}
			log.Printf("audit database connection failed, running without an audit trail: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := auditClient.EnsureSchema(ctx); err != nil {
				log.Printf("audit schema setup failed, running without an audit trail: %v", err)
			} else {
				auditRepo = audit.NewRepository(auditClient)
				log.Printf("audit trail enabled")
			}
			cancel()
		}
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	srv := server.New(observer, gate, signer, registry, validators, v, mintProg, auditRepo, m, cfg.SourceRPCEndpoint,
		log.New(log.Writer(), "[AttestationServer] ", log.LstdFlags))

	mux := srv.Mux()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		log.Printf("attestation server listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("attestation server failed: %v", err)
		}
	}()
	go func() {
		log.Printf("metrics server listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("attestation server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}
