// Copyright 2025 Certen Protocol
//
// Attestation HTTP surface (C5) - an HTTP service in the style
// of this repo's teacher's pkg/server: bracketed-prefix log.Logger,
// http.ServeMux routing with no framework, writeJSONError helpers.
package server

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/attestation"
	"github.com/xencat-protocol/bridge-validator/pkg/audit"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/burn"
	"github.com/xencat-protocol/bridge-validator/pkg/canonical"
	"github.com/xencat-protocol/bridge-validator/pkg/finality"
	"github.com/xencat-protocol/bridge-validator/pkg/metrics"
	"github.com/xencat-protocol/bridge-validator/pkg/mint"
	"github.com/xencat-protocol/bridge-validator/pkg/validatorset"
	"github.com/xencat-protocol/bridge-validator/pkg/verifier"
)

// Server wires the C2 -> C3 -> C4 pipeline behind HTTP handlers, plus the
// C7/C8 on-chain-program operations (verify, mint) modeled as ordinary
// endpoints over the same keyed store.
type Server struct {
	observer   *burn.Observer
	gate       *finality.Gate
	signer     *attestation.Signer
	registry   *asset.Registry
	validators *validatorset.Registry
	verifier   *verifier.Verifier // optional; nil disables /submit-attestation
	mintProg   *mint.Program      // optional; nil disables /mint-from-burn
	audit      *audit.Repository  // optional; nil disables audit recording
	metrics    *metrics.Metrics   // optional; nil disables metric emission
	sourceRPC  string
	logger     *log.Logger
}

// New builds a Server. verifier, mintProg, auditRepo, and m may all be nil.
func New(
	observer *burn.Observer,
	gate *finality.Gate,
	signer *attestation.Signer,
	registry *asset.Registry,
	validators *validatorset.Registry,
	v *verifier.Verifier,
	mintProg *mint.Program,
	auditRepo *audit.Repository,
	m *metrics.Metrics,
	sourceRPC string,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[AttestationServer] ", log.LstdFlags)
	}
	return &Server{
		observer:   observer,
		gate:       gate,
		signer:     signer,
		registry:   registry,
		validators: validators,
		verifier:   v,
		mintProg:   mintProg,
		audit:      auditRepo,
		metrics:    m,
		sourceRPC:  sourceRPC,
		logger:     logger,
	}
}

// Mux builds the HTTP route table.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/attest-burn", s.handleAttestBurn)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/validator-set", s.handleValidatorSet)
	mux.HandleFunc("/asset-registry", s.handleAssetRegistry)
	mux.HandleFunc("/submit-attestation", s.handleSubmitAttestation)
	mux.HandleFunc("/mint-from-burn", s.handleMintFromBurn)
	return mux
}

// attestBurnRequest is the wire shape of POST /attest-burn.
type attestBurnRequest struct {
	BurnNonce           uint64 `json:"burn_nonce"`
	User                string `json:"user"` // hex-encoded 32 bytes
	ExpectedAmount      uint64 `json:"expected_amount"`
	ValidatorSetVersion uint64 `json:"validator_set_version"`
}

// attestBurnResponse is the wire shape of a successful /attest-burn reply.
type attestBurnResponse struct {
	AssetID             uint8     `json:"asset_id"`
	AssetName           string    `json:"asset_name"`
	BurnNonce           uint64    `json:"burn_nonce"`
	User                string    `json:"user"`
	Amount              uint64    `json:"amount"`
	ValidatorSetVersion uint64    `json:"validator_set_version"`
	ValidatorPubkey     string    `json:"validator_pubkey"`
	Signature           string    `json:"signature"`
	Timestamp           time.Time `json:"timestamp"`
}

func (s *Server) handleAttestBurn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req attestBurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userBytes, err := hex.DecodeString(req.User)
	if err != nil || len(userBytes) != canonical.UserPubkeyLen {
		writeJSONError(w, "user must be 32 bytes hex-encoded", http.StatusBadRequest)
		return
	}
	var user [32]byte
	copy(user[:], userBytes)

	outcome, err := s.runPipeline(r.Context(), req, user)
	s.recordOutcome(r.Context(), req, user, outcome, err)

	if err != nil {
		s.writeBridgeError(w, err)
		if s.metrics != nil {
			s.metrics.AttestBurnRequests.WithLabelValues(string(bridgeerr.KindOf(err))).Inc()
			s.metrics.AttestBurnLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		}
		return
	}

	json.NewEncoder(w).Encode(outcome)
	if s.metrics != nil {
		s.metrics.AttestBurnRequests.WithLabelValues("Success").Inc()
		s.metrics.AttestBurnLatency.WithLabelValues("success").Observe(time.Since(start).Seconds())
	}
}

func (s *Server) runPipeline(ctx context.Context, req attestBurnRequest, user [32]byte) (*attestBurnResponse, error) {
	detected, err := s.observer.DetectBurn(ctx, req.BurnNonce)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BurnsDetected.Inc()
	}

	if detected.User != user {
		return nil, bridgeerr.New(bridgeerr.KindUserMismatch, "detected burn's user does not match the request")
	}
	if detected.Amount != req.ExpectedAmount {
		return nil, bridgeerr.Newf(bridgeerr.KindAmountMismatch, "true amount is %d", detected.Amount).
			WithContext(map[string]any{"true_amount": detected.Amount})
	}

	if err := s.gate.EnforceFinality(ctx, detected.Slot); err != nil {
		if s.metrics != nil && bridgeerr.KindOf(err) == bridgeerr.KindNotFinal {
			s.metrics.FinalityRejections.Inc()
		}
		return nil, err
	}

	att, err := s.signer.Sign(detected.AssetID, req.BurnNonce, user, detected.Amount, req.ValidatorSetVersion)
	if err != nil {
		return nil, err
	}

	return &attestBurnResponse{
		AssetID:             uint8(detected.AssetID),
		AssetName:           s.registry.NameOf(detected.AssetID),
		BurnNonce:           req.BurnNonce,
		User:                req.User,
		Amount:              detected.Amount,
		ValidatorSetVersion: req.ValidatorSetVersion,
		ValidatorPubkey:     hex.EncodeToString(att.ValidatorPubkey),
		Signature:           hex.EncodeToString(att.Signature),
		Timestamp:           att.Timestamp,
	}, nil
}

func (s *Server) recordOutcome(ctx context.Context, req attestBurnRequest, user [32]byte, outcome *attestBurnResponse, err error) {
	if s.audit == nil {
		return
	}

	entry := audit.Entry{
		RequestID:           uuid.New(),
		BurnNonce:           req.BurnNonce,
		UserPubkey:          user,
		Amount:              req.ExpectedAmount,
		ValidatorSetVersion: req.ValidatorSetVersion,
		OutcomeKind:         "Success",
	}
	if err != nil {
		entry.OutcomeKind = bridgeerr.KindOf(err)
	} else if outcome != nil {
		entry.AssetID = asset.ID(outcome.AssetID)
		if pub, decErr := hex.DecodeString(outcome.ValidatorPubkey); decErr == nil {
			entry.ValidatorPubkey = pub
		}
		if sig, decErr := hex.DecodeString(outcome.Signature); decErr == nil {
			entry.Signature = sig
		}
	}

	if recErr := s.audit.Record(ctx, entry); recErr != nil {
		s.logger.Printf("audit record failed: %v", recErr)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{
		"validator_pubkey": hex.EncodeToString(s.signer.PublicKey()),
		"asset_registry":   s.registry.Entries(),
		"source_rpc":       s.sourceRPC,
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleValidatorSet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	set, err := s.validators.Current()
	if err != nil {
		s.writeBridgeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ValidatorSetVersion.Set(float64(set.Version))
	}
	json.NewEncoder(w).Encode(set)
}

func (s *Server) handleAssetRegistry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.registry.Entries())
}

// submitAttestationRequest is the wire shape of POST /submit-attestation,
// mirroring spec §4.7's submit_burn_attestation_v3 payload.
type submitAttestationRequest struct {
	AssetID             uint8             `json:"asset_id"`
	BurnNonce           uint64            `json:"burn_nonce"`
	User                string            `json:"user"`
	Amount              uint64            `json:"amount"`
	ValidatorSetVersion uint64            `json:"validator_set_version"`
	Attestations        []wireAttestation `json:"attestations"`
}

type wireAttestation struct {
	ValidatorPubkey string `json:"validator_pubkey"`
	Signature       string `json:"signature"`
}

func (s *Server) handleSubmitAttestation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.verifier == nil {
		writeJSONError(w, "attestation verification is not enabled on this node", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req submitAttestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userBytes, err := hex.DecodeString(req.User)
	if err != nil || len(userBytes) != canonical.UserPubkeyLen {
		writeJSONError(w, "user must be 32 bytes hex-encoded", http.StatusBadRequest)
		return
	}
	var user [32]byte
	copy(user[:], userBytes)

	atts := make([]attestation.Attestation, 0, len(req.Attestations))
	for _, a := range req.Attestations {
		pub, err := hex.DecodeString(a.ValidatorPubkey)
		if err != nil {
			writeJSONError(w, "invalid validator_pubkey hex encoding", http.StatusBadRequest)
			return
		}
		sig, err := hex.DecodeString(a.Signature)
		if err != nil {
			writeJSONError(w, "invalid signature hex encoding", http.StatusBadRequest)
			return
		}
		atts = append(atts, attestation.Attestation{ValidatorPubkey: pub, Signature: sig})
	}

	payload := attestation.Payload{
		User:                user,
		Amount:              req.Amount,
		ValidatorSetVersion: req.ValidatorSetVersion,
		Attestations:        atts,
	}

	verified, err := s.verifier.SubmitBurnAttestation(asset.ID(req.AssetID), req.BurnNonce, payload)
	if err != nil {
		s.writeBridgeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(verified)
}

// mintFromBurnRequest is the wire shape of POST /mint-from-burn.
type mintFromBurnRequest struct {
	AssetID           uint8    `json:"asset_id"`
	BurnNonce         uint64   `json:"burn_nonce"`
	User              string   `json:"user"`
	Payer             string   `json:"payer"`
	ValidatorAccounts []string `json:"validator_accounts"`
}

func (s *Server) handleMintFromBurn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.mintProg == nil {
		writeJSONError(w, "minting is not enabled on this node", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req mintFromBurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userBytes, err := hex.DecodeString(req.User)
	if err != nil || len(userBytes) != canonical.UserPubkeyLen {
		writeJSONError(w, "user must be 32 bytes hex-encoded", http.StatusBadRequest)
		return
	}
	var user [32]byte
	copy(user[:], userBytes)

	payer, err := hex.DecodeString(req.Payer)
	if err != nil {
		writeJSONError(w, "invalid payer hex encoding", http.StatusBadRequest)
		return
	}

	validatorAccounts := make([]ed25519.PublicKey, 0, len(req.ValidatorAccounts))
	for _, v := range req.ValidatorAccounts {
		raw, err := hex.DecodeString(v)
		if err != nil {
			writeJSONError(w, "invalid validator_accounts hex encoding", http.StatusBadRequest)
			return
		}
		validatorAccounts = append(validatorAccounts, ed25519.PublicKey(raw))
	}

	processed, err := s.mintProg.MintFromBurn(asset.ID(req.AssetID), user, req.BurnNonce, ed25519.PublicKey(payer), validatorAccounts)
	if err != nil {
		s.writeBridgeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(processed)
}

func (s *Server) writeBridgeError(w http.ResponseWriter, err error) {
	kind := bridgeerr.KindOf(err)
	status := httpStatusForKind(kind)

	body := map[string]any{
		"error":     err.Error(),
		"kind":      kind,
		"retryable": kind.Retryable(),
	}
	if e, ok := bridgeerr.As(err); ok {
		for k, v := range e.Context {
			body[k] = v
		}
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// httpStatusForKind maps a Kind to the HTTP status named in spec §6's
// external-interface table (NoBurnFound/AmbiguousBurn under 400,
// BurnNotFound under 404, NotFinal under 425); kinds §6 does not name
// directly (the C6/C7/C8 operations exposed as endpoints here) are mapped
// by the same input/not-yet/structural/internal bucketing §7 describes.
func httpStatusForKind(kind bridgeerr.Kind) int {
	switch kind {
	case bridgeerr.KindUserMismatch, bridgeerr.KindAmountMismatch, bridgeerr.KindVersionMismatch,
		bridgeerr.KindUnknownAsset, bridgeerr.KindUnknownValidator, bridgeerr.KindDuplicateValidator,
		bridgeerr.KindNoBurnFound, bridgeerr.KindAmbiguousBurn, bridgeerr.KindMalformedMessage:
		return http.StatusBadRequest
	case bridgeerr.KindBurnNotFound:
		return http.StatusNotFound
	case bridgeerr.KindNotFinal:
		return http.StatusTooEarly
	case bridgeerr.KindInvalidSignature, bridgeerr.KindInsufficientAttestations:
		return http.StatusUnprocessableEntity
	case bridgeerr.KindAlreadyVerified, bridgeerr.KindAlreadyProcessed:
		return http.StatusOK
	case bridgeerr.KindAssetNotMintable, bridgeerr.KindValidatorSetVersionDrift, bridgeerr.KindInvalidThreshold:
		return http.StatusConflict
	case bridgeerr.KindRPCError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
