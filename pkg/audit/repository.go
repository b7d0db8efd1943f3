// Copyright 2025 Certen Protocol
//
// Audit repository - records every /attest-burn request and its outcome,
// grounded on this repo's teacher's pkg/database.AttestationRepository
// (query shape, google/uuid request identifiers).
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xencat-protocol/bridge-validator/pkg/asset"
	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
)

// Repository records attestation requests for after-the-fact audit.
type Repository struct {
	client *Client
}

// NewRepository wraps a Client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// Entry is one recorded /attest-burn request.
type Entry struct {
	RequestID           uuid.UUID
	BurnNonce           uint64
	AssetID             asset.ID
	UserPubkey          [32]byte
	Amount              uint64
	ValidatorSetVersion uint64
	OutcomeKind         bridgeerr.Kind
	ValidatorPubkey     []byte
	Signature           []byte
	CreatedAt           time.Time
}

// Record inserts one Entry. RequestID is generated here if the caller
// leaves it as the zero UUID.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	if e.RequestID == uuid.Nil {
		e.RequestID = uuid.New()
	}

	query := `
		INSERT INTO attest_burn_requests (
			request_id, burn_nonce, asset_id, user_pubkey, amount,
			validator_set_version, outcome_kind, validator_pubkey, signature
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.client.DB().ExecContext(ctx, query,
		e.RequestID, e.BurnNonce, uint8(e.AssetID), e.UserPubkey[:], e.Amount,
		e.ValidatorSetVersion, string(e.OutcomeKind), e.ValidatorPubkey, e.Signature,
	)
	if err != nil {
		return fmt.Errorf("audit: record attest-burn request: %w", err)
	}
	return nil
}
