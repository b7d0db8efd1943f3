// Copyright 2025 Certen Protocol
//
// Finality gate (C3: enforce_finality) - the barrier that keeps a burn
// from being attested before the source chain considers it irreversible.
//
// Grounded on this repo's teacher's commitment-level checks in
// pkg/chain/strategy/solana_strategy.go, generalized behind the
// solanarpc.Client interface instead of a single hardwired strategy.
package finality

import (
	"context"
	"fmt"

	"github.com/xencat-protocol/bridge-validator/pkg/bridgeerr"
	"github.com/xencat-protocol/bridge-validator/pkg/chain/solanarpc"
)

// Gate checks a burn's recorded slot against the chain's current
// confirmed-slot tip, requiring a minimum number of confirmations before
// the burn is eligible for attestation.
type Gate struct {
	client              solanarpc.Client
	requiredConfirmations uint64
}

// New builds a Gate requiring requiredConfirmations slots between a
// burn's slot and the chain's current tip.
func New(client solanarpc.Client, requiredConfirmations uint64) *Gate {
	return &Gate{client: client, requiredConfirmations: requiredConfirmations}
}

// EnforceFinality returns nil once burnSlot is at least
// requiredConfirmations behind the chain's current slot, and
// bridgeerr.KindNotFinal otherwise.
//
// Operation: enforce_finality(burn_slot) - C3.
func (g *Gate) EnforceFinality(ctx context.Context, burnSlot uint64) error {
	currentSlot, err := g.client.CurrentSlot(ctx)
	if err != nil {
		return fmt.Errorf("finality: current slot: %w", bridgeerr.Newf(bridgeerr.KindRPCError, "fetch current slot: %v", err))
	}

	if currentSlot < burnSlot {
		return bridgeerr.Newf(bridgeerr.KindNotFinal,
			"chain tip slot %d precedes burn slot %d", currentSlot, burnSlot).
			WithContext(notFinalContext(0, g.requiredConfirmations))
	}

	confirmations := currentSlot - burnSlot
	if confirmations < g.requiredConfirmations {
		return bridgeerr.Newf(bridgeerr.KindNotFinal,
			"burn at slot %d has %d confirmations, need %d", burnSlot, confirmations, g.requiredConfirmations).
			WithContext(notFinalContext(confirmations, g.requiredConfirmations))
	}

	return nil
}

// solanaSlotMillis is Solana's target slot duration, used only to turn a
// remaining-slots count into a client-advisory retry hint.
const solanaSlotMillis = 400

// notFinalContext builds the §6-named NotFinal advisory fields.
func notFinalContext(slotsSinceBurn, requiredSlots uint64) map[string]any {
	remaining := requiredSlots - slotsSinceBurn
	retryAfterSeconds := (remaining*solanaSlotMillis + 999) / 1000
	return map[string]any{
		"slots_since_burn":    slotsSinceBurn,
		"required_slots":      requiredSlots,
		"retry_after_seconds": retryAfterSeconds,
	}
}
