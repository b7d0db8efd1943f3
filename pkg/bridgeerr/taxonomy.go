// Copyright 2025 Certen Protocol
//
// Error taxonomy shared by every bridge component (C10).
// Every fallible operation in the protocol returns one of these kinds so
// that callers - the HTTP surface in particular - can dispatch on a typed
// value instead of matching error strings.

package bridgeerr

import (
	"errors"
	"fmt"
)

// Kind is a discriminated error kind per spec §7.
type Kind string

const (
	// Input errors: the caller can correct these and retry immediately.
	KindUserMismatch       Kind = "UserMismatch"
	KindAmountMismatch     Kind = "AmountMismatch"
	KindVersionMismatch    Kind = "VersionMismatch"
	KindUnknownAsset       Kind = "UnknownAsset"
	KindUnknownValidator   Kind = "UnknownValidator"
	KindDuplicateValidator Kind = "DuplicateValidator"
	// KindNoBurnFound is distinct from KindBurnNotFound: it means the
	// BurnRecord account and its transaction were found, but the
	// transaction contains zero classic-SPL Burn instructions (spec
	// §4.2 step 5) - a malformed request, not a transient RPC race.
	KindNoBurnFound Kind = "NoBurnFound"

	// Not-yet errors: the caller should retry later.
	KindNotFinal     Kind = "NotFinal"
	KindBurnNotFound Kind = "BurnNotFound"

	// Cryptographic failures: fatal, no retry.
	KindInvalidSignature        Kind = "InvalidSignature"
	KindInsufficientAttestations Kind = "InsufficientAttestations"

	// Replay barriers: expected under duplicate submission, safely idempotent.
	KindAlreadyVerified  Kind = "AlreadyVerified"
	KindAlreadyProcessed Kind = "AlreadyProcessed"

	// Configuration errors: require admin intervention.
	KindAssetNotMintable        Kind = "AssetNotMintable"
	KindValidatorSetVersionDrift Kind = "ValidatorSetVersionDrift"
	KindInvalidThreshold        Kind = "InvalidThreshold"

	// Structural: a bug or an attack, reject loudly.
	KindAmbiguousBurn    Kind = "AmbiguousBurn"
	KindMalformedMessage Kind = "MalformedMessage"

	// Transport/internal.
	KindRPCError  Kind = "RpcError"
	KindInternal  Kind = "Internal"
)

// Error is a typed protocol error carrying its taxonomy Kind alongside a
// human-readable message and optional context fields for the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an Error with no context.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext returns a copy of the error with the given context fields
// merged in, used to carry e.g. the true amount on AmountMismatch or the
// retry hint on NotFinal.
func (e *Error) WithContext(ctx map[string]any) *Error {
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &Error{Kind: e.Kind, Message: e.Message, Context: merged}
}

// As extracts an *Error from err, returning (nil, false) if err is not one
// of ours. Unlike a bare type assertion, this unwraps fmt.Errorf("...%w", ...)
// chains, so a bridgeerr wrapped for additional context is still recovered.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the Kind of err if it is a bridgeerr.Error, or KindInternal
// otherwise - used by the HTTP layer so an un-typed error never leaks detail.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether the error class is one where the client should
// retry (possibly after a delay) rather than treat the request as wrong.
func (k Kind) Retryable() bool {
	switch k {
	case KindNotFinal, KindBurnNotFound, KindVersionMismatch, KindRPCError:
		return true
	default:
		return false
	}
}

// Idempotent reports whether the error represents a replay barrier - the
// user's desired end-state already holds.
func (k Kind) Idempotent() bool {
	return k == KindAlreadyVerified || k == KindAlreadyProcessed
}
