// Copyright 2025 Certen Protocol
//
// Solana-family RPC client (supporting C2, C3) - thin wrapper around
// github.com/gagliardetto/solana-go's rpc.Client exposing only the calls
// the burn observer and finality gate need: fetching a confirmed
// transaction with its inner instructions, and querying the confirmed
// slot tip.
//
// Grounded on the retrieval pack's Solana watcher
// (other_examples/renproject-lightnode, which drives the predecessor
// dfuse-io/solana-go client's GetConfirmedSignaturesForAddress2 against a
// program-derived address) and on pkg/chain/strategy/solana_strategy.go's
// commitment-level handling in this repo's teacher.

package solanarpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Instruction is a flattened view of one on-chain instruction - either
// top-level or a cross-program-invocation ("inner") instruction - enough
// for the burn observer to recognize a classic SPL Token Burn and resolve
// the mint account it burns from.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
	TopLevel  bool
}

// Transaction is the subset of a fetched Solana transaction the burn
// observer needs: its flattened instruction list and its confirmed slot.
type Transaction struct {
	Signature    solana.Signature
	Slot         uint64
	Instructions []Instruction
}

// Client is the interface the burn observer and finality gate depend on,
// so tests can supply a fake without talking to a real cluster.
type Client interface {
	// CurrentSlot returns the chain's confirmed slot tip.
	CurrentSlot(ctx context.Context) (uint64, error)

	// FindTransactionForAddress returns the single transaction signature
	// that touched addr, per spec §4.2 step 2 ("query ... for the single
	// transaction signature that created it").
	FindTransactionForAddress(ctx context.Context, addr solana.PublicKey) (solana.Signature, error)

	// FetchTransaction fetches a transaction with inner instructions
	// included, per spec §4.2 step 3.
	FetchTransaction(ctx context.Context, sig solana.Signature) (*Transaction, error)

	// GetAccountData fetches raw account bytes, used to decode the
	// BurnRecord created by the burn program.
	GetAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error)
}

// rpcClient is the production Client backed by a real cluster endpoint.
type rpcClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// New creates a production Client against the given RPC endpoint.
func New(endpoint string, commitment rpc.CommitmentType) Client {
	if commitment == "" {
		commitment = rpc.CommitmentFinalized
	}
	return &rpcClient{
		rpc:        rpc.New(endpoint),
		commitment: commitment,
	}
}

func (c *rpcClient) CurrentSlot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("solanarpc: GetSlot: %w", err)
	}
	return slot, nil
}

func (c *rpcClient) FindTransactionForAddress(ctx context.Context, addr solana.PublicKey) (solana.Signature, error) {
	limit := 1
	sigs, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, addr, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("solanarpc: GetSignaturesForAddress: %w", err)
	}
	if len(sigs) == 0 {
		return solana.Signature{}, fmt.Errorf("solanarpc: no signatures found for address %s", addr)
	}
	return sigs[0].Signature, nil
}

func (c *rpcClient) FetchTransaction(ctx context.Context, sig solana.Signature) (*Transaction, error) {
	maxVersion := uint64(0)
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("solanarpc: GetTransaction: %w", err)
	}
	if out == nil || out.Transaction == nil {
		return nil, fmt.Errorf("solanarpc: transaction %s not found", sig)
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("solanarpc: decode transaction: %w", err)
	}

	result := &Transaction{Signature: sig, Slot: out.Slot}

	accountKeys := tx.Message.AccountKeys

	resolveAccounts := func(indices []uint16) []solana.PublicKey {
		keys := make([]solana.PublicKey, 0, len(indices))
		for _, idx := range indices {
			if int(idx) < len(accountKeys) {
				keys = append(keys, accountKeys[idx])
			}
		}
		return keys
	}

	for _, ix := range tx.Message.Instructions {
		programID, err := tx.Message.Program(ix.ProgramIDIndex)
		if err != nil {
			return nil, fmt.Errorf("solanarpc: resolve top-level program id: %w", err)
		}
		result.Instructions = append(result.Instructions, Instruction{
			ProgramID: programID,
			Accounts:  resolveAccounts(ix.Accounts),
			Data:      []byte(ix.Data),
			TopLevel:  true,
		})
	}

	if out.Meta != nil {
		for _, inner := range out.Meta.InnerInstructions {
			for _, ix := range inner.Instructions {
				programID, err := tx.Message.Program(ix.ProgramIDIndex)
				if err != nil {
					return nil, fmt.Errorf("solanarpc: resolve inner program id: %w", err)
				}
				result.Instructions = append(result.Instructions, Instruction{
					ProgramID: programID,
					Accounts:  resolveAccounts(ix.Accounts),
					Data:      []byte(ix.Data),
					TopLevel:  false,
				})
			}
		}
	}

	return result, nil
}

func (c *rpcClient) GetAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	out, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("solanarpc: GetAccountInfo: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("solanarpc: account %s not found", addr)
	}
	return out.Value.Data.GetBinary(), nil
}
