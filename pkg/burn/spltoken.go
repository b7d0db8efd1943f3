// Copyright 2025 Certen Protocol
//
// Classic SPL Token Program instruction recognition.
//
// Grounded on other_examples/cielu-go-solana's BurnChecked instruction
// encoding (core/token/BurnChecked.go): the Token Program's instruction
// discriminant is a single leading byte, Burn is discriminant 8, followed
// by an 8-byte little-endian amount. Token-2022 (a distinct program id)
// is explicitly out of scope per spec §4.2 step 4 and is never matched.
package burn

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// TokenProgramID is the classic SPL Token Program, the only program this
// protocol recognizes Burn instructions from.
var TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Token2022ProgramID is the newer token-extensions program. Explicitly
// rejected: spec §4.2 step 4 only accepts "a classic SPL token".
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// burnDiscriminant is the Token Program's instruction tag for Burn.
const burnDiscriminant = 8

// burnInstructionLen is the minimum encoded length of a Burn instruction:
// 1 discriminant byte + 8 amount bytes.
const burnInstructionLen = 9

// DecodedBurn is a recognized classic-SPL Burn instruction.
type DecodedBurn struct {
	Amount uint64
}

// MatchBurn reports whether programID/data encode a classic SPL Token
// Burn instruction, decoding the amount if so.
func MatchBurn(programID solana.PublicKey, data []byte) (DecodedBurn, bool) {
	if !programID.Equals(TokenProgramID) {
		return DecodedBurn{}, false
	}
	if len(data) < burnInstructionLen {
		return DecodedBurn{}, false
	}
	if data[0] != burnDiscriminant {
		return DecodedBurn{}, false
	}
	amount := binary.LittleEndian.Uint64(data[1:9])
	return DecodedBurn{Amount: amount}, true
}
