// Copyright 2025 Certen Protocol
//
// BurnRecord decoding - the source-chain account the burn program writes
// when a user burns tokens, keyed deterministically by
// store.BurnRecordKey(burn_program_id, nonce).
//
// Spec §4.2 step 7 names the fields (user, amount, nonce, timestamp) but
// leaves the wire layout to the implementation; this lays them out in the
// same little-endian, fixed-offset style as pkg/canonical.Fields so a
// single encoding discipline runs through the whole protocol.
package burn

import (
	"encoding/binary"
	"fmt"
)

// RecordLen is the fixed encoded size of a BurnRecord: 32-byte user +
// 8-byte amount + 8-byte nonce + 8-byte unix timestamp.
const RecordLen = 32 + 8 + 8 + 8

// Record is the decoded on-chain BurnRecord.
type Record struct {
	User      [32]byte
	Amount    uint64
	Nonce     uint64
	Timestamp int64
}

// DecodeRecord parses raw account bytes into a Record.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) < RecordLen {
		return Record{}, fmt.Errorf("burn: record too short: got %d bytes, want %d", len(data), RecordLen)
	}

	var r Record
	copy(r.User[:], data[0:32])
	r.Amount = binary.LittleEndian.Uint64(data[32:40])
	r.Nonce = binary.LittleEndian.Uint64(data[40:48])
	r.Timestamp = int64(binary.LittleEndian.Uint64(data[48:56]))
	return r, nil
}
