// Package shard defines the canonical shard identifier. A shard is a partition
// of the ledger's address space identified by a fixed-length byte key; every
// per-shard collection the inspector builds is keyed by it.
package shard

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/vnscope/inter/hexbytes"
)

// Length is the size in bytes of a shard identifier.
const Length = 32

// ID is a fixed-length shard identifier. Being an array it is comparable and
// can be used directly as a map key.
type ID [Length]byte

// FromBytes builds an ID from exactly Length bytes.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Length {
		return id, fmt.Errorf("shard id must be %d bytes, got %d", Length, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// FromHex parses a hex string (with or without "0x") into an ID.
func FromHex(s string) (ID, error) {
	raw, err := hexbytes.Decode(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid shard id %q: %w", s, err)
	}
	return FromBytes(raw)
}

// MustFromHex is FromHex for constants and tests. It panics on bad input.
func MustFromHex(s string) ID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Hex returns the lowercase hex form without prefix. This is the display
// form and the join key used across collections.
func (id ID) Hex() string {
	return common.Bytes2Hex(id[:])
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return id.Hex()
}

// Bytes returns a copy of the identifier bytes.
func (id ID) Bytes() []byte {
	return common.CopyBytes(id[:])
}

// IsZero reports whether the identifier is all zeroes.
func (id ID) IsZero() bool {
	return id == ID{}
}

// MarshalText implements encoding.TextMarshaler, so IDs appear as hex strings
// in JSON and can be used as JSON object keys.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(input []byte) error {
	parsed, err := FromHex(string(input))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalJSON accepts either a hex string or a JSON array of byte values,
// the shape the node uses for shard fields in transaction records.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw, err := hexbytes.DecodeJSON(data)
	if err != nil {
		return fmt.Errorf("invalid shard id: %w", err)
	}
	if raw == nil {
		*id = ID{}
		return nil
	}
	parsed, err := FromBytes(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
