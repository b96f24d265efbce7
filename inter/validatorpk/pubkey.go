// Package validatorpk handles the public key a validator node reports as its
// identity. The key is an opaque byte string to the inspector: it is read
// once from the node, kept for the process lifetime, and handed back to the
// node (as unprefixed hex) when asking for the node's shard key.
package validatorpk

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/vnscope/inter/hexbytes"
)

// Size is the length of the Ristretto public keys validator nodes use today.
// Keys of other lengths are accepted; Size only documents the common case.
const Size = 32

// ErrEmpty is returned when parsing an empty key.
var ErrEmpty = errors.New("empty pubkey")

// PubKey is a validator node's public key.
type PubKey struct {
	// Raw contains the key bytes exactly as reported by the node.
	Raw []byte
}

// Empty reports whether the key holds no bytes.
func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0
}

// String returns the lowercase hex form without "0x", which is what the node
// expects back in shard key queries.
func (pk PubKey) String() string {
	return common.Bytes2Hex(pk.Raw)
}

// Bytes returns the raw key bytes.
func (pk PubKey) Bytes() []byte {
	return pk.Raw
}

// Equal reports whether two keys hold the same bytes.
func (pk PubKey) Equal(other PubKey) bool {
	return bytes.Equal(pk.Raw, other.Raw)
}

// Copy creates a deep copy of the PubKey; Raw is a slice and would otherwise
// share memory with the original.
func (pk PubKey) Copy() PubKey {
	return PubKey{Raw: common.CopyBytes(pk.Raw)}
}

// FromString parses a hex string (with or without "0x" prefix).
func FromString(str string) (PubKey, error) {
	raw, err := hexbytes.Decode(str)
	if err != nil {
		return PubKey{}, err
	}
	return FromBytes(raw)
}

// FromBytes wraps raw key bytes. Empty input is rejected.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, ErrEmpty
	}
	return PubKey{Raw: common.CopyBytes(b)}, nil
}

// MarshalText implements encoding.TextMarshaler so the key is encoded as a
// hex JSON string.
func (pk PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
