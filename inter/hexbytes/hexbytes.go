// Package hexbytes provides a byte slice type that understands the two shapes
// the validator node uses for binary values on the wire: a hex string (with or
// without "0x") and a JSON array of byte values. Values are always written
// back as lowercase hex without a prefix, which is also the display form used
// by the dashboard.
package hexbytes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrByteRange is returned when a JSON byte array contains a value that does
// not fit into a single byte.
var ErrByteRange = errors.New("byte value out of range")

// Bytes is a binary value rendered as lowercase hex.
type Bytes []byte

// Hex returns the lowercase hex form without a "0x" prefix.
func (b Bytes) Hex() string {
	return common.Bytes2Hex(b)
}

// String implements fmt.Stringer.
func (b Bytes) String() string {
	return b.Hex()
}

// Copy returns a deep copy; the slice header alone would share memory.
func (b Bytes) Copy() Bytes {
	if b == nil {
		return nil
	}
	return Bytes(common.CopyBytes(b))
}

// MarshalText implements encoding.TextMarshaler so Bytes is written as a
// JSON string.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bytes) UnmarshalText(input []byte) error {
	raw, err := Decode(string(input))
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// UnmarshalJSON accepts null, a hex string or an array of byte values.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	raw, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// Decode parses a hex string, with or without the "0x" prefix. Unlike
// common.FromHex it rejects malformed input instead of truncating it.
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// DecodeJSON decodes a JSON value holding binary data. null yields nil.
func DecodeJSON(data []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		return nil, nil
	case strings.HasPrefix(trimmed, "\""):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return Decode(s)
	case strings.HasPrefix(trimmed, "["):
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
		out := make([]byte, len(values))
		for i, v := range values {
			if v < 0 || v > 0xff {
				return nil, fmt.Errorf("%w: %d at index %d", ErrByteRange, v, i)
			}
			out[i] = byte(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot decode bytes from %.32s", trimmed)
	}
}
