package shard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const a1Hex = "a100000000000000000000000000000000000000000000000000000000000000"

// TestFromHex verifies parsing with and without prefix and the length check.
func TestFromHex(t *testing.T) {
	require := require.New(t)

	id, err := FromHex(a1Hex)
	require.NoError(err)
	require.Equal(byte(0xa1), id[0])
	require.Equal(a1Hex, id.Hex())

	prefixed, err := FromHex("0x" + strings.ToUpper(a1Hex))
	require.NoError(err)
	require.Equal(id, prefixed)

	_, err = FromHex("a1")
	require.Error(err, "short ids must be rejected")

	_, err = FromHex("-")
	require.Error(err)
}

// TestUnmarshalJSON checks that the byte-array wire shape and the hex string
// shape decode to the same identifier.
func TestUnmarshalJSON(t *testing.T) {
	require := require.New(t)

	arr := make([]int, Length)
	arr[0] = 0xa1
	arrJSON, err := json.Marshal(arr)
	require.NoError(err)

	var fromArray, fromString ID
	require.NoError(json.Unmarshal(arrJSON, &fromArray))
	require.NoError(json.Unmarshal([]byte(`"`+a1Hex+`"`), &fromString))
	require.Equal(fromArray, fromString)

	var bad ID
	require.Error(json.Unmarshal([]byte(`[1,2,3]`), &bad))
}

// TestMapKeys verifies that IDs survive a JSON round trip as object keys.
func TestMapKeys(t *testing.T) {
	require := require.New(t)

	in := map[ID]int{MustFromHex(a1Hex): 7}
	data, err := json.Marshal(in)
	require.NoError(err)
	require.Equal(`{"`+a1Hex+`":7}`, string(data))

	var out map[ID]int
	require.NoError(json.Unmarshal(data, &out))
	require.Equal(in, out)
}

// TestZeroAndBytes covers the small helpers.
func TestZeroAndBytes(t *testing.T) {
	require := require.New(t)

	var zero ID
	a1 := MustFromHex(a1Hex)

	require.True(zero.IsZero())
	require.False(a1.IsZero())

	b := a1.Bytes()
	b[0] = 0
	require.Equal(byte(0xa1), a1[0], "Bytes must return a copy")
}
