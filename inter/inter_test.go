package inter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		height uint64
		want   Phase
		name   string
	}{
		{0, PhaseUnknown, "Unknown"},
		{1, PhasePrepare, "Prepare"},
		{2, PhasePrecommit, "Precommit"},
		{3, PhaseCommit, "Commit"},
		{4, PhaseDecide, "Decide"},
		{5, PhaseUnknown, "Unknown"},
		{1 << 40, PhaseUnknown, "Unknown"},
	}
	for _, tt := range tests {
		got := PhaseOf(tt.height)
		if got != tt.want {
			t.Fatalf("PhaseOf(%d) = %v, want %v", tt.height, got, tt.want)
		}
		if got.String() != tt.name {
			t.Fatalf("PhaseOf(%d).String() = %q, want %q", tt.height, got.String(), tt.name)
		}
	}
}

func TestDecisionJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Decision
	}{
		{`"Accept"`, Accept},
		{`null`, Accept},
		{`"Anything"`, Accept},
		{`{"Other":1}`, Accept},
		{`{"Reject":"double spend"}`, Reject("double spend")},
		{`{"Reject":{"code":3}}`, Reject(`{"code":3}`)},
	}
	for _, tt := range tests {
		var d Decision
		require.NoError(t, json.Unmarshal([]byte(tt.in), &d), tt.in)
		assert.Equal(t, tt.want, d, tt.in)
	}

	out, err := json.Marshal(Reject("bad"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Reject":"bad"}`, string(out))

	out, err = json.Marshal(Accept)
	require.NoError(t, err)
	assert.Equal(t, `"Accept"`, string(out))
}

func TestQuorumCertificateStringEncoded(t *testing.T) {
	require := require.New(t)

	// Case 1: justify is a JSON string holding the document.
	{
		var qc QuorumCertificate
		in := `"{\"local_node_height\":1,\"decision\":\"Accept\",\"validators_metadata\":[{},{}]}"`
		require.NoError(json.Unmarshal([]byte(in), &qc))
		require.False(qc.IsGenesis())
		require.Equal(2, qc.Votes())
		require.Equal(Accept, qc.Decision)
	}

	// Case 2: plain object, rejected.
	{
		var qc QuorumCertificate
		in := `{"local_node_height":3,"decision":{"Reject":"timeout"},"validators_metadata":[1]}`
		require.NoError(json.Unmarshal([]byte(in), &qc))
		require.Equal(Reject("timeout"), qc.Decision)
		require.Equal(1, qc.Votes())
	}

	// Case 3: genesis.
	{
		var qc QuorumCertificate
		require.NoError(json.Unmarshal([]byte(`"{\"local_node_height\":0}"`), &qc))
		require.True(qc.IsGenesis())
		require.Zero(qc.Votes())
	}

	// Case 4: malformed embedded document.
	{
		var qc QuorumCertificate
		require.Error(json.Unmarshal([]byte(`"{not json"`), &qc))
	}
}

func TestConsensusNodeDecode(t *testing.T) {
	require := require.New(t)

	shardArr := make([]int, 32)
	shardArr[0] = 0xa1
	shardJSON, _ := json.Marshal(shardArr)

	in := `{"shard":` + string(shardJSON) + `,"height":2,"leader_round":7,` +
		`"justify":"{\"local_node_height\":1,\"decision\":\"Accept\",\"validators_metadata\":[{}]}",` +
		`"timestamp":"2022-10-05T11:22:33.123456"}`

	var n ConsensusNode
	require.NoError(json.Unmarshal([]byte(in), &n))
	require.Equal(byte(0xa1), n.Shard[0])
	require.Equal(PhasePrecommit, n.Phase())
	require.Equal(uint64(7), n.LeaderRound)
	require.Equal(1, n.Justify.Votes())
	require.Equal(2022, n.Timestamp.Year())
	require.Equal(123456000, n.Timestamp.Nanosecond())
}

func TestTimestamp(t *testing.T) {
	require := require.New(t)

	for _, in := range []string{
		`"2022-10-05T11:22:33Z"`,
		`"2022-10-05T11:22:33"`,
		`"2022-10-05 11:22:33"`,
		`1664968953`,
	} {
		var ts Timestamp
		require.NoError(json.Unmarshal([]byte(in), &ts), in)
		require.Equal(time.Date(2022, 10, 5, 11, 22, 33, 0, time.UTC), ts.Time, in)
	}

	var bad Timestamp
	require.NoError(json.Unmarshal([]byte(`"yesterday"`), &bad))
	require.True(bad.IsZero())
	require.Equal("yesterday", bad.String())

	early := ParseTimestamp("2022-10-05T11:22:33")
	late := ParseTimestamp("2022-10-05T11:22:34")
	require.Equal(-1, CompareTimestamps(early, late))
	require.Equal(1, CompareTimestamps(late, early))
	require.Equal(0, CompareTimestamps(early, early))
	require.Equal(-1, CompareTimestamps(bad, early))

	out, err := json.Marshal(Timestamp{})
	require.NoError(err)
	require.Equal("null", string(out))
}

func TestSubstateValidate(t *testing.T) {
	u := func(v uint64) *uint64 { return &v }

	tests := []struct {
		s       Substate
		wantErr bool
	}{
		{Substate{Address: "a"}, false},
		{Substate{Address: "a", CreatedAt: u(1)}, false},
		{Substate{Address: "a", CreatedAt: u(1), DestroyedAt: u(1)}, false},
		{Substate{Address: "a", CreatedAt: u(2), DestroyedAt: u(5)}, false},
		{Substate{Address: "a", CreatedAt: u(5), DestroyedAt: u(2)}, true},
	}
	for i, tt := range tests {
		err := tt.s.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("case %d: Validate() = %v, wantErr %v", i, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidSubstate) {
			t.Fatalf("case %d: error %v does not wrap ErrInvalidSubstate", i, err)
		}
	}
}
