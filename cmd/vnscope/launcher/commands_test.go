package launcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex  = "8a3c2e8f4b1d0c9e7a6f5b4c3d2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e"
	testShardA1 = "a100000000000000000000000000000000000000000000000000000000000000"
	testShardB2 = "b200000000000000000000000000000000000000000000000000000000000000"
)

// fakeNode serves the "get_*" namespace over HTTP.
type fakeNode struct {
	failB2 bool
}

func (n *fakeNode) Epoch_manager_stats() map[string]interface{} {
	return map[string]interface{}{"current_epoch": 5, "current_block_height": 50, "is_valid": true}
}

func (n *fakeNode) Identity() map[string]interface{} {
	return map[string]interface{}{"node_id": "n1", "public_key": testKeyHex, "public_address": "/ip4/127.0.0.1/tcp/18189"}
}

func (n *fakeNode) Shard_key(height uint64, pk string) (map[string]interface{}, error) {
	if pk != testKeyHex {
		return nil, errors.New("unexpected public key")
	}
	return map[string]interface{}{"shard_key": fmt.Sprintf("sk-%03d", height/10)}, nil
}

func (n *fakeNode) Transaction(txID string) json.RawMessage {
	return json.RawMessage(`[` +
		`{"shard":"` + testShardA1 + `","height":2,"justify":"{\"local_node_height\":1,\"decision\":\"Accept\",\"validators_metadata\":[{},{}]}"},` +
		`{"shard":"` + testShardA1 + `","height":1,"justify":"{\"local_node_height\":0}"},` +
		`{"shard":"` + testShardB2 + `","height":1,"justify":"{\"local_node_height\":0}"}` +
		`]`)
}

func (n *fakeNode) Current_leader_state(txID string) json.RawMessage {
	return json.RawMessage(`[{"shard_id":"` + testShardA1 + `","leader":"0102","leader_round":3,"timestamp":"2022-10-05T11:22:33"}]`)
}

func (n *fakeNode) Substates(txID, shardHex string) (json.RawMessage, error) {
	if shardHex == testShardB2 && n.failB2 {
		return nil, errors.New("shard unavailable")
	}
	return json.RawMessage(`[{"address":"component_` + shardHex[:2] + `","created_at":1,"destroyed_at":null}]`), nil
}

func startNode(t *testing.T, node *fakeNode) string {
	t.Helper()
	srv := rpc.NewServer()
	if err := srv.RegisterName("get", node); err != nil {
		t.Fatal(err)
	}
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})
	return httpSrv.URL
}

// runApp runs the application with args and returns its stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &errOut
	err := a.Run(append([]string{"vnscope", "--log.verbosity", "1"}, args...))
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	require := require.New(t)
	url := startNode(t, &fakeNode{})

	out, err := runApp(t, "--rpc.url", url, "--format", "json", "status")
	require.NoError(err)

	var st statusOutput
	require.NoError(json.Unmarshal([]byte(out), &st))
	require.NotNil(st.Epoch)
	require.EqualValues(5, *st.Epoch)
	require.Equal("n1", st.NodeID)
	require.Equal(testKeyHex, st.PublicKey)
	require.NotNil(st.ShardKey)
	require.Equal("sk-005", *st.ShardKey)
	require.Empty(st.Error)

	out, err = runApp(t, "--rpc.url", url, "--epoch.multiplier", "2", "status")
	require.NoError(err)
	require.Contains(out, "sk-001")
	require.Contains(out, "public key")
}

func TestStatusCommandUnreachable(t *testing.T) {
	out, err := runApp(t, "--rpc.url", "http://127.0.0.1:1/json_rpc", "--rpc.timeout", "1s", "--format", "json", "status")
	require.Error(t, err)

	var st statusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Nil(t, st.Epoch)
	require.Nil(t, st.ShardKey)
	require.NotEmpty(t, st.Error)
}

func TestTxCommand(t *testing.T) {
	require := require.New(t)
	url := startNode(t, &fakeNode{})

	out, err := runApp(t, "--rpc.url", url, "tx", "tx1")
	require.NoError(err)
	require.Contains(out, testShardA1)
	require.Contains(out, testShardB2)
	require.Contains(out, "Precommit")
	require.Contains(out, "Accept(votes=2)")
	require.Contains(out, "Genesis")
	require.Contains(out, "0102 (round 3")
	require.Contains(out, "component_a1")
	require.Contains(out, "alive")

	out, err = runApp(t, "--rpc.url", url, "--format", "json", "tx", "tx1")
	require.NoError(err)
	var view struct {
		TransactionID string `json:"transaction_id"`
		Shards        []struct {
			Shard string `json:"shard"`
			Nodes []struct {
				Phase string `json:"phase"`
			} `json:"nodes"`
			Substates []json.RawMessage `json:"substates"`
		} `json:"shards"`
	}
	require.NoError(json.Unmarshal([]byte(out), &view))
	require.Equal("tx1", view.TransactionID)
	require.Len(view.Shards, 2)
	require.Equal(testShardA1, view.Shards[0].Shard)
	require.Equal("Prepare", view.Shards[0].Nodes[0].Phase)
	require.Equal("Precommit", view.Shards[0].Nodes[1].Phase)
	require.Len(view.Shards[1].Substates, 1)
}

func TestTxCommandPartialAndStrict(t *testing.T) {
	require := require.New(t)
	url := startNode(t, &fakeNode{failB2: true})

	// The partial view is still printed, but the command fails.
	out, err := runApp(t, "--rpc.url", url, "tx", "tx1")
	require.Error(err)
	require.Contains(err.Error(), "incomplete view of tx1")
	require.Contains(out, "shard unavailable")
	require.Contains(out, "component_a1")

	_, err = runApp(t, "--rpc.url", url, "--txview.strict", "tx", "tx1")
	require.Error(err)
	require.Contains(err.Error(), testShardB2)
}

func TestTxCommandUsage(t *testing.T) {
	_, err := runApp(t, "tx")
	require.Error(t, err)
}

func TestWatchCommand(t *testing.T) {
	require := require.New(t)
	url := startNode(t, &fakeNode{})

	orig := newContext
	newContext = func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), 500*time.Millisecond)
	}
	defer func() { newContext = orig }()

	out, err := runApp(t, "--rpc.url", url, "--format", "json", "watch")
	require.NoError(err)

	var last statusOutput
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		require.NoError(json.Unmarshal([]byte(line), &last))
	}
	require.NotNil(last.ShardKey)
	require.Equal("sk-005", *last.ShardKey)
}
