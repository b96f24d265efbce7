package nodeapi

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
	"github.com/rony4d/vnscope/inter/validatorpk"
)

const (
	testKeyHex  = "8a3c2e8f4b1d0c9e7a6f5b4c3d2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e"
	testShardA1 = "a100000000000000000000000000000000000000000000000000000000000000"
)

// fakeNode serves the "get_*" namespace. Method names mirror the remote
// method suffixes, which the rpc package derives by lowercasing the first
// letter.
type fakeNode struct {
	mu        sync.Mutex
	shardArgs []interface{}
	subArgs   []string
}

func (n *fakeNode) Epoch_manager_stats() map[string]interface{} {
	return map[string]interface{}{"current_epoch": 5, "current_block_height": 51, "is_valid": true}
}

func (n *fakeNode) Identity() map[string]interface{} {
	return map[string]interface{}{"node_id": "n1", "public_key": testKeyHex, "public_address": "/ip4/127.0.0.1/tcp/18189"}
}

func (n *fakeNode) Shard_key(height uint64, pk string) map[string]interface{} {
	n.mu.Lock()
	n.shardArgs = []interface{}{height, pk}
	n.mu.Unlock()
	if height == 0 {
		return map[string]interface{}{"shard_key": nil}
	}
	return map[string]interface{}{"shard_key": "key-50"}
}

func (n *fakeNode) Transaction(txID string) json.RawMessage {
	arr := make([]int, shard.Length)
	arr[0] = 0xa1
	shardJSON, _ := json.Marshal(arr)
	return json.RawMessage(`[{"shard":` + string(shardJSON) + `,"height":1,"justify":"{\"local_node_height\":0}"}]`)
}

func (n *fakeNode) Current_leader_state(txID string) json.RawMessage {
	return json.RawMessage(`[{"shard_id":"` + testShardA1 + `","leader":[1,2],"leader_round":3,"timestamp":"2022-10-05T11:22:33"}]`)
}

func (n *fakeNode) Substates(ctx context.Context, txID, shardHex string) (json.RawMessage, error) {
	n.mu.Lock()
	n.subArgs = []string{txID, shardHex}
	n.mu.Unlock()
	switch txID {
	case "slow":
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
		return json.RawMessage(`[]`), nil
	case "broken":
		return nil, errors.New("no such transaction")
	case "garbage":
		return json.RawMessage(`{"not":"a list"}`), nil
	}
	return json.RawMessage(`[{"address":"component_1","created_at":1,"destroyed_at":null}]`), nil
}

func newTestClient(t *testing.T, opts Options) (*RPCClient, *fakeNode) {
	node := &fakeNode{}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("get", node))
	c := NewClient(rpc.DialInProc(srv), opts)
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c, node
}

type countingObserver struct {
	mu     sync.Mutex
	calls  map[string]int
	errors int
}

func (o *countingObserver) ObserveCall(method string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]int)
	}
	o.calls[method]++
	if err != nil {
		o.errors++
	}
}

func TestRPCClientQueries(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	obs := &countingObserver{}
	c, node := newTestClient(t, Options{Observer: obs})

	stats, err := c.EpochStats(ctx)
	require.NoError(err)
	require.EqualValues(5, stats.CurrentEpoch)
	require.EqualValues(51, stats.CurrentBlockHeight)
	require.True(stats.IsValid)

	id, err := c.Identity(ctx)
	require.NoError(err)
	require.Equal("n1", id.NodeID)
	require.Equal(testKeyHex, id.PublicKey.String())

	pk, err := validatorpk.FromString(testKeyHex)
	require.NoError(err)
	key, err := c.ShardKey(ctx, 50, pk)
	require.NoError(err)
	require.NotNil(key)
	require.Equal("key-50", *key)
	require.Equal([]interface{}{uint64(50), testKeyHex}, node.shardArgs)

	key, err = c.ShardKey(ctx, 0, pk)
	require.NoError(err)
	require.Nil(key)

	nodes, err := c.TransactionNodes(ctx, "tx1")
	require.NoError(err)
	require.Len(nodes, 1)
	require.Equal(testShardA1, nodes[0].Shard.Hex())
	require.True(nodes[0].Justify.IsGenesis())
	require.Equal(inter.PhasePrepare, nodes[0].Phase())

	leaders, err := c.LeaderStates(ctx, "tx1")
	require.NoError(err)
	require.Len(leaders, 1)
	require.Equal(testShardA1, leaders[0].Shard.Hex())
	require.Equal("0102", leaders[0].Leader.Hex())
	require.EqualValues(3, leaders[0].LeaderRound)

	subs, err := c.Substates(ctx, "tx1", shard.MustFromHex(testShardA1))
	require.NoError(err)
	require.Len(subs, 1)
	require.Equal("component_1", subs[0].Address)
	require.NotNil(subs[0].CreatedAt)
	require.Nil(subs[0].DestroyedAt)
	require.Equal([]string{"tx1", testShardA1}, node.subArgs)

	require.Equal(1, obs.calls[MethodSubstates])
	require.Equal(2, obs.calls[MethodShardKey])
	require.Zero(obs.errors)
}

func TestRPCClientErrors(t *testing.T) {
	ctx := context.Background()
	id := shard.MustFromHex(testShardA1)

	t.Run("remote", func(t *testing.T) {
		c, _ := newTestClient(t, Options{})
		_, err := c.Substates(ctx, "broken", id)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrTransient))

		var qe *QueryError
		require.True(t, errors.As(err, &qe))
		require.Equal(t, MethodSubstates, qe.Method)
		require.False(t, qe.Timeout())
	})

	t.Run("decode", func(t *testing.T) {
		c, _ := newTestClient(t, Options{})
		_, err := c.Substates(ctx, "garbage", id)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrTransient))
	})

	t.Run("timeout", func(t *testing.T) {
		obs := &countingObserver{}
		c, _ := newTestClient(t, Options{Timeout: 50 * time.Millisecond, Observer: obs})
		start := time.Now()
		_, err := c.Substates(ctx, "slow", id)
		require.Error(t, err)
		require.Less(t, time.Since(start), time.Second)
		require.True(t, errors.Is(err, ErrTransient))
		require.True(t, errors.Is(err, context.DeadlineExceeded))

		var qe *QueryError
		require.True(t, errors.As(err, &qe))
		require.True(t, qe.Timeout())
		require.Equal(t, 1, obs.errors)
	})

	t.Run("unknown method", func(t *testing.T) {
		srv := rpc.NewServer()
		c := NewClient(rpc.DialInProc(srv), Options{})
		defer c.Close()
		_, err := c.EpochStats(ctx)
		require.True(t, errors.Is(err, ErrTransient))
	})
}
