package nodeapi

import (
	"context"
	"errors"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
	"github.com/rony4d/vnscope/inter/validatorpk"
)

// DefaultTimeout bounds every query when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// CallObserver is notified after every query. *metrics.Recorder satisfies it.
type CallObserver interface {
	ObserveCall(method string, d time.Duration, err error)
}

// Options configures an RPCClient.
type Options struct {
	// Timeout bounds each individual query.
	Timeout time.Duration
	// Observer, when set, receives per-query timings.
	Observer CallObserver
}

// RPCClient implements Client over JSON-RPC.
type RPCClient struct {
	c    *rpc.Client
	opts Options
}

var _ Client = (*RPCClient)(nil)

// Dial connects to the node at url. Any transport supported by
// rpc.DialContext (http, ws, ipc) is accepted.
func Dial(ctx context.Context, url string, opts Options) (*RPCClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(c, opts), nil
}

// NewClient wraps an existing connection.
func NewClient(c *rpc.Client, opts Options) *RPCClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &RPCClient{c: c, opts: opts}
}

// Close releases the underlying connection.
func (c *RPCClient) Close() {
	c.c.Close()
}

func (c *RPCClient) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	err := c.c.CallContext(ctx, result, method, args...)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		// the transport may report its own error once the deadline fires
		err = ctx.Err()
	}
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveCall(method, time.Since(start), err)
	}
	if err != nil {
		return &QueryError{Method: method, Err: err}
	}
	return nil
}

// EpochStats calls get_epoch_manager_stats.
func (c *RPCClient) EpochStats(ctx context.Context) (*EpochStats, error) {
	var res EpochStats
	if err := c.call(ctx, &res, MethodEpochStats); err != nil {
		return nil, err
	}
	return &res, nil
}

// Identity calls get_identity.
func (c *RPCClient) Identity(ctx context.Context) (*Identity, error) {
	var res Identity
	if err := c.call(ctx, &res, MethodIdentity); err != nil {
		return nil, err
	}
	return &res, nil
}

// ShardKey calls get_shard_key with the height and the unprefixed hex key.
// A nil key means the node holds no shard key for that height.
func (c *RPCClient) ShardKey(ctx context.Context, height idx.Block, pk validatorpk.PubKey) (*string, error) {
	var res struct {
		ShardKey *string `json:"shard_key"`
	}
	if err := c.call(ctx, &res, MethodShardKey, uint64(height), pk.String()); err != nil {
		return nil, err
	}
	return res.ShardKey, nil
}

// TransactionNodes calls get_transaction and returns the consensus nodes
// recorded for txID, in the order the node reports them.
func (c *RPCClient) TransactionNodes(ctx context.Context, txID string) ([]inter.ConsensusNode, error) {
	var res []inter.ConsensusNode
	if err := c.call(ctx, &res, MethodTransaction, txID); err != nil {
		return nil, err
	}
	return res, nil
}

// LeaderStates calls get_current_leader_state.
func (c *RPCClient) LeaderStates(ctx context.Context, txID string) ([]inter.LeaderState, error) {
	var res []inter.LeaderState
	if err := c.call(ctx, &res, MethodLeaderState, txID); err != nil {
		return nil, err
	}
	return res, nil
}

// Substates calls get_substates for one shard of txID.
func (c *RPCClient) Substates(ctx context.Context, txID string, id shard.ID) ([]inter.Substate, error) {
	var res []inter.Substate
	if err := c.call(ctx, &res, MethodSubstates, txID, id.Hex()); err != nil {
		return nil, err
	}
	return res, nil
}
