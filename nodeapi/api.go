// Package nodeapi is the read-only query interface of a validator node.
//
// Client is the contract the rest of the inspector depends on; RPCClient
// implements it over the node's JSON-RPC 2.0 endpoint.
package nodeapi

import (
	"context"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
	"github.com/rony4d/vnscope/inter/validatorpk"
)

// Remote method names.
const (
	MethodEpochStats  = "get_epoch_manager_stats"
	MethodIdentity    = "get_identity"
	MethodShardKey    = "get_shard_key"
	MethodTransaction = "get_transaction"
	MethodLeaderState = "get_current_leader_state"
	MethodSubstates   = "get_substates"
)

type (
	// EpochStats is the node's view of the current epoch.
	EpochStats struct {
		CurrentEpoch       idx.Epoch `json:"current_epoch"`
		CurrentBlockHeight idx.Block `json:"current_block_height"`
		IsValid            bool      `json:"is_valid"`
	}

	// Identity describes the node itself.
	Identity struct {
		NodeID        string             `json:"node_id"`
		PublicKey     validatorpk.PubKey `json:"public_key"`
		PublicAddress string             `json:"public_address"`
	}
)

// Client queries a validator node. All methods are safe for concurrent use.
type Client interface {
	EpochStats(ctx context.Context) (*EpochStats, error)
	Identity(ctx context.Context) (*Identity, error)
	// ShardKey returns nil when the node has no shard key for the height.
	ShardKey(ctx context.Context, height idx.Block, pk validatorpk.PubKey) (*string, error)
	TransactionNodes(ctx context.Context, txID string) ([]inter.ConsensusNode, error)
	LeaderStates(ctx context.Context, txID string) ([]inter.LeaderState, error)
	Substates(ctx context.Context, txID string, id shard.ID) ([]inter.Substate, error)
}
