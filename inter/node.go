package inter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/vnscope/inter/hexbytes"
	"github.com/rony4d/vnscope/inter/shard"
)

// ErrInvalidSubstate is returned for substates destroyed before they were created.
var ErrInvalidSubstate = errors.New("substate destroyed before creation")

type (
	// ConsensusNode is one pipeline step of a transaction on a shard.
	ConsensusNode struct {
		Shard          shard.ID          `json:"shard"`
		Height         uint64            `json:"height"`
		NodeHash       hexbytes.Bytes    `json:"hash,omitempty"`
		ParentNodeHash hexbytes.Bytes    `json:"parent,omitempty"`
		PayloadID      hexbytes.Bytes    `json:"payload_id,omitempty"`
		PayloadHeight  uint64            `json:"payload_height"`
		LeaderRound    uint64            `json:"leader_round"`
		Epoch          idx.Epoch         `json:"epoch"`
		ProposedBy     hexbytes.Bytes    `json:"proposed_by,omitempty"`
		Justify        QuorumCertificate `json:"justify"`
		Timestamp      Timestamp         `json:"timestamp"`
	}

	// LeaderState is the current leader-election record for a shard.
	LeaderState struct {
		Shard       shard.ID       `json:"shard_id"`
		Leader      hexbytes.Bytes `json:"leader"`
		LeaderRound uint64         `json:"leader_round"`
		PayloadID   hexbytes.Bytes `json:"payload_id,omitempty"`
		Timestamp   Timestamp      `json:"timestamp"`
	}

	// Substate is one version of a ledger object. CreatedAt and DestroyedAt
	// are pipeline heights; nil means not (yet) reached.
	Substate struct {
		Address     string          `json:"address"`
		Data        json.RawMessage `json:"data,omitempty"`
		CreatedAt   *uint64         `json:"created_at"`
		DestroyedAt *uint64         `json:"destroyed_at"`
	}
)

// Phase returns the pipeline phase of the node.
func (n *ConsensusNode) Phase() Phase {
	return PhaseOf(n.Height)
}

// Validate checks the substate's lifecycle ordering.
func (s *Substate) Validate() error {
	if s.CreatedAt != nil && s.DestroyedAt != nil && *s.CreatedAt > *s.DestroyedAt {
		return fmt.Errorf("%w: %s created at %d, destroyed at %d",
			ErrInvalidSubstate, s.Address, *s.CreatedAt, *s.DestroyedAt)
	}
	return nil
}

// Alive reports whether the substate version has not been destroyed.
func (s *Substate) Alive() bool {
	return s.DestroyedAt == nil
}
