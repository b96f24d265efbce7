package txview

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
)

// AggregationError reports a failed substate fetch for one shard.
type AggregationError struct {
	Shard shard.ID
	Err   error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("substates of shard %s: %v", e.Shard.Hex(), e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// ShardTimeline is everything known about a transaction on one shard.
type ShardTimeline struct {
	Shard shard.ID
	// Nodes are ordered by height.
	Nodes []AnnotatedNode
	// Leader is nil when the shard has no current leader record.
	Leader *inter.LeaderState
	// Substates is empty, never nil, once fetched successfully.
	Substates []inter.Substate
	// SubstatesErr is set when the substate fetch for this shard failed.
	SubstatesErr error
}

// MarshalJSON adds the substate error as a string.
func (t *ShardTimeline) MarshalJSON() ([]byte, error) {
	out := struct {
		Shard          shard.ID           `json:"shard"`
		Nodes          []AnnotatedNode    `json:"nodes"`
		Leader         *inter.LeaderState `json:"leader"`
		Substates      []inter.Substate   `json:"substates"`
		SubstatesError string             `json:"substates_error,omitempty"`
	}{
		Shard:     t.Shard,
		Nodes:     t.Nodes,
		Leader:    t.Leader,
		Substates: t.Substates,
	}
	if t.SubstatesErr != nil {
		out.SubstatesError = t.SubstatesErr.Error()
	}
	return json.Marshal(out)
}

// View is the per-shard pipeline timeline of one transaction.
type View struct {
	TransactionID string           `json:"transaction_id"`
	Shards        []*ShardTimeline `json:"shards"`
}

// Shard returns the timeline of id, or nil.
func (v *View) Shard(id shard.ID) *ShardTimeline {
	for _, t := range v.Shards {
		if t.Shard == id {
			return t
		}
	}
	return nil
}

// ShardIDs lists the shards in view order.
func (v *View) ShardIDs() []shard.ID {
	ids := make([]shard.ID, len(v.Shards))
	for i, t := range v.Shards {
		ids[i] = t.Shard
	}
	return ids
}

// FailedShards counts shards whose substates could not be fetched.
func (v *View) FailedShards() int {
	n := 0
	for _, t := range v.Shards {
		if t.SubstatesErr != nil {
			n++
		}
	}
	return n
}

// Err joins the per-shard substate errors. It is nil for a complete view.
func (v *View) Err() error {
	var errs []error
	for _, t := range v.Shards {
		if t.SubstatesErr != nil {
			errs = append(errs, &AggregationError{Shard: t.Shard, Err: t.SubstatesErr})
		}
	}
	return errors.Join(errs...)
}
