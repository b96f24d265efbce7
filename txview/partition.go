package txview

import (
	"sort"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
)

// NodeGroups is a flat node collection partitioned by shard.
type NodeGroups struct {
	// Order lists shards in order of first appearance in the input.
	Order []shard.ID
	Nodes map[shard.ID][]inter.ConsensusNode
}

// PartitionNodes groups nodes by shard. Within a shard nodes are stably
// sorted by height, so equal heights keep their input order.
func PartitionNodes(nodes []inter.ConsensusNode) NodeGroups {
	g := NodeGroups{
		Nodes: make(map[shard.ID][]inter.ConsensusNode),
	}
	for _, n := range nodes {
		if _, ok := g.Nodes[n.Shard]; !ok {
			g.Order = append(g.Order, n.Shard)
		}
		g.Nodes[n.Shard] = append(g.Nodes[n.Shard], n)
	}
	for _, id := range g.Order {
		list := g.Nodes[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Height < list[j].Height
		})
	}
	return g
}

// Flatten concatenates the groups back into one collection, shard by shard.
func (g NodeGroups) Flatten() []inter.ConsensusNode {
	var out []inter.ConsensusNode
	for _, id := range g.Order {
		out = append(out, g.Nodes[id]...)
	}
	return out
}

// PartitionLeaders keeps one leader state per shard. When a shard has several,
// the later timestamp wins, then the higher leader round, then the later
// record in input order. It also returns how many records were superseded.
func PartitionLeaders(states []inter.LeaderState) (map[shard.ID]*inter.LeaderState, int) {
	out := make(map[shard.ID]*inter.LeaderState, len(states))
	dupes := 0
	for i := range states {
		s := &states[i]
		cur, ok := out[s.Shard]
		if ok {
			dupes++
			if !supersedes(s, cur) {
				continue
			}
		}
		out[s.Shard] = s
	}
	return out, dupes
}

func supersedes(next, cur *inter.LeaderState) bool {
	if c := inter.CompareTimestamps(next.Timestamp, cur.Timestamp); c != 0 {
		return c > 0
	}
	return next.LeaderRound >= cur.LeaderRound
}
