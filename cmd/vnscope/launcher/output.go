package launcher

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rony4d/vnscope/epochsync"
	"github.com/rony4d/vnscope/txview"
)

type statusOutput struct {
	Epoch         *uint32 `json:"current_epoch"`
	BlockHeight   *uint64 `json:"current_block_height,omitempty"`
	NodeID        string  `json:"node_id,omitempty"`
	PublicKey     string  `json:"public_key,omitempty"`
	PublicAddress string  `json:"public_address,omitempty"`
	ShardKey      *string `json:"shard_key"`
	Error         string  `json:"error,omitempty"`
	ShardKeyError string  `json:"shard_key_error,omitempty"`
}

func newStatusOutput(st epochsync.State) statusOutput {
	out := statusOutput{ShardKey: st.ShardKey}
	if st.Epoch != nil {
		epoch := uint32(st.Epoch.CurrentEpoch)
		height := uint64(st.Epoch.CurrentBlockHeight)
		out.Epoch = &epoch
		out.BlockHeight = &height
	}
	if st.Identity != nil {
		out.NodeID = st.Identity.NodeID
		out.PublicKey = st.Identity.PublicKey.String()
		out.PublicAddress = st.Identity.PublicAddress
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	if st.ShardKeyErr != nil {
		out.ShardKeyError = st.ShardKeyErr.Error()
	}
	return out
}

func writeStatus(w io.Writer, format string, st epochsync.State) error {
	out := newStatusOutput(st)
	if format == "json" {
		return json.NewEncoder(w).Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k string, v interface{}) {
		fmt.Fprintf(tw, "%s\t%v\n", k, v)
	}
	if out.Epoch != nil {
		row("epoch", *out.Epoch)
		row("block height", *out.BlockHeight)
	} else {
		row("epoch", "-")
	}
	if out.PublicKey != "" {
		row("node id", out.NodeID)
		row("public key", out.PublicKey)
		row("public address", out.PublicAddress)
	} else {
		row("public key", "-")
	}
	if out.ShardKey != nil {
		row("shard key", *out.ShardKey)
	} else {
		row("shard key", "-")
	}
	if out.Error != "" {
		row("error", out.Error)
	}
	if out.ShardKeyError != "" {
		row("shard key error", out.ShardKeyError)
	}
	return tw.Flush()
}

func writeView(w io.Writer, format string, v *txview.View) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "transaction\t%s\n", v.TransactionID)
	if len(v.Shards) == 0 {
		fmt.Fprintln(tw, "no consensus nodes")
	}
	for _, t := range v.Shards {
		fmt.Fprintf(tw, "\nshard\t%s\n", t.Shard.Hex())
		if t.Leader != nil {
			fmt.Fprintf(tw, "leader\t%s (round %d, %s)\n", t.Leader.Leader.Hex(), t.Leader.LeaderRound, t.Leader.Timestamp)
		} else {
			fmt.Fprintln(tw, "leader\t-")
		}
		fmt.Fprintln(tw, "height\tphase\tcertificate\tleader round\ttimestamp")
		for _, n := range t.Nodes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", n.Height, n.Phase, n.Certificate, n.LeaderRound, n.Timestamp)
		}
		if t.SubstatesErr != nil {
			fmt.Fprintf(tw, "substates\terror: %v\n", t.SubstatesErr)
			continue
		}
		fmt.Fprintf(tw, "substates\t%d\n", len(t.Substates))
		for _, s := range t.Substates {
			life := "alive"
			if !s.Alive() {
				life = "destroyed " + heightOrDash(s.DestroyedAt)
			}
			fmt.Fprintf(tw, "  %s\tcreated %s\t%s\n", s.Address, heightOrDash(s.CreatedAt), life)
		}
	}
	return tw.Flush()
}

func heightOrDash(h *uint64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprint(*h)
}
