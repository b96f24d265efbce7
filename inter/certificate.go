package inter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/vnscope/inter/hexbytes"
)

// Decision is the outcome a quorum certificate records for a pipeline step.
//
// On the wire it is either the string "Accept" or an object of the form
// {"Reject": <reason>}. Anything that is not a Reject object counts as Accept.
type Decision struct {
	Rejected bool
	// Reason is set for rejections. Non-string reasons are kept as raw JSON.
	Reason string
}

// Accept is the accepting decision.
var Accept = Decision{}

// Reject builds a rejecting decision with the given reason.
func Reject(reason string) Decision {
	return Decision{Rejected: true, Reason: reason}
}

func (d Decision) String() string {
	if d.Rejected {
		return "Reject(" + d.Reason + ")"
	}
	return "Accept"
}

// MarshalJSON writes the node's wire form.
func (d Decision) MarshalJSON() ([]byte, error) {
	if !d.Rejected {
		return []byte(`"Accept"`), nil
	}
	return json.Marshal(map[string]string{"Reject": d.Reason})
}

// UnmarshalJSON decodes the node's wire form.
func (d *Decision) UnmarshalJSON(data []byte) error {
	*d = Accept
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid decision: %w", err)
	}
	reason, ok := obj["Reject"]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(reason, &s); err != nil {
		s = string(reason)
	}
	*d = Reject(s)
	return nil
}

// QuorumCertificate is the justification embedded in every consensus node:
// evidence that a supermajority of validators voted on the parent step.
type QuorumCertificate struct {
	PayloadID       hexbytes.Bytes `json:"payload_id,omitempty"`
	PayloadHeight   uint64         `json:"payload_height"`
	LocalNodeHash   hexbytes.Bytes `json:"local_node_hash,omitempty"`
	LocalNodeHeight uint64         `json:"local_node_height"`
	Epoch           idx.Epoch      `json:"epoch"`
	Decision        Decision       `json:"decision"`
	// ValidatorsMetadata holds one opaque entry per vote.
	ValidatorsMetadata []json.RawMessage `json:"validators_metadata"`
}

// IsGenesis reports whether this is the synthetic genesis certificate, which
// carries neither a decision nor votes.
func (qc QuorumCertificate) IsGenesis() bool {
	return qc.LocalNodeHeight == 0
}

// Votes is the number of validator votes the certificate aggregates.
func (qc QuorumCertificate) Votes() int {
	return len(qc.ValidatorsMetadata)
}

// UnmarshalJSON accepts the certificate either as a JSON object or as a JSON
// string holding the encoded object, which is how transaction records carry it.
func (qc *QuorumCertificate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*qc = QuorumCertificate{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var embedded string
		if err := json.Unmarshal(data, &embedded); err != nil {
			return fmt.Errorf("invalid justify: %w", err)
		}
		data = []byte(embedded)
	}
	type plain QuorumCertificate
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("invalid justify: %w", err)
	}
	*qc = QuorumCertificate(out)
	return nil
}
