package txview

import (
	"fmt"

	"github.com/rony4d/vnscope/inter"
)

// CertificateKind classifies the quorum certificate justifying a node.
type CertificateKind uint8

const (
	CertificateGenesis CertificateKind = iota
	CertificateAccept
	CertificateReject
)

func (k CertificateKind) String() string {
	switch k {
	case CertificateGenesis:
		return "Genesis"
	case CertificateAccept:
		return "Accept"
	case CertificateReject:
		return "Reject"
	default:
		return fmt.Sprintf("CertificateKind(%d)", uint8(k))
	}
}

// MarshalText writes the kind name.
func (k CertificateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Certificate is the display annotation of a node's justification.
type Certificate struct {
	Kind         CertificateKind `json:"kind"`
	RejectReason string          `json:"reject_reason,omitempty"`
	// Votes is nil for genesis certificates, which carry no votes.
	Votes *int `json:"votes,omitempty"`
}

// Annotate classifies qc. A certificate at local height 0 is the synthetic
// genesis certificate; any other is Accept unless its decision is Reject.
func Annotate(qc inter.QuorumCertificate) Certificate {
	if qc.IsGenesis() {
		return Certificate{Kind: CertificateGenesis}
	}
	votes := qc.Votes()
	c := Certificate{Kind: CertificateAccept, Votes: &votes}
	if qc.Decision.Rejected {
		c.Kind = CertificateReject
		c.RejectReason = qc.Decision.Reason
	}
	return c
}

func (c Certificate) String() string {
	switch {
	case c.Votes == nil:
		return c.Kind.String()
	case c.Kind == CertificateReject:
		return fmt.Sprintf("Reject(votes=%d, reason=%s)", *c.Votes, c.RejectReason)
	default:
		return fmt.Sprintf("%s(votes=%d)", c.Kind, *c.Votes)
	}
}

// AnnotatedNode is a consensus node with its phase and certificate
// classification.
type AnnotatedNode struct {
	inter.ConsensusNode
	Phase       inter.Phase `json:"phase"`
	Certificate Certificate `json:"certificate"`
}

// AnnotateNode derives the phase and certificate annotations of n.
func AnnotateNode(n inter.ConsensusNode) AnnotatedNode {
	return AnnotatedNode{
		ConsensusNode: n,
		Phase:         inter.PhaseOf(n.Height),
		Certificate:   Annotate(n.Justify),
	}
}

// Label is the short form used in timelines, e.g. "Precommit/Accept(votes=2)".
func (n AnnotatedNode) Label() string {
	return n.Phase.String() + "/" + n.Certificate.String()
}
