// Package inter defines the records a validator node reports about a
// transaction's progress through the commit pipeline, and their wire codecs.
package inter

// Phase is the stage of the multi-round agreement protocol a consensus node
// represents. It is derived purely from the node's height.
type Phase uint8

const (
	// PhaseUnknown covers every height outside 1..4. It is a placeholder for
	// pipelines with more rounds, not an error.
	PhaseUnknown Phase = iota
	PhasePrepare
	PhasePrecommit
	PhaseCommit
	PhaseDecide
)

// PhaseOf maps a node height to its pipeline phase. The mapping is total:
// 1 Prepare, 2 Precommit, 3 Commit, 4 Decide, anything else Unknown.
func PhaseOf(height uint64) Phase {
	switch height {
	case 1:
		return PhasePrepare
	case 2:
		return PhasePrecommit
	case 3:
		return PhaseCommit
	case 4:
		return PhaseDecide
	default:
		return PhaseUnknown
	}
}

func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "Prepare"
	case PhasePrecommit:
		return "Precommit"
	case PhaseCommit:
		return "Commit"
	case PhaseDecide:
		return "Decide"
	default:
		return "Unknown"
	}
}

// MarshalText writes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
