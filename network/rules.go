// Package network defines the per-network conventions the inspector relies on
// when talking to a validator node.
//
// The node owns these conventions; the inspector only mirrors them:
//   - Epoch to height scaling used when asking for a node's shard key
//   - Network name, used to pick a rule set from the command line
//
// Rules are plain values; callers may override any field after selecting a
// named rule set.
package network

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Network names accepted by RulesByName.
const (
	MainNetName  = "mainnet"
	TestNetName  = "testnet"
	LocalNetName = "localnet"

	// DefaultEpochHeightMultiplier is the number of heights per epoch the
	// node uses when converting an epoch into a shard key lookup height.
	DefaultEpochHeightMultiplier uint64 = 10
)

// Rules describes the conventions of one network.
type Rules struct {
	Name string

	// Epochs options
	Epochs EpochsRules
}

// EpochsRules defines how epoch numbers relate to heights.
type EpochsRules struct {
	// HeightMultiplier converts an epoch to the height at which shard
	// assignments for that epoch are looked up.
	HeightMultiplier uint64
}

// MainNetRules returns the rules of the production network.
func MainNetRules() Rules {
	return Rules{
		Name:   MainNetName,
		Epochs: DefaultEpochsRules(),
	}
}

// TestNetRules returns the rules of the public test network.
func TestNetRules() Rules {
	return Rules{
		Name:   TestNetName,
		Epochs: DefaultEpochsRules(),
	}
}

// LocalNetRules returns the rules used by local development networks.
func LocalNetRules() Rules {
	return Rules{
		Name:   LocalNetName,
		Epochs: DefaultEpochsRules(),
	}
}

// DefaultEpochsRules returns the epoch conventions shared by all known networks.
func DefaultEpochsRules() EpochsRules {
	return EpochsRules{
		HeightMultiplier: DefaultEpochHeightMultiplier,
	}
}

var known = map[string]func() Rules{
	MainNetName:  MainNetRules,
	TestNetName:  TestNetRules,
	LocalNetName: LocalNetRules,
}

// Names lists the known network names in sorted order.
func Names() []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RulesByName returns the rule set registered under name.
func RulesByName(name string) (Rules, error) {
	fn, ok := known[name]
	if !ok {
		return Rules{}, fmt.Errorf("unknown network %q (known: %v)", name, Names())
	}
	return fn(), nil
}

// EpochHeight converts an epoch number into the height used for shard key
// lookups.
func (r Rules) EpochHeight(epoch idx.Epoch) idx.Block {
	return idx.Block(uint64(epoch) * r.Epochs.HeightMultiplier)
}

// Validate reports rule sets that cannot be used.
func (r Rules) Validate() error {
	if r.Epochs.HeightMultiplier == 0 {
		return fmt.Errorf("network %q: epoch height multiplier must be positive", r.Name)
	}
	return nil
}

// String returns the rules as JSON, for logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
