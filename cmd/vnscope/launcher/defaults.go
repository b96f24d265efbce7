package launcher

import (
	"time"

	"github.com/rony4d/vnscope/network"
)

// Defaults bundles the baseline configuration values the launcher uses before
// presets, config files and flags override them.

type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Sync    SyncDefaults
	TxView  TxViewDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
}

// NodeDefaults describes how the node is reached.
type NodeDefaults struct {
	RPCURL     string        //	JSON-RPC endpoint of the validator node. Anything the go-ethereum rpc client dials works: http(s)://, ws(s):// or a local IPC socket path.
	RPCTimeout time.Duration //	Upper bound for every single query. A query that runs out of time is treated like any other failed query.
}

// NetworkDefaults selects the network conventions.
type NetworkDefaults struct {
	Name            string //	Network the node runs on; selects the rule set (mainnet, testnet, localnet).
	EpochMultiplier uint64 //	Heights per epoch for shard key lookups. Zero keeps the value of the selected network's rules.
}

// SyncDefaults tunes the epoch synchronization loop.
type SyncDefaults struct {
	Interval time.Duration //	Time between two epoch polls. The identity is fetched once and never polled.
}

// TxViewDefaults tunes transaction view loading.
type TxViewDefaults struct {
	FanOut int    //	Maximum number of substate fetches in flight for one transaction.
	Strict bool   //	When true one failed shard fails the whole view; otherwise the shard carries its own error.
	Format string //	Output format of the status and tx commands (text or json).
}

// MetricsDefaults controls the Prometheus endpoint.
type MetricsDefaults struct {
	Enable   bool   //	Serve /metrics while watching.
	HTTPAddr string //	Interface the metrics server binds to.
	HTTPPort int    //	Port of the metrics server.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs.
	SentryDSN string //	Sentry project DSN; error-level entries are forwarded when set.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			RPCURL:     "http://127.0.0.1:18200/json_rpc",
			RPCTimeout: 30 * time.Second,
		},
		Network: NetworkDefaults{
			Name: network.LocalNetName,
		},
		Sync: SyncDefaults{
			Interval: 2 * time.Minute,
		},
		TxView: TxViewDefaults{
			FanOut: 8,
			Strict: false,
			Format: "text",
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
	}
}
