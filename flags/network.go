package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags covers how to reach the node and which network it runs on.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "rpc.url",
			Usage: "Validator node JSON-RPC endpoint (http, ws or ipc path)",
			Value: "http://127.0.0.1:18200/json_rpc",
		},
		cli.StringFlag{
			Name:  "network",
			Usage: "Network the node runs on (mainnet|testnet|localnet)",
			Value: "localnet",
		},
		cli.Uint64Flag{
			Name:  "epoch.multiplier",
			Usage: "Heights per epoch used for shard key lookups (overrides the network rules)",
		},
	}
}
