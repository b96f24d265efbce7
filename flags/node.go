package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// SyncFlags tunes the epoch synchronization loop.
func SyncFlags() []cli.Flag {
	return []cli.Flag{
		cli.DurationFlag{
			Name:  "sync.interval",
			Usage: "Epoch poll interval",
			Value: 2 * time.Minute,
		},
	}
}

// TxViewFlags tunes transaction view loading and output.
func TxViewFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "txview.fanout",
			Usage: "Maximum concurrent substate fetches per transaction",
			Value: 8,
		},
		cli.BoolFlag{
			Name:  "txview.strict",
			Usage: "Fail the whole view when any shard's substates cannot be fetched",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "Output format (text|json)",
			Value: "text",
		},
	}
}

// AllFlags returns every flag the application accepts.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, NetworkFlags()...)
	all = append(all, SyncFlags()...)
	all = append(all, TxViewFlags()...)
	return all
}
