package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/vnscope/epochsync"
	"github.com/rony4d/vnscope/metrics"
	"github.com/rony4d/vnscope/network"
	"github.com/rony4d/vnscope/nodeapi"
	"github.com/rony4d/vnscope/txview"
	"github.com/rony4d/vnscope/utils/logging"
)

var (
	watchCommand = cli.Command{
		Name:   "watch",
		Usage:  "Keep the node's epoch, identity and shard key fresh and report every change",
		Action: watch,
	}
	statusCommand = cli.Command{
		Name:   "status",
		Usage:  "Print the node's current epoch, identity and shard key",
		Action: status,
	}
	txCommand = cli.Command{
		Name:      "tx",
		Usage:     "Print the per-shard pipeline timeline of a transaction; exits non-zero if any shard is incomplete",
		ArgsUsage: "<transaction-id>",
		Action:    tx,
	}
)

// runtime holds what every command needs.
type runtime struct {
	cfg      Config
	rules    network.Rules
	log      *logrus.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	client   *nodeapi.RPCClient
}

func setup(ctx *cli.Context) (*runtime, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	logCfg := cfg.loggingConfig()
	logCfg.Output = ctx.App.ErrWriter
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client, err := nodeapi.Dial(context.Background(), cfg.Node.RPCURL, nodeapi.Options{
		Timeout:  cfg.Node.RPCTimeout,
		Observer: recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Node.RPCURL, err)
	}

	log.WithFields(logrus.Fields{
		"url":     cfg.Node.RPCURL,
		"network": rules.Name,
		"preset":  cfg.Preset,
	}).Debug("Connected to node")

	return &runtime{
		cfg:      cfg,
		rules:    rules,
		log:      log,
		registry: registry,
		recorder: recorder,
		client:   client,
	}, nil
}

func (rt *runtime) Close() {
	rt.client.Close()
}

func watch(ctx *cli.Context) error {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	runCtx, stop := newContext()
	defer stop()

	store := epochsync.NewStore()
	syncer := epochsync.NewSyncer(rt.client, store, epochsync.Options{Interval: rt.cfg.Sync.Interval}, rt.log, rt.recorder)
	resolver := epochsync.NewResolver(rt.client, store, rt.rules, rt.log, rt.recorder)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		syncer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		resolver.Run(gctx)
		return nil
	})
	if rt.cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, rt.cfg.MetricsAddr(), rt.registry, rt.log)
		})
	}
	g.Go(func() error {
		states, unsubscribe := store.Subscribe()
		defer unsubscribe()
		for {
			select {
			case <-gctx.Done():
				return nil
			case st := <-states:
				if st.Version == 0 {
					continue
				}
				if err := writeStatus(ctx.App.Writer, rt.cfg.TxView.Format, st); err != nil {
					return err
				}
			}
		}
	})

	rt.log.WithField("interval", rt.cfg.Sync.Interval).Info("Watching node")
	return g.Wait()
}

func status(ctx *cli.Context) error {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	c := context.Background()
	store := epochsync.NewStore()
	syncer := epochsync.NewSyncer(rt.client, store, epochsync.Options{Interval: rt.cfg.Sync.Interval}, rt.log, rt.recorder)
	resolver := epochsync.NewResolver(rt.client, store, rt.rules, rt.log, rt.recorder)

	idErr := syncer.FetchIdentity(c)
	epochErr := syncer.Refresh(c)
	_, keyErr := resolver.Resolve(c, store.Snapshot())

	if err := writeStatus(ctx.App.Writer, rt.cfg.TxView.Format, store.Snapshot()); err != nil {
		return err
	}
	return errors.Join(idErr, epochErr, keyErr)
}

func tx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: %s tx <transaction-id>", ctx.App.Name)
	}
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	agg := txview.New(rt.client, txview.Options{
		FanOut: rt.cfg.TxView.FanOut,
		Strict: rt.cfg.TxView.Strict,
	}, rt.log, rt.recorder)

	view, err := agg.Load(context.Background(), ctx.Args().First())
	if err != nil {
		return err
	}
	if err := writeView(ctx.App.Writer, rt.cfg.TxView.Format, view); err != nil {
		return err
	}
	if verr := view.Err(); verr != nil {
		rt.log.WithError(verr).Warn("Transaction view is incomplete")
		return fmt.Errorf("incomplete view of %s: %w", view.TransactionID, verr)
	}
	return nil
}
