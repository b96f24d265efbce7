// Package txview builds the per-shard pipeline timeline of a transaction
// from the node's consensus node, leader state and substate records.
package txview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/vnscope/inter"
	"github.com/rony4d/vnscope/inter/shard"
	"github.com/rony4d/vnscope/metrics"
)

// DefaultFanOut bounds concurrent substate fetches when Options.FanOut is zero.
const DefaultFanOut = 8

// ErrEmptyTransactionID is returned by Load for a blank transaction id.
var ErrEmptyTransactionID = errors.New("empty transaction id")

// Source provides the records a view is built from. nodeapi.Client
// satisfies it.
type Source interface {
	TransactionNodes(ctx context.Context, txID string) ([]inter.ConsensusNode, error)
	LeaderStates(ctx context.Context, txID string) ([]inter.LeaderState, error)
	Substates(ctx context.Context, txID string, id shard.ID) ([]inter.Substate, error)
}

// Options configures an Aggregator.
type Options struct {
	// FanOut bounds concurrent substate fetches.
	FanOut int
	// Strict fails the whole load when any shard's substates cannot be
	// fetched. Otherwise the failure is recorded on the shard's timeline.
	Strict bool
}

// Aggregator loads transaction views. It keeps no state between loads.
type Aggregator struct {
	src     Source
	opts    Options
	log     logrus.FieldLogger
	metrics *metrics.Recorder
}

// New creates an aggregator. recorder may be nil.
func New(src Source, opts Options, log logrus.FieldLogger, recorder *metrics.Recorder) *Aggregator {
	if opts.FanOut <= 0 {
		opts.FanOut = DefaultFanOut
	}
	return &Aggregator{
		src:     src,
		opts:    opts,
		log:     log.WithField("module", "txview"),
		metrics: recorder,
	}
}

// Load builds the view of txID. Node and leader records are fetched
// concurrently and both must succeed; substates are then fetched per
// discovered shard. The node is queried with txID stripped of surrounding
// whitespace; View.TransactionID is txID as given.
func (a *Aggregator) Load(ctx context.Context, txID string) (*View, error) {
	query := strings.TrimSpace(txID)
	if query == "" {
		return nil, ErrEmptyTransactionID
	}
	view, err := a.load(ctx, query)
	if err != nil {
		a.metrics.ObserveView(0, 0, err)
		return nil, err
	}
	view.TransactionID = txID
	a.metrics.ObserveView(len(view.Shards), view.FailedShards(), nil)
	return view, nil
}

func (a *Aggregator) load(ctx context.Context, txID string) (*View, error) {
	log := a.log.WithField("tx", txID)

	var (
		nodes   []inter.ConsensusNode
		leaders []inter.LeaderState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		nodes, err = a.src.TransactionNodes(gctx, txID)
		return err
	})
	g.Go(func() (err error) {
		leaders, err = a.src.LeaderStates(gctx, txID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", txID, err)
	}

	groups := PartitionNodes(nodes)
	leaderByShard, dupes := PartitionLeaders(leaders)
	if dupes > 0 {
		log.WithField("duplicates", dupes).Warn("Multiple leader states for a shard")
	}

	view := &View{
		TransactionID: txID,
		Shards:        make([]*ShardTimeline, 0, len(groups.Order)),
	}
	for _, id := range groups.Order {
		t := &ShardTimeline{
			Shard:  id,
			Leader: leaderByShard[id],
		}
		for _, n := range groups.Nodes[id] {
			t.Nodes = append(t.Nodes, AnnotateNode(n))
		}
		view.Shards = append(view.Shards, t)
	}
	for id := range leaderByShard {
		if _, ok := groups.Nodes[id]; !ok {
			log.WithField("shard", id.Hex()).Debug("Ignoring leader state of shard without nodes")
		}
	}

	if err := a.fetchSubstates(ctx, txID, view); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"nodes":  len(nodes),
		"shards": len(view.Shards),
		"failed": view.FailedShards(),
	}).Debug("Transaction view loaded")
	return view, nil
}

func (a *Aggregator) fetchSubstates(ctx context.Context, txID string, view *View) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.FanOut)
	for _, t := range view.Shards {
		t := t
		g.Go(func() error {
			subs, err := a.src.Substates(gctx, txID, t.Shard)
			if err == nil {
				err = validateSubstates(subs)
			}
			if err != nil {
				if a.opts.Strict {
					return &AggregationError{Shard: t.Shard, Err: err}
				}
				a.log.WithFields(logrus.Fields{
					"tx":    txID,
					"shard": t.Shard.Hex(),
				}).WithError(err).Warn("Substate fetch failed")
				t.SubstatesErr = err
				return nil
			}
			if subs == nil {
				subs = []inter.Substate{}
			}
			t.Substates = subs
			return nil
		})
	}
	return g.Wait()
}

func validateSubstates(subs []inter.Substate) error {
	for i := range subs {
		if err := subs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
