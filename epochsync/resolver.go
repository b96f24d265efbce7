package epochsync

import (
	"context"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/vnscope/metrics"
	"github.com/rony4d/vnscope/network"
	"github.com/rony4d/vnscope/nodeapi"
)

type shardKeyInput struct {
	epoch     idx.Epoch
	publicKey string
}

// Resolver keeps State.ShardKey in line with the published epoch and
// identity.
type Resolver struct {
	client  nodeapi.Client
	store   *Store
	rules   network.Rules
	log     logrus.FieldLogger
	metrics *metrics.Recorder

	last    shardKeyInput
	hasLast bool
}

// NewResolver creates a resolver. recorder may be nil.
func NewResolver(client nodeapi.Client, store *Store, rules network.Rules, log logrus.FieldLogger, recorder *metrics.Recorder) *Resolver {
	return &Resolver{
		client:  client,
		store:   store,
		rules:   rules,
		log:     log.WithField("module", "shardkey"),
		metrics: recorder,
	}
}

// Run resolves the shard key for every published state until ctx is done.
// A lookup in flight when ctx ends is left to complete.
func (r *Resolver) Run(ctx context.Context) {
	states, unsubscribe := r.store.Subscribe()
	defer unsubscribe()

	detached := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			_, _ = r.Resolve(detached, st)
		}
	}
}

// Resolve looks up the shard key for st if its (epoch, public key) pair has
// not been tried yet. It reports whether a new key was published. Missing
// inputs are not an error.
func (r *Resolver) Resolve(ctx context.Context, st State) (bool, error) {
	if !st.Ready() {
		return false, nil
	}
	in := shardKeyInput{
		epoch:     st.Epoch.CurrentEpoch,
		publicKey: st.Identity.PublicKey.String(),
	}
	if r.hasLast && in == r.last {
		return false, nil
	}
	r.last, r.hasLast = in, true

	height := r.rules.EpochHeight(in.epoch)
	log := r.log.WithFields(logrus.Fields{
		"epoch":  in.epoch,
		"height": height,
	})

	// current reports whether cur still has the inputs of this lookup.
	current := func(cur *State) bool {
		return cur.Ready() && cur.Epoch.CurrentEpoch == in.epoch &&
			cur.Identity.PublicKey.Equal(st.Identity.PublicKey)
	}

	key, err := r.client.ShardKey(ctx, height, st.Identity.PublicKey)
	if err != nil {
		log.WithError(err).Warn("Shard key lookup failed, keeping previous key")
		r.metrics.SyncError("shard_key")
		r.store.update(func(cur *State) bool {
			if !current(cur) || sameError(cur.ShardKeyErr, err) {
				return false
			}
			cur.ShardKeyErr = err
			return true
		})
		return false, err
	}

	published := false
	r.store.update(func(cur *State) bool {
		if !current(cur) {
			// inputs moved on while the lookup was in flight
			return false
		}
		cur.ShardKey = key
		cur.ShardKeyErr = nil
		published = true
		return true
	})
	if !published {
		return false, nil
	}
	r.metrics.ShardKeyResolved()
	if key == nil {
		log.Info("Node has no shard key for epoch")
	} else {
		log.WithField("shard_key", *key).Info("Shard key resolved")
	}
	return true, nil
}
