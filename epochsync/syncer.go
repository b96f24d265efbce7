package epochsync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/vnscope/metrics"
	"github.com/rony4d/vnscope/nodeapi"
)

// DefaultInterval is the epoch poll period.
const DefaultInterval = 2 * time.Minute

// Options configures a Syncer.
type Options struct {
	Interval time.Duration
}

// Syncer polls the node's epoch on a fixed interval and fetches its identity
// until it succeeds once, publishing both into a Store.
type Syncer struct {
	client   nodeapi.Client
	store    *Store
	interval time.Duration
	log      logrus.FieldLogger
	metrics  *metrics.Recorder

	mu      sync.Mutex
	issued  uint64
	applied uint64

	fetchingIdentity atomic.Bool
}

// NewSyncer creates a syncer. recorder may be nil.
func NewSyncer(client nodeapi.Client, store *Store, opts Options, log logrus.FieldLogger, recorder *metrics.Recorder) *Syncer {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Syncer{
		client:   client,
		store:    store,
		interval: interval,
		log:      log.WithField("module", "epochsync"),
		metrics:  recorder,
	}
}

// Run fetches the identity and the epoch, then polls the epoch every
// interval until ctx is done. A failed identity fetch is retried on each
// tick until one succeeds. Queries already in flight when ctx ends are left
// to complete and still publish their result.
func (s *Syncer) Run(ctx context.Context) {
	detached := context.WithoutCancel(ctx)

	s.startIdentityFetch(detached)
	go s.poll(detached)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Epoch sync stopped")
			return
		case <-ticker.C:
			if s.store.Snapshot().Identity == nil {
				s.startIdentityFetch(detached)
			}
			go s.poll(detached)
		}
	}
}

// startIdentityFetch starts an identity fetch unless one is in flight.
func (s *Syncer) startIdentityFetch(ctx context.Context) {
	if !s.fetchingIdentity.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.fetchingIdentity.Store(false)
		_ = s.FetchIdentity(ctx)
	}()
}

func (s *Syncer) poll(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("Epoch poll failed")
	}
}

// Refresh polls the epoch once. A new EpochSnapshot is published only if the
// epoch differs from the current one. If a later-issued refresh has already
// been applied, the result is discarded.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	stats, err := s.client.EpochStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		s.log.WithField("seq", seq).Debug("Discarding superseded epoch poll")
		return err
	}
	s.applied = seq

	if err != nil {
		s.fail(SourceEpoch, err)
		return err
	}

	snap := &EpochSnapshot{
		CurrentEpoch:       stats.CurrentEpoch,
		CurrentBlockHeight: stats.CurrentBlockHeight,
		IsValid:            stats.IsValid,
		FetchedAt:          time.Now().UTC(),
	}
	var published bool
	s.store.update(func(st *State) bool {
		changed := false
		if st.Epoch == nil || st.Epoch.CurrentEpoch != snap.CurrentEpoch {
			st.Epoch = snap
			published = true
			changed = true
		}
		if st.Err != nil && st.ErrSource == SourceEpoch {
			st.Err, st.ErrSource = nil, ""
			changed = true
		}
		return changed
	})
	if published {
		s.metrics.EpochPublished(uint32(snap.CurrentEpoch))
		s.log.WithFields(logrus.Fields{
			"epoch":  snap.CurrentEpoch,
			"height": snap.CurrentBlockHeight,
		}).Info("New epoch")
	}
	return nil
}

// FetchIdentity queries the node identity and publishes it. Once published
// the identity is not refreshed.
func (s *Syncer) FetchIdentity(ctx context.Context) error {
	id, err := s.client.Identity(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Identity fetch failed")
		s.fail(SourceIdentity, err)
		return err
	}

	snap := &IdentitySnapshot{
		NodeID:        id.NodeID,
		PublicKey:     id.PublicKey.Copy(),
		PublicAddress: id.PublicAddress,
	}
	s.store.update(func(st *State) bool {
		st.Identity = snap
		if st.ErrSource == SourceIdentity {
			st.Err, st.ErrSource = nil, ""
		}
		return true
	})
	s.log.WithFields(logrus.Fields{
		"node_id":    snap.NodeID,
		"public_key": snap.PublicKey.String(),
	}).Info("Node identity")
	return nil
}

// fail records err as the sticky error. Repeats of the current error are not
// republished. Only a later success of the same source clears it.
func (s *Syncer) fail(source string, err error) {
	s.metrics.SyncError(source)
	s.store.update(func(st *State) bool {
		if st.ErrSource == source && sameError(st.Err, err) {
			return false
		}
		st.Err, st.ErrSource = err, source
		return true
	})
}
