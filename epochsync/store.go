// Package epochsync keeps a fresh view of a validator node's epoch, identity
// and shard key.
//
// Syncer polls the node and Resolver derives the shard key; both publish
// through a Store. Consumers read immutable State values, either on demand
// with Store.Snapshot or as they change with Store.Subscribe.
package epochsync

import (
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/vnscope/inter/validatorpk"
)

type (
	// EpochSnapshot is the node's epoch as of one successful poll.
	EpochSnapshot struct {
		CurrentEpoch       idx.Epoch
		CurrentBlockHeight idx.Block
		IsValid            bool
		FetchedAt          time.Time
	}

	// IdentitySnapshot is the node's identity, fetched once per process.
	IdentitySnapshot struct {
		NodeID        string
		PublicKey     validatorpk.PubKey
		PublicAddress string
	}
)

// Sources of State.Err.
const (
	SourceEpoch    = "epoch"
	SourceIdentity = "identity"
)

// State is one published view. Values reachable from a State are never
// modified after publication.
type State struct {
	Epoch    *EpochSnapshot
	Identity *IdentitySnapshot
	// ShardKey is nil until both Epoch and Identity are known and the node
	// reported a key for them.
	ShardKey *string

	// Err is the sticky error of the last failed epoch or identity query.
	// It is cleared by the next success of the query named by ErrSource.
	Err error

	ErrSource string

	// ShardKeyErr is the error of the last failed shard key lookup.
	ShardKeyErr error

	// Version increases with every publication.
	Version uint64
}

// Ready reports whether both inputs of the shard key are known.
func (s State) Ready() bool {
	return s.Epoch != nil && s.Identity != nil
}

// Store owns the current State and broadcasts every change.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[chan State]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		subs: make(map[chan State]struct{}),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives the current state immediately and
// then every later state. A slow reader only ever sees the newest pending
// state; intermediate ones are dropped. The returned func unsubscribes and
// closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// update applies fn to a copy of the current state and publishes the result
// if fn reports a change.
func (s *Store) update(fn func(st *State) bool) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	if !fn(&next) {
		return s.state, false
	}
	next.Version = s.state.Version + 1
	s.state = next

	for ch := range s.subs {
		select {
		case ch <- next:
		default:
			// replace the stale pending state
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
	return next, true
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}
