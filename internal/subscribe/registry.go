package subscribe

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/iamnno/IES/internal/telemetry"
	logpkg "github.com/iamnno/IES/pkg/log"
)

const defaultSendTimeout = 200 * time.Millisecond

// Options tunes the Registry.
type Options struct {
	// SendTimeout bounds how long one delivery may block on a full
	// subscriber buffer before that subscriber is declared broken.
	SendTimeout time.Duration
	Logger      logpkg.Logger
}

// Registry owns the per-owner subscriber sets.
type Registry struct {
	mu     sync.RWMutex
	owners map[int64]map[*Subscriber]struct{}

	sendTimeout time.Duration
	logger      logpkg.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	return &Registry{
		owners:      make(map[int64]map[*Subscriber]struct{}),
		sendTimeout: opts.SendTimeout,
		logger:      opts.Logger.With(logpkg.Component("subscribe")),
	}
}

// Subscribe adds sub to ownerID's set. Idempotent; safe to call while
// broadcasts for the same owner are in flight.
func (r *Registry) Subscribe(ownerID int64, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.owners[ownerID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.owners[ownerID] = set
	}
	set[sub] = struct{}{}
}

// Unsubscribe removes sub from ownerID's set and disconnects it.
// Idempotent. A delivery already in flight for sub completes or fails on
// its own; removal only affects future broadcasts.
func (r *Registry) Unsubscribe(ownerID int64, sub *Subscriber) {
	r.mu.Lock()
	if set, ok := r.owners[ownerID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(r.owners, ownerID)
		}
	}
	r.mu.Unlock()
	sub.disconnect()
}

// Subscribers reports the current set size for an owner. An absent entry
// and an empty set both mean zero.
func (r *Registry) Subscribers(ownerID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners[ownerID])
}

// Broadcast delivers rec to every subscriber currently registered for
// ownerID. Membership is snapshotted first, then each delivery proceeds
// independently: a full buffer past the bounded attempt or an already
// disconnected subscriber counts as a delivery failure, which removes
// that subscriber and nothing else.
func (r *Registry) Broadcast(ownerID int64, rec telemetry.Record) {
	r.mu.RLock()
	set := r.owners[ownerID]
	members := make([]*Subscriber, 0, len(set))
	for sub := range set {
		members = append(members, sub)
	}
	r.mu.RUnlock()
	if len(members) == 0 {
		return
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("encode record for broadcast", logpkg.Err(err), logpkg.Int64("owner", ownerID))
		return
	}

	for _, sub := range members {
		if !sub.filter.Match(rec) {
			continue
		}
		if !r.deliver(sub, payload) {
			r.logger.Warn("subscriber broken, disconnecting",
				logpkg.Int64("owner", ownerID), logpkg.Int64("record", rec.ID))
			r.Unsubscribe(ownerID, sub)
		}
	}
}

func (r *Registry) deliver(sub *Subscriber, payload []byte) bool {
	timer := time.NewTimer(r.sendTimeout)
	defer timer.Stop()
	select {
	case sub.ch <- payload:
		return true
	case <-sub.done:
		return false
	case <-timer.C:
		return false
	}
}
