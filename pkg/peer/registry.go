package peer

import (
	"net"
	"sync"
	"time"
)

// Registry is the map of peer-id -> session record a single system
// owns (spec.md §4.1 Peer Registry). It is read-write-lock guarded so
// the hot rx path takes only a read lock after lookup (spec.md §7).
type Registry struct {
	mu    sync.RWMutex
	peers map[uint32]*Peer
}

// NewRegistry creates an empty peer registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[uint32]*Peer)}
}

// Get looks up a peer by id. The returned *Peer is safe to use
// concurrently; it has its own lock for field mutation.
func (r *Registry) Get(id uint32) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// Insert adds or replaces a peer record.
func (r *Registry) Insert(p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.ID] = p
}

// Evict removes a peer from the registry.
func (r *Registry) Evict(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, id)
}

// Snapshot returns a stable copy of all current peers, safe to range
// over without holding the registry lock (Call Router and Rule Plane
// readers need a consistent snapshot per spec.md §5).
func (r *Registry) Snapshot() []*Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p)
	}
	return out
}

// Len reports the number of registered peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// FindByEndpoint looks up a peer by its pinned UDP endpoint, used
// when a frame's peer id is not yet known to the caller.
func (r *Registry) FindByEndpoint(addr *net.UDPAddr) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.peers {
		if p.MatchesEndpoint(addr) {
			return p, true
		}
	}
	return nil, false
}

// SweepExpired evicts every peer, in any state, whose silence exceeds
// pingInterval*maxMissed, returning the evicted peers for the caller
// to notify/log (spec.md §4.4 Heartbeat Engine, master mode).
func (r *Registry) SweepExpired(now time.Time, pingInterval time.Duration, maxMissed int) []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []*Peer
	for id, p := range r.peers {
		if p.Expired(now, pingInterval, maxMissed) {
			p.SetState(StateClosed)
			evicted = append(evicted, p)
			delete(r.peers, id)
		}
	}
	return evicted
}
