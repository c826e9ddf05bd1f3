// Package acl implements the ACL Engine: whitelist/blacklist RID
// sets, the active-TGID set, and per-TGID peer-ignore lists the Call
// Router consults before fanning a frame out (spec.md §4.1, §4.5).
package acl

import "sync"

// Tables holds the RID and TGID allow/deny data a system's ACL Engine
// consults. It is safe for concurrent use: rebuilt atomically on rule
// reload (see pkg/rules), read on every routed frame.
type Tables struct {
	mu sync.RWMutex

	whiteRID map[uint32]struct{}
	blackRID map[uint32]struct{}
	activeTG map[uint32]struct{}

	// ignoredPeers maps TGID -> set of peer ids to skip during
	// fan-out even though the TGID is active. A TGID entry containing
	// peer id 0 means "ignore all peers on this TGID" (spec.md §4.1:
	// "[0] means ignore all when no affiliation match").
	ignoredPeers map[uint32]map[uint32]struct{}
}

// NewTables builds an empty ACL table set: no RID is blacklisted, no
// TGID is active, and the empty whitelist permits every RID, until
// Load is called.
func NewTables() *Tables {
	return &Tables{
		whiteRID:     make(map[uint32]struct{}),
		blackRID:     make(map[uint32]struct{}),
		activeTG:     make(map[uint32]struct{}),
		ignoredPeers: make(map[uint32]map[uint32]struct{}),
	}
}

// Load atomically replaces all four tables.
func (t *Tables) Load(whiteRID, blackRID, activeTG []uint32, ignoredPeers map[uint32][]uint32) {
	white := toSet(whiteRID)
	black := toSet(blackRID)
	active := toSet(activeTG)
	ignored := make(map[uint32]map[uint32]struct{}, len(ignoredPeers))
	for tg, peers := range ignoredPeers {
		ignored[tg] = toSet(peers)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.whiteRID = white
	t.blackRID = black
	t.activeTG = active
	t.ignoredPeers = ignored
}

func toSet(ids []uint32) map[uint32]struct{} {
	m := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Blacklisted reports whether a source RID is explicitly denied.
func (t *Tables) Blacklisted(rid uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.blackRID[rid]
	return ok
}

// Whitelisted reports whether an RID is explicitly permitted. An
// empty whitelist is treated as "permit all" — the spec's example
// config ships no whitelist entries for ordinary group traffic, only
// for P25 unit-to-unit gating.
func (t *Tables) Whitelisted(rid uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.whiteRID) == 0 {
		return true
	}
	_, ok := t.whiteRID[rid]
	return ok
}

// ActiveTGID reports whether a TGID is in the active set.
func (t *Tables) ActiveTGID(tgid uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.activeTG[tgid]
	return ok
}

// PeerIgnoredForTGID reports whether a given peer should be skipped
// during fan-out for a TGID, either because it is individually listed
// or because the TGID's ignore list contains the all-peers sentinel
// (peer id 0).
func (t *Tables) PeerIgnoredForTGID(tgid, peerID uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	peers, ok := t.ignoredPeers[tgid]
	if !ok {
		return false
	}
	if _, all := peers[0]; all {
		return true
	}
	_, ok = peers[peerID]
	return ok
}

// WhiteRIDs and BlackRIDs return snapshots for table-push framing
// (spec.md §4.6 MST* table-push opcodes).
func (t *Tables) WhiteRIDs() []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fromSet(t.whiteRID)
}

func (t *Tables) BlackRIDs() []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fromSet(t.blackRID)
}

func (t *Tables) ActiveTGIDs() []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fromSet(t.activeTG)
}

func fromSet(m map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
