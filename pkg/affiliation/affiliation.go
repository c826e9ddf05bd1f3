// Package affiliation tracks P25 group affiliation: which RIDs on
// which peer have registered onto which talkgroup, mutated by the
// Call Router's P25 TSBK preprocessing and read by the Call Router's
// affiliation gate on fan-out (spec.md §4.1, §4.5 step 7).
package affiliation

import "sync"

// Map is peer-id -> TGID -> set<RID>. Single writer (the P25
// preprocessor), many readers (affiliation-gated fan-out) per spec.md
// §5's shared-resource model.
type Map struct {
	mu   sync.RWMutex
	data map[uint32]map[uint32]map[uint32]struct{}
}

// New creates an empty affiliation map.
func New() *Map {
	return &Map{data: make(map[uint32]map[uint32]map[uint32]struct{})}
}

// Affiliate records that rid on peerID has registered onto tgid
// (GRP_AFF_REQ, spec.md §4.5).
func (m *Map) Affiliate(peerID, tgid, rid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	peerMap, ok := m.data[peerID]
	if !ok {
		peerMap = make(map[uint32]map[uint32]struct{})
		m.data[peerID] = peerMap
	}
	tgidSet, ok := peerMap[tgid]
	if !ok {
		tgidSet = make(map[uint32]struct{})
		peerMap[tgid] = tgidSet
	}
	tgidSet[rid] = struct{}{}
}

// Deregister removes rid's affiliation on peerID, from any TGID
// (U_DEREG_REQ, spec.md §4.5). Per the invariant in spec.md §4.1, a
// TGID entry is deleted once its RID set becomes empty.
func (m *Map) Deregister(peerID, rid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	peerMap, ok := m.data[peerID]
	if !ok {
		return
	}
	for tgid, set := range peerMap {
		delete(set, rid)
		if len(set) == 0 {
			delete(peerMap, tgid)
		}
	}
	if len(peerMap) == 0 {
		delete(m.data, peerID)
	}
}

// HasAffiliation reports whether peerID has at least one RID
// affiliated to tgid (the Call Router's affiliation gate, spec.md
// §4.5 step 7).
func (m *Map) HasAffiliation(peerID, tgid uint32) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	peerMap, ok := m.data[peerID]
	if !ok {
		return false
	}
	set, ok := peerMap[tgid]
	return ok && len(set) > 0
}

// RIDsFor returns a snapshot of the RIDs peerID has affiliated to
// tgid, for reporting-channel affiliation snapshots (spec.md §4.7
// opcode 0x08).
func (m *Map) RIDsFor(peerID, tgid uint32) []uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	peerMap, ok := m.data[peerID]
	if !ok {
		return nil
	}
	set, ok := peerMap[tgid]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for rid := range set {
		out = append(out, rid)
	}
	return out
}

// Snapshot returns a deep copy of the full affiliation map for
// reporting-channel serialization.
func (m *Map) Snapshot() map[uint32]map[uint32][]uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint32]map[uint32][]uint32, len(m.data))
	for peerID, tgids := range m.data {
		tgidOut := make(map[uint32][]uint32, len(tgids))
		for tgid, rids := range tgids {
			ridList := make([]uint32, 0, len(rids))
			for rid := range rids {
				ridList = append(ridList, rid)
			}
			tgidOut[tgid] = ridList
		}
		out[peerID] = tgidOut
	}
	return out
}
