package fne

import "github.com/k9fne/fned/pkg/rules"

// activeTGIDsForSystem collects the source TGIDs a system is
// permitted to accept group calls on: every active rule whose source
// side names this system (spec.md §4.5 step 2's "active set").
func activeTGIDsForSystem(set *rules.Set, sysName string) []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, r := range set.Rules() {
		if !r.Active || r.SourceSystem != sysName {
			continue
		}
		if _, ok := seen[r.SourceTGID]; ok {
			continue
		}
		seen[r.SourceTGID] = struct{}{}
		out = append(out, r.SourceTGID)
	}
	return out
}

// ignoredPeersForSystem collects the per-TGID ignored-peer lists that
// apply when this system is a fan-out destination.
func ignoredPeersForSystem(set *rules.Set, sysName string) map[uint32][]uint32 {
	out := make(map[uint32][]uint32)
	for _, r := range set.Rules() {
		if r.DestSystem != sysName || len(r.IgnoredPeers) == 0 {
			continue
		}
		out[r.DestTGID] = append(out[r.DestTGID], r.IgnoredPeers...)
	}
	return out
}
