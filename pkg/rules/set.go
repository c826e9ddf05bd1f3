package rules

// Set is a snapshot of the full rule list plus its derived lookup
// tables (spec.md §4.6: active-TGID, deactive-TGID,
// per-TGID-ignored-peers, affiliation-allowed-TGID sets rebuilt from
// rule metadata on every reload). The list and tables are not replaced
// once published, but Engine.ApplyTrigger and Engine.TickTimers change
// each rule's Routable and Deadline in place; the derived tables keep
// the values the rules had when NewSet ran.
type Set struct {
	rules []*Rule

	activeTGIDs        map[uint32]struct{}
	deactiveTGIDs      map[uint32]struct{}
	ignoredPeersByTGID map[uint32][]uint32
	affiliationAllowed map[uint32]struct{}
}

// NewSet builds a Set (and its derived tables) from a rule list.
func NewSet(list []*Rule) *Set {
	s := &Set{
		rules:              list,
		activeTGIDs:        make(map[uint32]struct{}),
		deactiveTGIDs:      make(map[uint32]struct{}),
		ignoredPeersByTGID: make(map[uint32][]uint32),
		affiliationAllowed: make(map[uint32]struct{}),
	}
	for _, r := range list {
		if !r.Active {
			continue
		}
		if r.Routable {
			s.activeTGIDs[r.DestTGID] = struct{}{}
		} else {
			s.deactiveTGIDs[r.DestTGID] = struct{}{}
		}
		if len(r.IgnoredPeers) > 0 {
			s.ignoredPeersByTGID[r.DestTGID] = append(s.ignoredPeersByTGID[r.DestTGID], r.IgnoredPeers...)
		}
		if r.Affiliated {
			s.affiliationAllowed[r.DestTGID] = struct{}{}
		}
	}
	return s
}

// Rules returns the underlying rule list. Callers must not mutate
// rules in place; only the Engine's trigger and timer passes change a
// published rule (its Routable and Deadline).
func (s *Set) Rules() []*Rule {
	return s.rules
}

// MatchingRules returns every active+routable rule whose source side
// matches (spec.md §4.5 step 6, "rule scan").
func (s *Set) MatchingRules(sourceSystem string, slot int, tgid uint32) []*Rule {
	var out []*Rule
	for _, r := range s.rules {
		if r.Matches(sourceSystem, slot, tgid) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Set) ActiveTGID(tgid uint32) bool {
	_, ok := s.activeTGIDs[tgid]
	return ok
}

func (s *Set) DeactiveTGID(tgid uint32) bool {
	_, ok := s.deactiveTGIDs[tgid]
	return ok
}

func (s *Set) AffiliationRequired(tgid uint32) bool {
	_, ok := s.affiliationAllowed[tgid]
	return ok
}

func (s *Set) IgnoredPeersForTGID(tgid uint32) []uint32 {
	return s.ignoredPeersByTGID[tgid]
}

// ByName finds a rule by its NAME field, used to preserve routable/
// timeout state across a reload (spec.md §4.6).
func (s *Set) ByName(name string) (*Rule, bool) {
	for _, r := range s.rules {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
