package affiliation

import "testing"

// TestS4AffiliationLifecycle checks spec.md's S4 scenario: affiliate,
// confirm gate passes, deregister, confirm the TGID entry is deleted
// once its RID set becomes empty.
func TestS4AffiliationLifecycle(t *testing.T) {
	m := New()
	m.Affiliate(100, 9, 3001)

	if !m.HasAffiliation(100, 9) {
		t.Fatalf("expected affiliation present after Affiliate")
	}

	m.Deregister(100, 3001)
	if m.HasAffiliation(100, 9) {
		t.Fatalf("expected affiliation gone after sole RID deregisters")
	}

	snap := m.Snapshot()
	if _, ok := snap[100]; ok {
		t.Fatalf("expected peer entry pruned once empty, got %+v", snap)
	}
}

func TestMultipleRIDsOnSameTGID(t *testing.T) {
	m := New()
	m.Affiliate(100, 9, 1)
	m.Affiliate(100, 9, 2)

	m.Deregister(100, 1)
	if !m.HasAffiliation(100, 9) {
		t.Fatalf("expected affiliation to survive while RID 2 remains")
	}
	rids := m.RIDsFor(100, 9)
	if len(rids) != 1 || rids[0] != 2 {
		t.Fatalf("got %v, want [2]", rids)
	}
}

func TestDeregisterUnknownPeerIsNoop(t *testing.T) {
	m := New()
	m.Deregister(999, 1) // must not panic
	if m.HasAffiliation(999, 1) {
		t.Fatalf("unexpected affiliation")
	}
}
