package acl

import "testing"

func loaded() *Tables {
	t := NewTables()
	t.Load(
		[]uint32{1001, 1002},
		[]uint32{9999},
		[]uint32{9, 10},
		map[uint32][]uint32{
			9:  {200},
			10: {0},
		},
	)
	return t
}

func TestBlacklistRejects(t *testing.T) {
	tb := loaded()
	if !tb.Blacklisted(9999) {
		t.Fatalf("expected 9999 blacklisted")
	}
	if tb.Blacklisted(1001) {
		t.Fatalf("expected 1001 not blacklisted")
	}
}

func TestActiveTGID(t *testing.T) {
	tb := loaded()
	if !tb.ActiveTGID(9) {
		t.Fatalf("expected TGID 9 active")
	}
	if tb.ActiveTGID(99) {
		t.Fatalf("expected TGID 99 not active")
	}
}

func TestGroupCallPermitted(t *testing.T) {
	tb := loaded()
	if !tb.GroupCallPermitted(3001, 9) {
		t.Fatalf("expected permitted")
	}
	if tb.GroupCallPermitted(9999, 9) {
		t.Fatalf("expected blacklisted source rejected")
	}
	if tb.GroupCallPermitted(3001, 99) {
		t.Fatalf("expected inactive TGID rejected")
	}
}

func TestUnitToUnitWhitelist(t *testing.T) {
	tb := loaded()
	if !tb.UnitToUnitPermitted(1001, 1002) {
		t.Fatalf("expected both-whitelisted pair permitted")
	}
	if tb.UnitToUnitPermitted(1001, 5555) {
		t.Fatalf("expected non-whitelisted destination rejected")
	}
}

func TestEmptyWhitelistPermitsAll(t *testing.T) {
	tb := NewTables()
	if !tb.Whitelisted(123) {
		t.Fatalf("expected empty whitelist to permit all")
	}
}

func TestPeerIgnoredForTGID(t *testing.T) {
	tb := loaded()
	if !tb.PeerIgnoredForTGID(9, 200) {
		t.Fatalf("expected peer 200 ignored on TGID 9")
	}
	if tb.PeerIgnoredForTGID(9, 201) {
		t.Fatalf("expected peer 201 not ignored on TGID 9")
	}
	if !tb.PeerIgnoredForTGID(10, 555) {
		t.Fatalf("expected all-peers sentinel [0] to ignore every peer on TGID 10")
	}
}
