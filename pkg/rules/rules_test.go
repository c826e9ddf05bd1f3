package rules

import (
	"testing"
	"time"
)

func baseRule() *Rule {
	return &Rule{
		Name:         "NET1-TO-NET2",
		SourceSystem: "NET1",
		SourceSlot:   1,
		SourceTGID:   9,
		DestSystem:   "NET2",
		DestSlot:     2,
		DestTGID:     9,
		Active:       true,
		Routable:     true,
	}
}

func TestMatchingRules(t *testing.T) {
	e := NewEngine([]*Rule{baseRule()})
	matches := e.Current().MatchingRules("NET1", 1, 9)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if len(e.Current().MatchingRules("NET1", 1, 1)) != 0 {
		t.Fatalf("expected no match on different TGID")
	}
}

// TestP8ReloadPreservesRoutableByName checks spec.md's reload
// invariant: routable/to_type survive reload when the rule NAME
// matches, even though the incoming rule is otherwise a fresh parse.
func TestP8ReloadPreservesRoutableByName(t *testing.T) {
	e := NewEngine([]*Rule{baseRule()})
	now := time.Unix(0, 0)

	// Flip routable off directly (below), simulating runtime state
	// drift from the initial load.
	e.ApplyTrigger(baseRule().SourceTGID, now) // no-op since TimeoutNone, but exercises code path
	set := e.Current()
	rule, _ := set.ByName("NET1-TO-NET2")
	rule.Routable = false
	rule.TimeoutType = TimeoutOFF

	fresh := []*Rule{baseRule()} // freshly parsed: Routable defaults true again
	reloaded := e.Reload(fresh, now)

	got, ok := reloaded.ByName("NET1-TO-NET2")
	if !ok {
		t.Fatalf("rule not found after reload")
	}
	if got.Routable {
		t.Fatalf("expected routable=false preserved across reload")
	}
	if got.TimeoutType != TimeoutOFF {
		t.Fatalf("expected to_type preserved across reload")
	}
}

func TestReloadComputesDeadline(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(1000, 0)
	r := baseRule()
	r.TimeoutType = TimeoutON
	r.TimeoutValue = 5 * time.Minute

	reloaded := e.Reload([]*Rule{r}, now)
	got, _ := reloaded.ByName("NET1-TO-NET2")
	want := now.Add(5 * time.Minute)
	if !got.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got.Deadline, want)
	}
}

func TestTickTimersFlipsOnON(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(1000, 0)
	r := baseRule()
	r.Routable = true
	r.TimeoutType = TimeoutON
	r.TimeoutValue = time.Minute
	e.Reload([]*Rule{r}, now)

	e.TickTimers(now.Add(30 * time.Second))
	got, _ := e.Current().ByName("NET1-TO-NET2")
	if !got.Routable {
		t.Fatalf("expected routable still true before deadline")
	}

	e.TickTimers(now.Add(90 * time.Second))
	got, _ = e.Current().ByName("NET1-TO-NET2")
	if got.Routable {
		t.Fatalf("expected ON rule to auto-deactivate after deadline")
	}
}

func TestTickTimersFlipsOffOFF(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(2000, 0)
	r := baseRule()
	r.Routable = false
	r.TimeoutType = TimeoutOFF
	r.TimeoutValue = time.Minute
	e.Reload([]*Rule{r}, now)

	e.TickTimers(now.Add(90 * time.Second))
	got, _ := e.Current().ByName("NET1-TO-NET2")
	if !got.Routable {
		t.Fatalf("expected OFF rule to auto-reactivate after deadline")
	}
}

func TestApplyTriggerOnOffLists(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(3000, 0)
	r := baseRule()
	r.Routable = false
	r.TriggerOnTGIDs = []uint32{100}
	r.TriggerOffTGIDs = []uint32{200}
	e.Reload([]*Rule{r}, now)

	e.ApplyTrigger(100, now)
	got, _ := e.Current().ByName("NET1-TO-NET2")
	if !got.Routable {
		t.Fatalf("expected trigger-on TGID to set routable=true")
	}

	e.ApplyTrigger(200, now)
	got, _ = e.Current().ByName("NET1-TO-NET2")
	if got.Routable {
		t.Fatalf("expected trigger-off TGID to set routable=false")
	}
}

func TestDerivedSets(t *testing.T) {
	on := baseRule()
	on.DestTGID = 9
	on.Routable = true
	off := baseRule()
	off.Name = "OFF-RULE"
	off.DestTGID = 10
	off.Routable = false
	off.Affiliated = true
	off.IgnoredPeers = []uint32{55}

	set := NewSet([]*Rule{on, off})
	if !set.ActiveTGID(9) {
		t.Fatalf("expected TGID 9 active")
	}
	if !set.DeactiveTGID(10) {
		t.Fatalf("expected TGID 10 deactive")
	}
	if !set.AffiliationRequired(10) {
		t.Fatalf("expected TGID 10 to require affiliation")
	}
	peers := set.IgnoredPeersForTGID(10)
	if len(peers) != 1 || peers[0] != 55 {
		t.Fatalf("got %v, want [55]", peers)
	}
}
