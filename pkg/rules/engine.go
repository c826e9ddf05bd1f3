package rules

import (
	"sync/atomic"
	"time"
)

// Engine owns the current rule Set behind an atomic pointer, so a
// reload publishes its new Set in one swap and each routed frame reads
// one consistent Set (spec.md §5). The router calls Current for every
// frame, so a reload takes effect from the next frame, including the
// frames of calls already in flight.
type Engine struct {
	current atomic.Pointer[Set]
}

// NewEngine creates an engine with an initial rule list.
func NewEngine(initial []*Rule) *Engine {
	e := &Engine{}
	e.current.Store(NewSet(initial))
	return e
}

// Current returns the presently-published Set. Safe to call
// concurrently with Reload.
func (e *Engine) Current() *Set {
	return e.current.Load()
}

// Reload normalizes a freshly-parsed rule list, preserves Routable and
// TimeoutType from same-NAME rules in the prior set, computes each
// rule's Deadline, and atomically publishes the new Set (spec.md
// §4.6).
func (e *Engine) Reload(fresh []*Rule, now time.Time) *Set {
	prev := e.current.Load()
	for _, r := range fresh {
		if r.SourceSlot != 1 && r.SourceSlot != 2 {
			r.SourceSlot = 1
		}
		if r.DestSlot != 1 && r.DestSlot != 2 {
			r.DestSlot = 1
		}
		if prev != nil {
			if old, ok := prev.ByName(r.Name); ok {
				r.Routable = old.Routable
				r.TimeoutType = old.TimeoutType
			}
		}
		if r.TimeoutType != TimeoutNone {
			r.Deadline = now.Add(r.TimeoutValue)
		}
	}
	next := NewSet(fresh)
	e.current.Store(next)
	return next
}

// TickTimers walks rules with TimeoutType ON/OFF and flips Routable
// when the deadline has passed, with complementary meaning: ON rules
// auto-deactivate after timeout, OFF rules auto-reactivate (spec.md
// §4.6, runs once per minute). It mutates Rule values in place — Rule
// fields outside Routable/Deadline are never touched here, so
// in-flight readers of other fields are unaffected.
func (e *Engine) TickTimers(now time.Time) {
	set := e.current.Load()
	for _, r := range set.rules {
		if r.TimeoutType == TimeoutNone {
			continue
		}
		if now.Before(r.Deadline) {
			continue
		}
		switch r.TimeoutType {
		case TimeoutON:
			r.Routable = false
		case TimeoutOFF:
			r.Routable = true
		}
	}
}

// ApplyTrigger implements the terminator-handling trigger scan
// (spec.md §4.5 step 8): a source-TGID hit resets the firing rule's
// timer; a TGID in a rule's ON list sets routable=true and primes the
// timer; a TGID in a rule's OFF list sets routable=false.
func (e *Engine) ApplyTrigger(tgid uint32, now time.Time) {
	set := e.current.Load()
	for _, r := range set.rules {
		if r.SourceTGID == tgid {
			if r.TimeoutType != TimeoutNone {
				r.Deadline = now.Add(r.TimeoutValue)
			}
			continue
		}
		if r.TriggersOn(tgid) {
			r.Routable = true
			if r.TimeoutType != TimeoutNone {
				r.Deadline = now.Add(r.TimeoutValue)
			}
		}
		if r.TriggersOff(tgid) {
			r.Routable = false
		}
	}
}
