// Package rules implements the Rule & Table Plane: routing rules
// mapping (source-system, source-slot, source-TGID) to
// (destination-system, destination-slot, destination-TGID), talkgroup
// activation timers, and the atomically-swapped rule Set a reload
// publishes (spec.md §3, §4.6).
package rules

import "time"

// TimeoutType controls how a rule's routable flag reacts to its
// deadline passing (spec.md §3, §4.6).
type TimeoutType int

const (
	TimeoutNone TimeoutType = iota
	TimeoutON
	TimeoutOFF
)

// Rule is one routing-rule record (spec.md §3 Routing Rule).
type Rule struct {
	Name string

	SourceSystem string
	SourceSlot   int
	SourceTGID   uint32

	DestSystem string
	DestSlot   int
	DestTGID   uint32

	Active     bool
	Routable   bool
	Affiliated bool

	// IgnoredPeers lists peer ids to skip on fan-out; an entry of 0
	// makes fan-out skip every peer for the rule's destination TGID,
	// whether or not any peer is affiliated to it.
	IgnoredPeers []uint32

	TriggerOnTGIDs  []uint32
	TriggerOffTGIDs []uint32

	TimeoutType  TimeoutType
	TimeoutValue time.Duration
	Deadline     time.Time
}

// Matches reports whether this rule's source side matches an inbound
// frame's source system, slot, and TGID (spec.md §4.5 step 6).
func (r *Rule) Matches(sourceSystem string, slot int, tgid uint32) bool {
	return r.Active && r.Routable &&
		r.SourceSystem == sourceSystem && r.SourceSlot == slot && r.SourceTGID == tgid
}

// TriggersOn reports whether tgid is in this rule's trigger-on list.
func (r *Rule) TriggersOn(tgid uint32) bool {
	return containsTGID(r.TriggerOnTGIDs, tgid)
}

// TriggersOff reports whether tgid is in this rule's trigger-off list.
func (r *Rule) TriggersOff(tgid uint32) bool {
	return containsTGID(r.TriggerOffTGIDs, tgid)
}

func containsTGID(list []uint32, tgid uint32) bool {
	for _, v := range list {
		if v == tgid {
			return true
		}
	}
	return false
}

// Clone returns a deep-enough copy for mutation without aliasing
// slices with the original.
func (r *Rule) Clone() *Rule {
	cp := *r
	cp.IgnoredPeers = append([]uint32(nil), r.IgnoredPeers...)
	cp.TriggerOnTGIDs = append([]uint32(nil), r.TriggerOnTGIDs...)
	cp.TriggerOffTGIDs = append([]uint32(nil), r.TriggerOffTGIDs...)
	return &cp
}
