package router

import (
	"time"

	"github.com/k9fne/fned/pkg/protocol"
)

// handleTerminator implements step 8: compute call duration, emit
// CALL_EVENT,END, and run the rule-trigger scan for the source TGID
// (spec.md §4.5 step 8). Reciprocal rules in destination systems are
// updated identically by the shared rule engine, since triggers are
// evaluated against the one global rule set rather than per-system.
func (r *Router) handleTerminator(sys *System, sourceSystem string, frame *protocol.DMRDFrame, cs *CallState, now time.Time) RouteResult {
	var result RouteResult
	slot := frame.Slot()

	duration := now.Sub(cs.StartTime).Seconds()
	result.emit(Event{
		Type: EventGroupVoice, Subtype: SubtypeEnd, Proto: "DMR",
		System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
		RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
		Duration: duration, HasDur: true,
	})

	set := r.Rules.Current()
	for _, rule := range set.MatchingRules(sourceSystem, slot, frame.Dst) {
		r.fanOutDMR(&result, rule, sourceSystem, frame, cs, now)
	}

	r.Rules.ApplyTrigger(frame.Dst, now)

	sys.slots.clear(slot)
	return result
}
