package router

import (
	"time"

	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
	"github.com/k9fne/fned/pkg/rules"
)

// RouteP25Voice runs the same rule-scan/contention/fan-out shape as
// RouteDMR (spec.md §4.5) for P25 voice traffic (LDU1/LDU2/TDU/TDULC).
// P25 only ever uses slot 1 and carries its own embedded LC inside the
// frame payload, so unlike RouteDMR this never rewrites the LC field
// on a TGID remap — a destination rule with a different DestTGID still
// forwards the frame, just addressed to the new TGID.
func (r *Router) RouteP25Voice(sourceSystem string, frame *protocol.P25DFrame, now time.Time) RouteResult {
	var result RouteResult

	sys, ok := r.Systems[sourceSystem]
	if !ok {
		return result
	}

	p, ok := sys.Registry.Get(frame.PeerID)
	if !ok || p.CurrentState() != peer.StateConnected {
		return result
	}

	const slot = 1
	isTerminator := frame.IsTerminator()

	if protocol.IsGroupCall(frame.Ctrl) && !isTerminator {
		if !sys.ACL.GroupCallPermitted(frame.Src, frame.Dst) {
			subtype := SubtypeIllegalTGID
			if sys.ACL.Blacklisted(frame.Src) {
				subtype = SubtypeBlacklistedRID
			}
			result.emit(Event{
				Type: EventRejectACL, Subtype: subtype, Proto: "P25",
				System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
				RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
			})
			return result
		}
	}

	cs := sys.slots.get(slot)

	if isTerminator && cs != nil && cs.StreamID == frame.StreamID {
		return r.handleP25Terminator(sys, sourceSystem, frame, cs, now)
	}

	if cs == nil || cs.StreamID != frame.StreamID {
		if cs != nil && !cs.Expired(now) && cs.SrcRID != frame.Src {
			result.emit(Event{
				Type: EventGroupVoice, Subtype: SubtypeCallCollision, Proto: "P25",
				System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
				RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
			})
			return result
		}
		cs = &CallState{
			StreamID:  frame.StreamID,
			SrcRID:    frame.Src,
			DstTGID:   frame.Dst,
			PeerID:    frame.PeerID,
			StartTime: now,
		}
		sys.slots.set(slot, cs)
		result.emit(Event{
			Type: EventGroupVoice, Subtype: SubtypeStart, Proto: "P25",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
		})
	}
	cs.LastFrameTime = now

	set := r.Rules.Current()
	for _, rule := range set.MatchingRules(sourceSystem, slot, frame.Dst) {
		r.fanOutP25(&result, rule, sourceSystem, frame, now)
	}

	return result
}

// fanOutP25 mirrors fanOutDMR's contention and ignored-peer handling
// without the DMR-specific LC regeneration step.
func (r *Router) fanOutP25(result *RouteResult, rule *rules.Rule, sourceSystem string, frame *protocol.P25DFrame, now time.Time) {
	target, ok := r.Systems[rule.DestSystem]
	if !ok {
		return
	}

	if rule.Affiliated {
		hasAny := false
		for _, p := range target.Registry.Snapshot() {
			if target.Affiliation.HasAffiliation(p.ID, rule.DestTGID) {
				hasAny = true
				break
			}
		}
		if !hasAny {
			return
		}
	}

	const destSlot = 1
	targetCS := target.slots.get(destSlot)
	isTerminator := frame.IsTerminator()

	if !isTerminator && targetCS != nil && !targetCS.Expired(now) &&
		targetCS.DstTGID == rule.DestTGID && targetCS.SrcRID != frame.Src &&
		now.Sub(targetCS.LastFrameTime).Seconds() < target.GroupHangtime {
		result.emit(Event{
			Type: EventCallRoute, Subtype: SubtypeFailed, Proto: "P25",
			System: rule.DestSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: destSlot, DstID: rule.DestTGID,
		})
		return
	}

	outFrame := &protocol.P25DFrame{
		LCF:      frame.LCF,
		Src:      frame.Src,
		Dst:      rule.DestTGID,
		Ctrl:     frame.Ctrl,
		StreamID: frame.StreamID,
		P25Frame: frame.P25Frame,
	}

	peers := target.Registry.Snapshot()
	ignored := r.Rules.Current().IgnoredPeersForTGID(rule.DestTGID)
	for _, tp := range peers {
		if tp.CurrentState() != peer.StateConnected {
			continue
		}
		if peerIgnored(ignored, tp.ID) {
			result.emit(Event{
				Type: EventCallRoute, Subtype: SubtypeIgnoredPeer, Proto: "P25",
				System: rule.DestSystem, StreamID: frame.StreamID, PeerID: tp.ID,
				RFSrc: frame.Src, Slot: destSlot, DstID: rule.DestTGID,
			})
			continue
		}
		perPeer := *outFrame
		perPeer.PeerID = tp.ID
		result.Outbound = append(result.Outbound, OutboundFrame{
			System: rule.DestSystem,
			PeerID: tp.ID,
			Data:   perPeer.Encode(),
		})
	}

	if isTerminator {
		target.slots.clear(destSlot)
	} else {
		target.slots.set(destSlot, &CallState{
			StreamID:      frame.StreamID,
			SrcRID:        frame.Src,
			DstTGID:       rule.DestTGID,
			PeerID:        frame.PeerID,
			StartTime:     now,
			LastFrameTime: now,
		})
	}

	result.emit(Event{
		Type: EventCallRoute, Subtype: SubtypeTo, Proto: "P25",
		System: rule.DestSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
		RFSrc: frame.Src, Slot: destSlot, DstID: rule.DestTGID,
	})
}

// handleP25Terminator mirrors handleTerminator for P25 voice streams.
func (r *Router) handleP25Terminator(sys *System, sourceSystem string, frame *protocol.P25DFrame, cs *CallState, now time.Time) RouteResult {
	var result RouteResult
	const slot = 1

	duration := now.Sub(cs.StartTime).Seconds()
	result.emit(Event{
		Type: EventGroupVoice, Subtype: SubtypeEnd, Proto: "P25",
		System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
		RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
		Duration: duration, HasDur: true,
	})

	set := r.Rules.Current()
	for _, rule := range set.MatchingRules(sourceSystem, slot, frame.Dst) {
		r.fanOutP25(&result, rule, sourceSystem, frame, now)
	}

	r.Rules.ApplyTrigger(frame.Dst, now)

	sys.slots.clear(slot)
	return result
}
