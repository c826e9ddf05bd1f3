package router

import (
	"time"

	"github.com/k9fne/fned/pkg/fec"
	"github.com/k9fne/fned/pkg/lc"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
	"github.com/k9fne/fned/pkg/rules"
)

// RouteDMR runs the 8-step Call Router algorithm (spec.md §4.5) for
// one inbound DMR burst on the named source system.
func (r *Router) RouteDMR(sourceSystem string, frame *protocol.DMRDFrame, now time.Time) RouteResult {
	var result RouteResult

	sys, ok := r.Systems[sourceSystem]
	if !ok {
		return result
	}

	// 1. Peer auth check.
	p, ok := sys.Registry.Get(frame.PeerID)
	if !ok || p.CurrentState() != peer.StateConnected {
		return result
	}

	slot := frame.Slot()
	isTerminator := frame.IsTerminator()

	// 2. ACL gate (skipped for terminators of a stream already in
	// flight — an ACL-blocked source should never have opened one).
	if frame.IsGroupCall() && !isTerminator {
		if !sys.ACL.GroupCallPermitted(frame.Src, frame.Dst) {
			subtype := SubtypeIllegalTGID
			if sys.ACL.Blacklisted(frame.Src) {
				subtype = SubtypeBlacklistedRID
			}
			result.emit(Event{
				Type: EventRejectACL, Subtype: subtype, Proto: "DMR",
				System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
				RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
			})
			return result
		}
	}

	cs := sys.slots.get(slot)

	// 3. Terminator-always-passes (for a recognized stream).
	if isTerminator && cs != nil && cs.StreamID == frame.StreamID {
		return r.handleTerminator(sys, sourceSystem, frame, cs, now)
	}

	// 4. New-stream detection / collision.
	if cs == nil || cs.StreamID != frame.StreamID {
		if cs != nil && !cs.Expired(now) && cs.SrcRID != frame.Src {
			result.emit(Event{
				Type: EventGroupVoice, Subtype: SubtypeCallCollision, Proto: "DMR",
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
			Type: EventGroupVoice, Subtype: SubtypeStart, Proto: "DMR",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: slot, DstID: frame.Dst,
		})
	}
	cs.LastFrameTime = now
	cs.LastFrameType = frame.Ctrl

	// 5. LC capture (on first header frame) or late-entry synthesis.
	if frame.IsLCHeader() {
		if payload, ok := lc.DecodeFullLC(extractFullLCField(frame)); ok {
			cpy := payload
			cs.LC = cpy[:]
		}
	}
	if cs.LC == nil {
		synth := lc.Payload{FLCO: lc.FLCOGroupVoice, DstID: frame.Dst, SrcID: frame.Src}.Bytes()
		cs.LC = synth[:]
	}

	// 6-7. Rule scan, contention, fan-out, affiliation gate.
	set := r.Rules.Current()
	for _, rule := range set.MatchingRules(sourceSystem, slot, frame.Dst) {
		r.fanOutDMR(&result, rule, sourceSystem, frame, cs, now)
	}

	return result
}

func extractFullLCField(frame *protocol.DMRDFrame) []byte {
	// A DMR data/sync burst is exactly 264 bits (33 bytes), matching
	// the info/slot-type/sync layout pkg/lc.DisassembleDataSyncBurst
	// knows how to take apart; the 196-bit info field is the
	// BPTC-coded full LC (spec.md §4.2).
	burst := fec.BytesToBits(frame.DMRFrame[:])
	info, _, _ := lc.DisassembleDataSyncBurst(burst)
	return info
}

// fanOutDMR implements rule scan steps 6-7: contention, fan-out
// rewrite, and the affiliation gate.
func (r *Router) fanOutDMR(result *RouteResult, rule *rules.Rule, sourceSystem string, frame *protocol.DMRDFrame, cs *CallState, now time.Time) {
	target, ok := r.Systems[rule.DestSystem]
	if !ok {
		return
	}

	// 7. Affiliation gate.
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

	destSlot := rule.DestSlot
	targetCS := target.slots.get(destSlot)
	isTerminator := frame.IsTerminator()

	// Contention: target already mid-stream on the destination TGID
	// from a different RID, within group hangtime. Terminators always
	// pass (spec.md §4.5 step 3) so an in-flight call can be closed
	// even if a new one is contending for the same slot.
	if !isTerminator && targetCS != nil && !targetCS.Expired(now) &&
		targetCS.DstTGID == rule.DestTGID && targetCS.SrcRID != frame.Src &&
		now.Sub(targetCS.LastFrameTime).Seconds() < target.GroupHangtime {
		result.emit(Event{
			Type: EventCallRoute, Subtype: SubtypeFailed, Proto: "DMR",
			System: rule.DestSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: destSlot, DstID: rule.DestTGID,
		})
		return
	}

	outCtrl := frame.Ctrl
	if rule.SourceSlot != rule.DestSlot {
		outCtrl = protocol.SetSlot(outCtrl, destSlot)
	}

	outFrame := &protocol.DMRDFrame{
		Seq:      frame.Seq,
		Src:      frame.Src,
		Dst:      rule.DestTGID,
		Ctrl:     outCtrl,
		StreamID: frame.StreamID,
		DMRFrame: frame.DMRFrame,
		RSSI:     frame.RSSI,
		BER:      frame.BER,
	}

	if rule.DestTGID != frame.Dst {
		regenerateLC(outFrame, cs, rule.DestTGID)
	}

	peers := target.Registry.Snapshot()
	ignored := r.Rules.Current().IgnoredPeersForTGID(rule.DestTGID)
	for _, tp := range peers {
		if tp.CurrentState() != peer.StateConnected {
			continue
		}
		if peerIgnored(ignored, tp.ID) {
			result.emit(Event{
				Type: EventCallRoute, Subtype: SubtypeIgnoredPeer, Proto: "DMR",
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
			LastFrameType: frame.Ctrl,
			LC:            cs.LC,
		})
	}

	result.emit(Event{
		Type: EventCallRoute, Subtype: SubtypeTo, Proto: "DMR",
		System: rule.DestSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
		RFSrc: frame.Src, Slot: destSlot, DstID: rule.DestTGID,
	})
}

func peerIgnored(ignored []uint32, peerID uint32) bool {
	for _, id := range ignored {
		if id == 0 || id == peerID {
			return true
		}
	}
	return false
}

// regenerateLC rebuilds the outbound header/PI-header/terminator LC
// for a destination TGID that differs from the source TGID (spec.md
// §4.5 step 6 fan-out). The frame's embedded BPTC field is rewritten
// in place; embedded-LC fragment regeneration for voice bursts B-E is
// the caller's responsibility once it has the full voice-burst
// context this per-frame call does not carry.
func regenerateLC(frame *protocol.DMRDFrame, cs *CallState, destTGID uint32) {
	if len(cs.LC) != 9 {
		return
	}
	var payload [9]byte
	copy(payload[:], cs.LC)
	p := lc.PayloadFromBytes(payload)
	p.DstID = destTGID
	info := lc.EncodeFullLC(p.Bytes())

	burst := fec.BytesToBits(frame.DMRFrame[:])
	_, slotType, sync := lc.DisassembleDataSyncBurst(burst)
	newBurst := lc.AssembleDataSyncBurst(info, slotType, sync)
	copy(frame.DMRFrame[:], fec.BitsToBytes(newBurst))
}
