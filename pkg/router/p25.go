package router

import (
	"time"

	"github.com/k9fne/fned/pkg/protocol"
)

// RouteP25TSBK implements the P25 TSBK preprocessing spec.md §4.5
// describes alongside the main Call Router algorithm: GRP_AFF_REQ
// updates affiliations, U_DEREG_ACK removes them, and the remaining
// named opcodes are logged as events without being fanned out through
// the voice-routing path.
func (r *Router) RouteP25TSBK(sourceSystem string, frame *protocol.P25DFrame, now time.Time) RouteResult {
	var result RouteResult
	sys, ok := r.Systems[sourceSystem]
	if !ok {
		return result
	}

	if duid, ok := frame.DUID(); ok && duid == protocol.P25DUIDPDU {
		result.emit(Event{
			Type: EventPDU, Subtype: "LOGGED", Proto: "P25",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: 1, DstID: frame.Dst,
		})
		return result
	}

	opcode, ok := frame.TSBKOpcode()
	if !ok {
		return result
	}

	switch opcode {
	case protocol.TSBKGroupAffiliationRequest:
		sys.Affiliation.Affiliate(frame.PeerID, frame.Dst, frame.Src)
		result.emit(Event{
			Type: EventTSBK, Subtype: "GRP_AFF", Proto: "P25",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: 1, DstID: frame.Dst,
		})
	case protocol.TSBKUnitDeregistrationAck:
		sys.Affiliation.Deregister(frame.PeerID, frame.Src)
		result.emit(Event{
			Type: EventTSBK, Subtype: "U_DEREG", Proto: "P25",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: 1, DstID: frame.Dst,
		})
	case protocol.TSBKAcknowledgeResponse, protocol.TSBKCallAlert, protocol.TSBKAdjacentStatusBroadcast:
		result.emit(Event{
			Type: EventTSBK, Subtype: "LOGGED", Proto: "P25",
			System: sourceSystem, StreamID: frame.StreamID, PeerID: frame.PeerID,
			RFSrc: frame.Src, Slot: 1, DstID: frame.Dst,
		})
	}

	return result
}
