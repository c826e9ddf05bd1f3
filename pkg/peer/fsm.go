package peer

import (
	"net"
	"time"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/protocol"
)

// FSM drives the master-mode Peer Session FSM (spec.md §4.3) against a
// Registry, given a passphrase lookup for whatever trust model the
// owning system uses (a single shared passphrase, or per-peer).
type FSM struct {
	Registry   *Registry
	Passphrase func(peerID uint32) string
	Log        *logger.Logger
}

// Outcome is what the FSM wants the caller to send back to the peer,
// if anything.
type Outcome struct {
	Reply  protocol.Frame
	Evict  bool
	Reason string
}

// HandleRPTL processes a login frame from a new or re-logging-in
// peer, always starting a fresh challenge.
func (f *FSM) HandleRPTL(frame *protocol.RPTLFrame, from *net.UDPAddr, now time.Time) Outcome {
	p := NewPeer(frame.PeerID, from, now)
	p.Salt = GenerateSalt()
	p.SetState(StateChallengeSent)
	f.Registry.Insert(p)
	return Outcome{Reply: protocol.NewRPTAckSalt(p.Salt)}
}

// HandleRPTK processes a challenge-response frame.
func (f *FSM) HandleRPTK(frame *protocol.RPTKFrame, from *net.UDPAddr, now time.Time) Outcome {
	p, ok := f.Registry.Get(frame.PeerID)
	if !ok {
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: frame.PeerID}}
	}
	if !p.MatchesEndpoint(from) {
		f.logWarn("rptk endpoint mismatch", frame.PeerID)
		return Outcome{Evict: false, Reason: "endpoint mismatch"}
	}
	if p.CurrentState() != StateChallengeSent {
		f.Registry.Evict(frame.PeerID)
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: frame.PeerID}, Evict: true, Reason: "unexpected state"}
	}

	passphrase := ""
	if f.Passphrase != nil {
		passphrase = f.Passphrase(frame.PeerID)
	}
	if !VerifyDigest(p.Salt, passphrase, frame.Digest) {
		f.Registry.Evict(frame.PeerID)
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: frame.PeerID}, Evict: true, Reason: "digest mismatch"}
	}

	p.SetState(StateWaitingConfig)
	p.TouchPing(now)
	return Outcome{Reply: protocol.NewRPTAckPeerID(frame.PeerID)}
}

// HandleRPTC processes the config snapshot frame, completing the
// handshake. cfg has already been JSON-decoded by the caller (the
// wire frame only carries the raw bytes).
func (f *FSM) HandleRPTC(peerID uint32, cfg Config, from *net.UDPAddr, now time.Time) Outcome {
	p, ok := f.Registry.Get(peerID)
	if !ok {
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: peerID}}
	}
	if !p.MatchesEndpoint(from) {
		f.logWarn("rptc endpoint mismatch", peerID)
		return Outcome{Evict: false, Reason: "endpoint mismatch"}
	}
	if p.CurrentState() != StateWaitingConfig {
		f.Registry.Evict(peerID)
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: peerID}, Evict: true, Reason: "unexpected state"}
	}

	p.mu.Lock()
	p.Config = cfg
	p.mu.Unlock()
	p.SetState(StateConnected)
	p.TouchPing(now)
	return Outcome{Reply: protocol.NewRPTAckPeerID(peerID)}
}

// HandlePing refreshes a connected peer's last-ping time, replying
// MSTPONG.
func (f *FSM) HandlePing(peerID uint32, from *net.UDPAddr, now time.Time) Outcome {
	p, ok := f.Registry.Get(peerID)
	if !ok || !p.MatchesEndpoint(from) || p.CurrentState() != StateConnected {
		return Outcome{Reply: &protocol.MSTNakFrame{PeerID: peerID}}
	}
	p.TouchPing(now)
	return Outcome{Reply: &protocol.MSTPongFrame{PeerID: peerID}}
}

// HandleClose evicts a peer that sent RPTCL.
func (f *FSM) HandleClose(peerID uint32, from *net.UDPAddr) Outcome {
	p, ok := f.Registry.Get(peerID)
	if !ok || !p.MatchesEndpoint(from) {
		return Outcome{}
	}
	p.SetState(StateClosed)
	f.Registry.Evict(peerID)
	return Outcome{Evict: true, Reason: "RPTCL"}
}

func (f *FSM) logWarn(msg string, peerID uint32) {
	if f.Log == nil {
		return
	}
	f.Log.Warn(msg, logger.PeerID(peerID))
}
