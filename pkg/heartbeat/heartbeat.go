// Package heartbeat implements the Heartbeat Engine: a single
// periodic tick per system driving master-mode peer expiry sweeps and
// peer-mode keep-alive emission (spec.md §4.4).
package heartbeat

import (
	"net"
	"time"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
)

// Mode selects which half of spec.md §4.4 a Heartbeat drives.
type Mode int

const (
	ModeMaster Mode = iota
	ModePeer
)

// Transport is the minimal send capability a Heartbeat needs; pkg/fne
// supplies the real UDP connection.
type Transport interface {
	WriteTo(data []byte, addr *net.UDPAddr) error
}

// Heartbeat drives one system's periodic tick.
type Heartbeat struct {
	Mode         Mode
	System       string
	Registry     *peer.Registry
	PingInterval time.Duration
	MaxMissed    int
	Transport    Transport
	Log          *logger.Logger

	// Peer-mode only: the master's endpoint and this instance's own
	// peer id, plus outstanding/acked ping bookkeeping.
	MasterAddr *net.UDPAddr
	SelfPeerID uint32
	selfState  *peer.Peer
}

// Tick runs one heartbeat cycle (spec.md §4.4). Call this once per
// PingInterval from a ticker owned by pkg/fne.
func (h *Heartbeat) Tick(now time.Time) {
	switch h.Mode {
	case ModeMaster:
		h.tickMaster(now)
	case ModePeer:
		h.tickPeer(now)
	}
}

func (h *Heartbeat) tickMaster(now time.Time) {
	evicted := h.Registry.SweepExpired(now, h.PingInterval, h.MaxMissed)
	for _, p := range evicted {
		if h.Log != nil {
			h.Log.Warn("peer expired", logger.PeerID(p.ID), logger.System(h.System))
		}
	}
}

func (h *Heartbeat) tickPeer(now time.Time) {
	if h.selfState == nil || h.selfState.CurrentState() != peer.StateConnected {
		h.send(&protocol.RPTLFrame{PeerID: h.SelfPeerID})
		return
	}
	h.send(&protocol.RPTPingFrame{PeerID: h.SelfPeerID})
	h.selfState.OutstandingPings++
}

// OnPong decrements the outstanding-ping counter and bumps the acked
// counter when a master replies MSTPONG (spec.md §4.4, peer mode).
func (h *Heartbeat) OnPong() {
	if h.selfState == nil {
		return
	}
	if h.selfState.OutstandingPings > 0 {
		h.selfState.OutstandingPings--
	}
	h.selfState.AckedPings++
}

// SetSelfState lets the owning connection manager hand the Heartbeat
// its own session record; the peer client sets it before login starts,
// and the record's state decides whether a tick sends RPTL or RPTPING.
func (h *Heartbeat) SetSelfState(p *peer.Peer) {
	h.selfState = p
}

func (h *Heartbeat) send(frame protocol.Frame) {
	if h.Transport == nil || h.MasterAddr == nil {
		return
	}
	if err := h.Transport.WriteTo(frame.Encode(), h.MasterAddr); err != nil && h.Log != nil {
		h.Log.Warn("heartbeat send failed", logger.System(h.System), logger.String("error", err.Error()))
	}
}
