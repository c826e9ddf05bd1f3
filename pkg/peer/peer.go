// Package peer implements the Peer Session FSM and Peer Registry:
// per-peer login/challenge/config/connected state, endpoint pinning,
// and the registry that the Call Router and Heartbeat Engine share
// (spec.md §4.3).
package peer

import (
	"net"
	"sync"
	"time"
)

// State is a peer's position in the login/challenge/config/connected
// state machine (spec.md §4.3).
type State int

const (
	StateLoginReceived State = iota
	StateChallengeSent
	StateWaitingConfig
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoginReceived:
		return "LOGIN_RECEIVED"
	case StateChallengeSent:
		return "CHALLENGE_SENT"
	case StateWaitingConfig:
		return "WAITING_CONFIG"
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Config is the identity/RF/software snapshot a peer sends in RPTC,
// exchanged in the WAITING_CONFIG -> CONNECTED transition.
type Config struct {
	Identity     string
	RXFrequency  string
	TXFrequency  string
	Location     string
	Channel      string
	SoftwareID   string
	RCONPort     int
	RCONPassword string
}

// Peer is one session owned by exactly one master system's Registry.
type Peer struct {
	mu sync.RWMutex

	ID       uint32
	Endpoint *net.UDPAddr
	State    State
	Salt     uint32
	Config   Config

	LastPing time.Time
	Created  time.Time

	// Outstanding and acked ping counters, used by the Heartbeat
	// Engine in peer mode.
	OutstandingPings int
	AckedPings       int
}

// NewPeer creates a peer fresh off an RPTL, in LOGIN_RECEIVED.
func NewPeer(id uint32, endpoint *net.UDPAddr, now time.Time) *Peer {
	return &Peer{
		ID:       id,
		Endpoint: endpoint,
		State:    StateLoginReceived,
		Created:  now,
		LastPing: now,
	}
}

// MatchesEndpoint reports whether addr is the endpoint this peer
// registered from (spec.md §4.3 P3: endpoint pinning).
func (p *Peer) MatchesEndpoint(addr *net.UDPAddr) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return endpointEqual(p.Endpoint, addr)
}

func endpointEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// CurrentState returns the peer's state under lock.
func (p *Peer) CurrentState() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.State
}

// SetState transitions the peer to a new state.
func (p *Peer) SetState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.State = s
}

// TouchPing refreshes the last-ping timestamp (RPTPING received, or
// about to emit one in peer mode).
func (p *Peer) TouchPing(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastPing = now
}

// Expired reports whether the peer has been silent longer than
// pingInterval*maxMissed (spec.md §4.4).
func (p *Peer) Expired(now time.Time, pingInterval time.Duration, maxMissed int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return now.Sub(p.LastPing) > pingInterval*time.Duration(maxMissed)
}
