// Package router implements the Call Router: the traffic-plane
// engine that validates ACLs, detects new call streams, handles
// contention, rewrites frame headers and link-control fields, and
// fans frames out to matching destination peers (spec.md §4.5).
package router

import (
	"github.com/k9fne/fned/pkg/acl"
	"github.com/k9fne/fned/pkg/affiliation"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/rules"
)

// System bundles one named system's peer registry, ACL tables,
// affiliation map, and per-slot call state — everything the Call
// Router needs to route traffic into or out of it.
type System struct {
	Name          string
	GroupHangtime float64 // seconds

	Registry    *peer.Registry
	ACL         *acl.Tables
	Affiliation *affiliation.Map

	slots slotStates
}

// NewSystem creates a System with empty peer/ACL/affiliation state.
func NewSystem(name string, groupHangtime float64) *System {
	return &System{
		Name:          name,
		GroupHangtime: groupHangtime,
		Registry:      peer.NewRegistry(),
		ACL:           acl.NewTables(),
		Affiliation:   affiliation.New(),
	}
}

// Router holds every configured system plus the shared rule engine.
type Router struct {
	Systems map[string]*System
	Rules   *rules.Engine
}

// NewRouter creates a Router over the given systems and rule engine.
func NewRouter(systems map[string]*System, ruleEngine *rules.Engine) *Router {
	return &Router{Systems: systems, Rules: ruleEngine}
}

// OutboundFrame is one frame the caller must transmit: to a specific
// peer on a specific system, already rewritten for that destination.
type OutboundFrame struct {
	System string
	PeerID uint32
	Data   []byte
}

// RouteResult is everything a single inbound frame produced.
type RouteResult struct {
	Outbound []OutboundFrame
	Events   []Event
}

func (r *RouteResult) emit(e Event) {
	r.Events = append(r.Events, e)
}
