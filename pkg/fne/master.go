package fne

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
	"github.com/k9fne/fned/pkg/reporting"
	"github.com/k9fne/fned/pkg/router"
)

// closeFrameFor builds the master's close notice for one peer.
func closeFrameFor(peerID uint32) []byte {
	return (&protocol.MSTClFrame{PeerID: peerID}).Encode()
}

// rptclFrame builds a peer's close notice to its master.
func rptclFrame(peerID uint32) []byte {
	return (&protocol.RPTCLFrame{PeerID: peerID}).Encode()
}

// runMaster reads inbound datagrams for one master-mode system and
// dispatches them to the Peer Session FSM or the Call Router
// (spec.md §4.3, §4.5).
func (c *Core) runMaster(ctx context.Context, sr *systemRuntime) {
	buf := make([]byte, 2048)
	sr.conn.SetReadBuffer(1 << 20)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sr.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, from, err := sr.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
				sr.log.Warn("udp read error", logger.Error(err))
				continue
			}
		}

		frame, err := protocol.Parse(buf[:n])
		if err != nil {
			sr.log.Debug("frame parse error", logger.Error(err), logger.String("remote", from.String()))
			continue
		}

		c.dispatchMaster(sr, frame, from, time.Now())
	}
}

func (c *Core) dispatchMaster(sr *systemRuntime, frame protocol.Frame, from *net.UDPAddr, now time.Time) {
	switch f := frame.(type) {
	case *protocol.RPTLFrame:
		c.sendOutcome(sr, from, sr.fsm.HandleRPTL(f, from, now))

	case *protocol.RPTKFrame:
		c.sendOutcome(sr, from, sr.fsm.HandleRPTK(f, from, now))

	case *protocol.RPTCFrame:
		var cfg peer.Config
		if err := json.Unmarshal(f.Config, &cfg); err != nil {
			sr.conn.WriteToUDP((&protocol.MSTNakFrame{PeerID: f.PeerID}).Encode(), from)
			return
		}
		outcome := sr.fsm.HandleRPTC(f.PeerID, cfg, from, now)
		c.sendOutcome(sr, from, outcome)
		if !outcome.Evict {
			c.metrics.PeerConnected()
			if c.mqttPub != nil {
				c.mqttPub.PublishPeerConnect(mqttPeerConnectEvent(sr.name, f.PeerID, cfg))
			}
		}

	case *protocol.RPTPingFrame:
		c.sendOutcome(sr, from, sr.fsm.HandlePing(f.PeerID, from, now))

	case *protocol.RPTCLFrame:
		outcome := sr.fsm.HandleClose(f.PeerID, from)
		if outcome.Evict {
			c.metrics.PeerDisconnected()
			if c.mqttPub != nil {
				c.mqttPub.PublishPeerDisconnect(mqttPeerDisconnectEvent(sr.name, f.PeerID, outcome.Reason))
			}
		}

	case *protocol.DMRDFrame:
		if !c.peerKnown(sr, f.PeerID, from) {
			sr.conn.WriteToUDP((&protocol.MSTNakFrame{PeerID: f.PeerID}).Encode(), from)
			return
		}
		result := c.router.RouteDMR(sr.name, f, now)
		c.deliver(result)

	case *protocol.P25DFrame:
		if !c.peerKnown(sr, f.PeerID, from) {
			sr.conn.WriteToUDP((&protocol.MSTNakFrame{PeerID: f.PeerID}).Encode(), from)
			return
		}
		var result router.RouteResult
		if duid, ok := f.DUID(); ok && duid == protocol.P25DUIDTSBK {
			result = c.router.RouteP25TSBK(sr.name, f, now)
		} else {
			result = c.router.RouteP25Voice(sr.name, f, now)
		}
		c.deliver(result)

	default:
		sr.log.Debug("unhandled frame", logger.Opcode(frame.Opcode()))
	}
}

func (c *Core) peerKnown(sr *systemRuntime, peerID uint32, from *net.UDPAddr) bool {
	p, ok := sr.sys.Registry.Get(peerID)
	return ok && p.CurrentState() == peer.StateConnected && p.MatchesEndpoint(from)
}

func (c *Core) sendOutcome(sr *systemRuntime, from *net.UDPAddr, outcome peer.Outcome) {
	if outcome.Reply != nil {
		sr.conn.WriteToUDP(outcome.Reply.Encode(), from)
	}
}

// deliver writes every outbound frame from a route result to its
// owning system's socket, and publishes every event onto the
// reporting bus and frame-routed metric (spec.md §4.5, §6).
func (c *Core) deliver(result router.RouteResult) {
	for _, out := range result.Outbound {
		sr, ok := c.systems[out.System]
		if !ok || sr.conn == nil {
			continue
		}
		p, ok := sr.sys.Registry.Get(out.PeerID)
		if !ok {
			continue
		}
		sr.conn.WriteToUDP(out.Data, p.Endpoint)
		c.metrics.FrameRouted(out.System, 0)
	}
	for _, e := range result.Events {
		c.bus.Publish(reporting.CallEvent{Text: e.String()})
		if e.Type == router.EventRejectACL {
			c.metrics.ACLRejected(e.Subtype)
		}
	}
}
