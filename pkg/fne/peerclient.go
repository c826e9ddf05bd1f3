package fne

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/k9fne/fned/pkg/heartbeat"
	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
)

// runPeerClient drives one peer-mode system's connection to its
// master: RPTL -> RPTACK(salt) -> RPTK -> RPTACK(peer id) -> RPTC ->
// RPTACK(peer id) -> CONNECTED, then RPTPING keep-alives (spec.md
// §4.3 run from the peer side, §4.4 peer mode). The teacher's own
// main.go left peer mode as a stub; this fills it in.
func (c *Core) runPeerClient(ctx context.Context, sr *systemRuntime) {
	masterAddr := &net.UDPAddr{IP: net.ParseIP(sr.cfg.MasterAddress), Port: sr.cfg.MasterPort}

	sr.selfPeer = peer.NewPeer(sr.cfg.PeerID, nil, time.Now())

	pingInterval := time.Duration(c.cfg.Global.PingInterval) * time.Second
	if pingInterval <= 0 {
		pingInterval = 5 * time.Second
	}
	maxMissed := c.cfg.Global.MaxMissed
	if maxMissed <= 0 {
		maxMissed = 3
	}

	sr.heartbeat = &heartbeat.Heartbeat{
		Mode:         heartbeat.ModePeer,
		System:       sr.name,
		PingInterval: pingInterval,
		MaxMissed:    maxMissed,
		Transport:    udpTransport{conn: sr.conn},
		Log:          sr.log,
		MasterAddr:   masterAddr,
		SelfPeerID:   sr.cfg.PeerID,
	}
	sr.heartbeat.SetSelfState(sr.selfPeer)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		c.peerReadLoop(ctx, sr, masterAddr)
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-readDone
			return
		case now := <-ticker.C:
			sr.heartbeat.Tick(now)
		}
	}
}

func (c *Core) peerReadLoop(ctx context.Context, sr *systemRuntime, masterAddr *net.UDPAddr) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sr.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, _, err := sr.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		frame, err := protocol.Parse(buf[:n])
		if err != nil {
			continue
		}
		c.dispatchPeerClient(sr, frame, masterAddr)
	}
}

func (c *Core) dispatchPeerClient(sr *systemRuntime, frame protocol.Frame, masterAddr *net.UDPAddr) {
	switch f := frame.(type) {
	case *protocol.RPTAckFrame:
		// Per spec.md §4.3 the ack after RPTL carries the challenge
		// salt, the ack after RPTK carries the peer id, and the ack
		// after RPTC completes the handshake; selfPeer.State tracks
		// which of those three this instance is waiting on.
		switch sr.selfPeer.CurrentState() {
		case peer.StateLoginReceived:
			digest := peer.ExpectedDigest(f.Value, sr.cfg.Passphrase)
			sr.selfPeer.SetState(peer.StateChallengeSent)
			sr.conn.WriteToUDP((&protocol.RPTKFrame{PeerID: sr.cfg.PeerID, Digest: digest}).Encode(), masterAddr)

		case peer.StateChallengeSent:
			cfgBytes, err := json.Marshal(peer.Config{
				Identity:   sr.cfg.Identity,
				Location:   sr.cfg.Location,
				SoftwareID: sr.cfg.SoftwareID,
				RCONPort:   sr.cfg.RCONPort,
			})
			if err != nil {
				return
			}
			sr.selfPeer.SetState(peer.StateWaitingConfig)
			sr.conn.WriteToUDP((&protocol.RPTCFrame{PeerID: sr.cfg.PeerID, Config: cfgBytes}).Encode(), masterAddr)

		case peer.StateWaitingConfig:
			sr.selfPeer.SetState(peer.StateConnected)
			sr.selfPeer.TouchPing(time.Now())

		case peer.StateConnected:
			sr.selfPeer.TouchPing(time.Now())
		}

	case *protocol.MSTNakFrame:
		sr.log.Warn("master rejected login, retrying", logger.PeerID(f.PeerID))
		sr.selfPeer.SetState(peer.StateLoginReceived)

	case *protocol.MSTPongFrame:
		sr.heartbeat.OnPong()

	case *protocol.MSTClFrame:
		sr.log.Warn("master closed connection", logger.PeerID(f.PeerID))
		sr.selfPeer.SetState(peer.StateLoginReceived)
	}
}
