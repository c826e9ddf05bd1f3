package heartbeat

import (
	"net"
	"testing"
	"time"

	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/protocol"
)

type fakeTransport struct {
	sent []sentFrame
}

type sentFrame struct {
	data []byte
	addr *net.UDPAddr
}

func (f *fakeTransport) WriteTo(data []byte, addr *net.UDPAddr) error {
	f.sent = append(f.sent, sentFrame{data: data, addr: addr})
	return nil
}

func TestMasterModeSweepsExpiredPeers(t *testing.T) {
	reg := peer.NewRegistry()
	now := time.Unix(1000, 0)
	p := peer.NewPeer(1, &net.UDPAddr{Port: 1}, now)
	p.SetState(peer.StateConnected)
	reg.Insert(p)

	hb := &Heartbeat{Mode: ModeMaster, Registry: reg, PingInterval: 5 * time.Second, MaxMissed: 3}
	hb.Tick(now.Add(10 * time.Second))
	if _, ok := reg.Get(1); !ok {
		t.Fatalf("expected peer not yet expired")
	}

	hb.Tick(now.Add(20 * time.Second))
	if _, ok := reg.Get(1); ok {
		t.Fatalf("expected peer evicted after silence exceeds threshold")
	}
}

func TestPeerModeEmitsRPTLWhenNotConnected(t *testing.T) {
	transport := &fakeTransport{}
	hb := &Heartbeat{
		Mode: ModePeer, SelfPeerID: 42, Transport: transport,
		MasterAddr: &net.UDPAddr{Port: 9},
	}
	hb.Tick(time.Now())

	if len(transport.sent) != 1 {
		t.Fatalf("expected one frame sent, got %d", len(transport.sent))
	}
	frame, err := protocol.Parse(transport.sent[0].data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := frame.(*protocol.RPTLFrame); !ok {
		t.Fatalf("expected RPTLFrame, got %T", frame)
	}
}

func TestPeerModeEmitsPingWhenConnected(t *testing.T) {
	transport := &fakeTransport{}
	self := peer.NewPeer(42, &net.UDPAddr{Port: 1}, time.Now())
	self.SetState(peer.StateConnected)

	hb := &Heartbeat{
		Mode: ModePeer, SelfPeerID: 42, Transport: transport,
		MasterAddr: &net.UDPAddr{Port: 9},
	}
	hb.SetSelfState(self)
	hb.Tick(time.Now())

	if len(transport.sent) != 1 {
		t.Fatalf("expected one frame sent, got %d", len(transport.sent))
	}
	frame, _ := protocol.Parse(transport.sent[0].data)
	if _, ok := frame.(*protocol.RPTPingFrame); !ok {
		t.Fatalf("expected RPTPingFrame, got %T", frame)
	}
	if self.OutstandingPings != 1 {
		t.Fatalf("outstanding pings = %d, want 1", self.OutstandingPings)
	}

	hb.OnPong()
	if self.OutstandingPings != 0 || self.AckedPings != 1 {
		t.Fatalf("outstanding=%d acked=%d, want 0/1", self.OutstandingPings, self.AckedPings)
	}
}
