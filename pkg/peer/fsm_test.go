package peer

import (
	"net"
	"testing"
	"time"

	"github.com/k9fne/fned/pkg/protocol"
)

func udpAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func newFSM(passphrase string) *FSM {
	return &FSM{
		Registry:   NewRegistry(),
		Passphrase: func(uint32) string { return passphrase },
	}
}

// TestS1MasterHandshake walks the full login/challenge/config sequence
// from spec.md's S1 scenario and checks the peer ends CONNECTED.
func TestS1MasterHandshake(t *testing.T) {
	f := newFSM("secret")
	addr := udpAddr(62031)
	now := time.Unix(1000, 0)

	loginOut := f.HandleRPTL(&protocol.RPTLFrame{PeerID: 123456}, addr, now)
	ack, ok := loginOut.Reply.(*protocol.RPTAckFrame)
	if !ok {
		t.Fatalf("expected RPTAckFrame, got %T", loginOut.Reply)
	}
	salt := ack.Value

	digest := ExpectedDigest(salt, "secret")
	rptkOut := f.HandleRPTK(&protocol.RPTKFrame{PeerID: 123456, Digest: digest}, addr, now)
	ack2, ok := rptkOut.Reply.(*protocol.RPTAckFrame)
	if !ok || ack2.Value != 123456 {
		t.Fatalf("expected RPTAckFrame{peer_id}, got %+v", rptkOut)
	}

	cfg := Config{Identity: "TEST", RXFrequency: "444.0", TXFrequency: "449.0"}
	rptcOut := f.HandleRPTC(123456, cfg, addr, now)
	ack3, ok := rptcOut.Reply.(*protocol.RPTAckFrame)
	if !ok || ack3.Value != 123456 {
		t.Fatalf("expected RPTAckFrame{peer_id}, got %+v", rptcOut)
	}

	p, ok := f.Registry.Get(123456)
	if !ok {
		t.Fatalf("peer not found")
	}
	if p.CurrentState() != StateConnected {
		t.Fatalf("state = %v, want CONNECTED", p.CurrentState())
	}
	if p.Config != cfg {
		t.Fatalf("config = %+v, want %+v", p.Config, cfg)
	}
}

// TestP2ChallengeVerification checks spec.md's P2 property directly.
func TestP2ChallengeVerification(t *testing.T) {
	salt := uint32(0xDEADBEEF)
	digest := ExpectedDigest(salt, "hunter2")
	if !VerifyDigest(salt, "hunter2", digest) {
		t.Fatalf("expected match")
	}
	tampered := digest
	tampered[0] ^= 0xFF
	if VerifyDigest(salt, "hunter2", tampered) {
		t.Fatalf("expected mismatch on tampered digest")
	}
	if VerifyDigest(salt, "wrong", digest) {
		t.Fatalf("expected mismatch on wrong passphrase")
	}
}

func TestChallengeMismatchEvicts(t *testing.T) {
	f := newFSM("secret")
	addr := udpAddr(62032)
	now := time.Now()

	f.HandleRPTL(&protocol.RPTLFrame{PeerID: 42}, addr, now)
	badDigest := ExpectedDigest(0, "wrong-salt-and-pass")
	out := f.HandleRPTK(&protocol.RPTKFrame{PeerID: 42, Digest: badDigest}, addr, now)

	if !out.Evict {
		t.Fatalf("expected eviction on digest mismatch")
	}
	if _, ok := out.Reply.(*protocol.MSTNakFrame); !ok {
		t.Fatalf("expected MSTNakFrame, got %T", out.Reply)
	}
	if _, ok := f.Registry.Get(42); ok {
		t.Fatalf("expected peer evicted from registry")
	}
}

// TestP3EndpointPinning checks spec.md's P3 property: once CONNECTED
// from endpoint E, a frame claiming the same peer id from E' != E is
// rejected.
func TestP3EndpointPinning(t *testing.T) {
	f := newFSM("secret")
	addrA := udpAddr(1)
	addrB := udpAddr(2)
	now := time.Now()

	f.HandleRPTL(&protocol.RPTLFrame{PeerID: 7}, addrA, now)
	p, _ := f.Registry.Get(7)
	digest := ExpectedDigest(p.Salt, "secret")

	out := f.HandleRPTK(&protocol.RPTKFrame{PeerID: 7, Digest: digest}, addrB, now)
	if out.Evict {
		t.Fatalf("spoofed endpoint should not be able to trigger eviction of the real peer")
	}
	if p.CurrentState() != StateChallengeSent {
		t.Fatalf("state should not have advanced from a mismatched endpoint, got %v", p.CurrentState())
	}
}

func TestPingRefreshesLastPing(t *testing.T) {
	f := newFSM("secret")
	addr := udpAddr(3)
	now := time.Unix(2000, 0)

	f.HandleRPTL(&protocol.RPTLFrame{PeerID: 9}, addr, now)
	p, _ := f.Registry.Get(9)
	digest := ExpectedDigest(p.Salt, "secret")
	f.HandleRPTK(&protocol.RPTKFrame{PeerID: 9, Digest: digest}, addr, now)
	f.HandleRPTC(9, Config{Identity: "X"}, addr, now)

	later := now.Add(90 * time.Second)
	out := f.HandlePing(9, addr, later)
	if _, ok := out.Reply.(*protocol.MSTPongFrame); !ok {
		t.Fatalf("expected MSTPongFrame, got %T", out.Reply)
	}
	if p.LastPing != later {
		t.Fatalf("last ping not refreshed")
	}
}

func TestS6PeerTimeoutSweep(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(5000, 0)
	p := NewPeer(55, udpAddr(4), now)
	p.SetState(StateConnected)
	r.Insert(p)

	// Well within ping-interval*max-missed: not evicted.
	notYet := r.SweepExpired(now.Add(20*time.Second), 10*time.Second, 3)
	if len(notYet) != 0 {
		t.Fatalf("expected no eviction yet, got %d", len(notYet))
	}

	// Past the silence threshold (30s): evicted.
	evicted := r.SweepExpired(now.Add(40*time.Second), 10*time.Second, 3)
	if len(evicted) != 1 || evicted[0].ID != 55 {
		t.Fatalf("expected peer 55 evicted, got %+v", evicted)
	}
	if _, ok := r.Get(55); ok {
		t.Fatalf("expected peer removed from registry")
	}
}

func TestRPTCLEvicts(t *testing.T) {
	f := newFSM("secret")
	addr := udpAddr(5)
	now := time.Now()
	f.HandleRPTL(&protocol.RPTLFrame{PeerID: 11}, addr, now)

	out := f.HandleClose(11, addr)
	if !out.Evict {
		t.Fatalf("expected eviction")
	}
	if _, ok := f.Registry.Get(11); ok {
		t.Fatalf("expected peer removed")
	}
}
