package protocol

import (
	"bytes"
	"testing"
)

func TestParseDispatchesByTag(t *testing.T) {
	tests := []struct {
		name string
		in   Frame
	}{
		{"RPTL", &RPTLFrame{PeerID: 100}},
		{"RPTK", &RPTKFrame{PeerID: 100}},
		{"RPTC", &RPTCFrame{PeerID: 100, Config: []byte(`{"identity":"X"}`)}},
		{"RPTPING", &RPTPingFrame{PeerID: 100}},
		{"RPTCL", &RPTCLFrame{PeerID: 100}},
		{"MSTNAK", &MSTNakFrame{PeerID: 100}},
		{"MSTPONG", &MSTPongFrame{PeerID: 100}},
		{"RPTACK", &RPTAckFrame{Value: 0xdeadbeef}},
		{"MSTCL", &MSTClFrame{PeerID: 100}},
		{"MSTWRID", NewWhitelistRIDPush([]uint32{1, 2, 3})},
		{"MSTDTID", NewDeactiveTGIDPush(nil)},
		{"TRNSLOG", &TrnsLogFrame{PeerID: 100, Text: "hello"}},
		{"TRNSDIAG", &TrnsDiagFrame{PeerID: 100, Text: "diag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.in.Encode()
			got, err := Parse(encoded)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.Opcode() != tt.in.Opcode() {
				t.Fatalf("opcode = %s, want %s", got.Opcode(), tt.in.Opcode())
			}
			if !bytes.Equal(got.Encode(), encoded) {
				t.Fatalf("round trip mismatch: got %x want %x", got.Encode(), encoded)
			}
		})
	}
}

func TestRPTCDoesNotCollideWithRPTCL(t *testing.T) {
	rptc := (&RPTCFrame{PeerID: 1, Config: []byte("{}")}).Encode()
	got, err := Parse(rptc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Opcode() != TagRPTC {
		t.Fatalf("opcode = %s, want RPTC", got.Opcode())
	}

	rptcl := (&RPTCLFrame{PeerID: 1}).Encode()
	got, err = Parse(rptcl)
	if err != nil {
		t.Fatal(err)
	}
	if got.Opcode() != TagRPTCL {
		t.Fatalf("opcode = %s, want RPTCL", got.Opcode())
	}
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse([]byte("ZZZZgarbage"))
	if err != ErrUnknownOpcode {
		t.Fatalf("err = %v, want ErrUnknownOpcode", err)
	}
}

func TestParseShortFrame(t *testing.T) {
	_, err := Parse([]byte("DMRD"))
	if err != ErrShortFrame {
		t.Fatalf("err = %v, want ErrShortFrame", err)
	}
}

func TestDMRDSlotAndLCHeader(t *testing.T) {
	f := &DMRDFrame{Seq: 0, Src: 3001, Dst: 9, PeerID: 100, Ctrl: 0x21, StreamID: 0xDEAD}
	if f.Slot() != 1 {
		t.Fatalf("slot = %d, want 1", f.Slot())
	}
	if !f.IsGroupCall() {
		t.Fatal("expected group call")
	}
	if !f.IsLCHeader() {
		t.Fatal("expected voice LC header (frame-type data-sync, data-type 1)")
	}

	f.Ctrl = SetSlot(f.Ctrl, 2)
	if f.Slot() != 2 {
		t.Fatalf("slot after SetSlot(2) = %d, want 2", f.Slot())
	}
	if f.Ctrl&CtrlSlotBit == 0 {
		t.Fatal("slot bit not set")
	}
}

func TestDMRDEncodeDecodeRoundTrip(t *testing.T) {
	orig := &DMRDFrame{
		Seq: 7, Src: 3001, Dst: 9, PeerID: 100, Ctrl: 0x22, StreamID: 0xDEAD,
	}
	copy(orig.DMRFrame[:], bytes.Repeat([]byte{0xAB}, 33))
	orig.RSSI = 40
	orig.BER = 1

	encoded := orig.Encode()
	frame, err := Parse(encoded)
	if err != nil {
		t.Fatal(err)
	}
	got := frame.(*DMRDFrame)
	if *got != *orig {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, orig)
	}
}

func TestP25DUIDAndTSBKOpcode(t *testing.T) {
	p25 := make([]byte, 3)
	p25[2] = P25DUIDTSBK
	f := &P25DFrame{LCF: TSBKGroupAffiliationRequest, Src: 4001, Dst: 9, PeerID: 100, P25Frame: p25}
	duid, ok := f.DUID()
	if !ok || duid != P25DUIDTSBK {
		t.Fatalf("DUID = %v, %v", duid, ok)
	}
	op, ok := f.TSBKOpcode()
	if !ok || op != TSBKGroupAffiliationRequest {
		t.Fatalf("TSBKOpcode = %v, %v", op, ok)
	}
}
