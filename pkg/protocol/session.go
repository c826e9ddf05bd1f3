package protocol

// RPTLFrame is a peer login request: peer(4).
type RPTLFrame struct {
	PeerID uint32
}

func (f *RPTLFrame) Opcode() string { return TagRPTL }

func (f *RPTLFrame) Encode() []byte {
	b := make([]byte, MinSizeRPTL)
	copy(b[0:4], TagRPTL)
	put32(b[4:8], f.PeerID)
	return b
}

func parseRPTL(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTL {
		return nil, ErrShortFrame
	}
	return &RPTLFrame{PeerID: get32(data[4:8])}, nil
}

// RPTKFrame is a challenge response: peer(4) digest(32), where digest
// is SHA-256(salt ‖ passphrase).
type RPTKFrame struct {
	PeerID uint32
	Digest [32]byte
}

func (f *RPTKFrame) Opcode() string { return TagRPTK }

func (f *RPTKFrame) Encode() []byte {
	b := make([]byte, MinSizeRPTK)
	copy(b[0:4], TagRPTK)
	put32(b[4:8], f.PeerID)
	copy(b[8:40], f.Digest[:])
	return b
}

func parseRPTK(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTK {
		return nil, ErrShortFrame
	}
	f := &RPTKFrame{PeerID: get32(data[4:8])}
	copy(f.Digest[:], data[8:40])
	return f, nil
}

// RPTCFrame carries the peer's JSON configuration blob: peer(4)
// json-config bytes.
type RPTCFrame struct {
	PeerID uint32
	Config []byte // raw JSON, validated by the caller
}

func (f *RPTCFrame) Opcode() string { return TagRPTC }

func (f *RPTCFrame) Encode() []byte {
	b := make([]byte, 8+len(f.Config))
	copy(b[0:4], TagRPTC)
	put32(b[4:8], f.PeerID)
	copy(b[8:], f.Config)
	return b
}

func parseRPTC(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTC {
		return nil, ErrShortFrame
	}
	f := &RPTCFrame{PeerID: get32(data[4:8])}
	f.Config = append([]byte(nil), data[8:]...)
	return f, nil
}

// RPTPingFrame is a peer keep-alive: peer(4) after the 7-byte "RPTPING" tag.
type RPTPingFrame struct {
	PeerID uint32
}

func (f *RPTPingFrame) Opcode() string { return TagRPTPING }

func (f *RPTPingFrame) Encode() []byte {
	b := make([]byte, MinSizeRPTPING)
	copy(b[0:7], TagRPTPING)
	put32(b[7:11], f.PeerID)
	return b
}

func parseRPTPing(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTPING {
		return nil, ErrShortFrame
	}
	return &RPTPingFrame{PeerID: get32(data[7:11])}, nil
}

// RPTCLFrame is a peer-initiated close: peer(4) after the 5-byte tag.
type RPTCLFrame struct {
	PeerID uint32
}

func (f *RPTCLFrame) Opcode() string { return TagRPTCL }

func (f *RPTCLFrame) Encode() []byte {
	b := make([]byte, MinSizeRPTCL)
	copy(b[0:5], TagRPTCL)
	put32(b[5:9], f.PeerID)
	return b
}

func parseRPTCL(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTCL {
		return nil, ErrShortFrame
	}
	return &RPTCLFrame{PeerID: get32(data[5:9])}, nil
}

// TrnsLogFrame is a peer activity-log message: peer(4) text.
type TrnsLogFrame struct {
	PeerID uint32
	Text   string
}

func (f *TrnsLogFrame) Opcode() string { return TagTRNSLOG }

func (f *TrnsLogFrame) Encode() []byte {
	b := make([]byte, 11+len(f.Text))
	copy(b[0:7], TagTRNSLOG)
	put32(b[7:11], f.PeerID)
	copy(b[11:], f.Text)
	return b
}

func parseTrnsLog(data []byte) (Frame, error) {
	if len(data) < MinSizeTRNSLOG {
		return nil, ErrShortFrame
	}
	return &TrnsLogFrame{PeerID: get32(data[7:11]), Text: string(data[11:])}, nil
}

// TrnsDiagFrame is a peer diagnostic-log message: peer(4) text, behind
// the 8-byte "TRNSDIAG" tag.
type TrnsDiagFrame struct {
	PeerID uint32
	Text   string
}

func (f *TrnsDiagFrame) Opcode() string { return TagTRNSDIAG }

func (f *TrnsDiagFrame) Encode() []byte {
	b := make([]byte, 12+len(f.Text))
	copy(b[0:8], TagTRNSDIAG)
	put32(b[8:12], f.PeerID)
	copy(b[12:], f.Text)
	return b
}

func parseTrnsDiag(data []byte) (Frame, error) {
	if len(data) < MinSizeTRNSDIAG {
		return nil, ErrShortFrame
	}
	return &TrnsDiagFrame{PeerID: get32(data[8:12]), Text: string(data[12:])}, nil
}
