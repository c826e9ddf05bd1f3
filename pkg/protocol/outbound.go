package protocol

// MSTNakFrame is the master's negative-acknowledgement: peer(4) after
// the 6-byte "MSTNAK" tag. Sent on challenge mismatch, unknown peer id
// on a non-login opcode, and any opcode illegal in the peer's current
// state (spec.md §4.3, §7).
type MSTNakFrame struct {
	PeerID uint32
}

func (f *MSTNakFrame) Opcode() string { return TagMSTNAK }

func (f *MSTNakFrame) Encode() []byte {
	b := make([]byte, MinSizeMSTNAK)
	copy(b[0:6], TagMSTNAK)
	put32(b[6:10], f.PeerID)
	return b
}

func parseMSTNak(data []byte) (Frame, error) {
	if len(data) < MinSizeMSTNAK {
		return nil, ErrShortFrame
	}
	return &MSTNakFrame{PeerID: get32(data[6:10])}, nil
}

// MSTPongFrame replies to a peer's RPTPING: peer(4) after the 7-byte
// "MSTPONG" tag.
type MSTPongFrame struct {
	PeerID uint32
}

func (f *MSTPongFrame) Opcode() string { return TagMSTPONG }

func (f *MSTPongFrame) Encode() []byte {
	b := make([]byte, MinSizeMSTPONG)
	copy(b[0:7], TagMSTPONG)
	put32(b[7:11], f.PeerID)
	return b
}

func parseMSTPong(data []byte) (Frame, error) {
	if len(data) < MinSizeMSTPONG {
		return nil, ErrShortFrame
	}
	return &MSTPongFrame{PeerID: get32(data[7:11])}, nil
}

// RPTAckFrame is the master's positive acknowledgement. Per spec.md
// §4.3, the same opcode carries two different payloads depending on
// FSM stage: the ACK returned from the challenge step carries the
// 32-bit salt (so the peer knows what it is hashing), and the ACK
// returned from the config step carries the peer id. Value holds
// whichever of the two applies; callers use NewRPTAckSalt /
// NewRPTAckPeerID to make the intent explicit at the call site.
type RPTAckFrame struct {
	Value uint32
}

func NewRPTAckSalt(salt uint32) *RPTAckFrame   { return &RPTAckFrame{Value: salt} }
func NewRPTAckPeerID(peerID uint32) *RPTAckFrame { return &RPTAckFrame{Value: peerID} }

func (f *RPTAckFrame) Opcode() string { return TagRPTACK }

func (f *RPTAckFrame) Encode() []byte {
	b := make([]byte, MinSizeRPTACK)
	copy(b[0:6], TagRPTACK)
	put32(b[6:10], f.Value)
	return b
}

func parseRPTAck(data []byte) (Frame, error) {
	if len(data) < MinSizeRPTACK {
		return nil, ErrShortFrame
	}
	return &RPTAckFrame{Value: get32(data[6:10])}, nil
}

// MSTClFrame is the master's close notice, broadcast to every
// connected peer on shutdown or sent to a single peer on eviction:
// peer(4) after the 5-byte "MSTCL" tag.
type MSTClFrame struct {
	PeerID uint32
}

func (f *MSTClFrame) Opcode() string { return TagMSTCL }

func (f *MSTClFrame) Encode() []byte {
	b := make([]byte, MinSizeMSTCL)
	copy(b[0:5], TagMSTCL)
	put32(b[5:9], f.PeerID)
	return b
}

func parseMSTCl(data []byte) (Frame, error) {
	if len(data) < MinSizeMSTCL {
		return nil, ErrShortFrame
	}
	return &MSTClFrame{PeerID: get32(data[5:9])}, nil
}
