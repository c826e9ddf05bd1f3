package protocol

// DMRDFrame carries one DMR burst: seq(1) src(3) dst(3) peer(4) ctrl(1)
// stream(4) dmr_frame(33) rssi+err(2), per spec.md §4.1.
type DMRDFrame struct {
	Seq      byte
	Src      uint32 // 24-bit radio id
	Dst      uint32 // 24-bit TGID or unit id
	PeerID   uint32
	Ctrl     byte
	StreamID uint32
	DMRFrame [33]byte
	RSSI     byte
	BER      byte
}

func (f *DMRDFrame) Opcode() string { return TagDMRD }

func (f *DMRDFrame) Encode() []byte {
	b := make([]byte, MinSizeDMRD)
	copy(b[0:4], TagDMRD)
	b[4] = f.Seq
	put24(b[5:8], f.Src)
	put24(b[8:11], f.Dst)
	put32(b[11:15], f.PeerID)
	b[15] = f.Ctrl
	put32(b[16:20], f.StreamID)
	copy(b[20:53], f.DMRFrame[:])
	b[53] = f.RSSI
	b[54] = f.BER
	return b
}

func parseDMRD(data []byte) (Frame, error) {
	if len(data) < MinSizeDMRD {
		return nil, ErrShortFrame
	}
	f := &DMRDFrame{
		Seq:      data[4],
		Src:      get24(data[5:8]),
		Dst:      get24(data[8:11]),
		PeerID:   get32(data[11:15]),
		Ctrl:     data[15],
		StreamID: get32(data[16:20]),
	}
	copy(f.DMRFrame[:], data[20:53])
	f.RSSI = data[53]
	f.BER = data[54]
	return f, nil
}

// Slot returns the timeslot (1 or 2) this burst belongs to.
func (f *DMRDFrame) Slot() int { return Slot(f.Ctrl) }

// IsGroupCall reports whether the destination is a talkgroup rather
// than a unit-to-unit private call.
func (f *DMRDFrame) IsGroupCall() bool { return IsGroupCall(f.Ctrl) }

// IsTerminator reports whether this burst is a DMR voice terminator.
func (f *DMRDFrame) IsTerminator() bool { return IsVoiceTerminator(f.Ctrl) }

// IsLCHeader reports whether this burst is a DMR voice LC header.
func (f *DMRDFrame) IsLCHeader() bool { return IsVoiceLCHeader(f.Ctrl) }

// P25DFrame carries one P25 burst: lcf(1) src(3) dst(3) peer(4) ctrl(1)
// stream(4) p25_frame(n), per spec.md §4.1. Frame length varies by
// DUID, so the trailing payload is kept as a variable-length slice.
type P25DFrame struct {
	LCF      byte
	Src      uint32
	Dst      uint32
	PeerID   uint32
	Ctrl     byte
	StreamID uint32
	P25Frame []byte
}

func (f *P25DFrame) Opcode() string { return TagP25D }

func (f *P25DFrame) Encode() []byte {
	b := make([]byte, MinSizeP25D+len(f.P25Frame))
	copy(b[0:4], TagP25D)
	b[4] = f.LCF
	put24(b[5:8], f.Src)
	put24(b[8:11], f.Dst)
	put32(b[11:15], f.PeerID)
	b[15] = f.Ctrl
	put32(b[16:20], f.StreamID)
	copy(b[20:], f.P25Frame)
	return b
}

func parseP25D(data []byte) (Frame, error) {
	if len(data) < MinSizeP25D {
		return nil, ErrShortFrame
	}
	f := &P25DFrame{
		LCF:      data[4],
		Src:      get24(data[5:8]),
		Dst:      get24(data[8:11]),
		PeerID:   get32(data[11:15]),
		Ctrl:     data[15],
		StreamID: get32(data[16:20]),
	}
	f.P25Frame = append([]byte(nil), data[20:]...)
	return f, nil
}

// DUID returns the P25 Data Unit ID, read from absolute datagram
// offset 22 (spec.md §4.1), which is offset 2 into P25Frame since the
// payload starts at datagram offset 20.
func (f *P25DFrame) DUID() (byte, bool) {
	if len(f.P25Frame) <= 2 {
		return 0, false
	}
	return f.P25Frame[2], true
}

// IsTerminator reports whether this burst's DUID is TDU or TDULC.
func (f *P25DFrame) IsTerminator() bool {
	duid, ok := f.DUID()
	return ok && IsP25Terminator(duid)
}

// TSBKOpcode returns the low 6 bits of the first TSBK octet when this
// frame's DUID is TSBK (byte 4, the LCF field, per spec.md §4.1).
func (f *P25DFrame) TSBKOpcode() (byte, bool) {
	duid, ok := f.DUID()
	if !ok || duid != P25DUIDTSBK {
		return 0, false
	}
	return f.LCF & 0x3F, true
}
