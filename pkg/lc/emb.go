package lc

import "github.com/k9fne/fned/pkg/fec"

// LCSS (Link Control Start/Stop) values identify an embedded LC
// fragment's position within its 4-fragment sequence.
type LCSS byte

const (
	LCSSSingleFragment LCSS = 0
	LCSSFirstFragment  LCSS = 1
	LCSSContinuation   LCSS = 2
	LCSSLastFragment   LCSS = 3
)

// EMB is the 7-bit value QR(16,7,6)-encoded into the 16-bit EMB field
// carried by every voice burst B-F: color code, privacy indicator, and
// the LCSS of the embedded LC fragment riding alongside it.
type EMB struct {
	ColorCode byte
	PI        bool
	LCSS      LCSS
}

func (e EMB) value() byte {
	v := (e.ColorCode & 0x0F) << 3
	if e.PI {
		v |= 0x04
	}
	v |= byte(e.LCSS) & 0x03
	return v
}

// Encode protects an EMB value with QR(16,7,6), returning 16 bits.
func (e EMB) Encode() []byte {
	return fec.EncodeQR1676(e.value())
}

// DecodeEMB reverses EMB.Encode, correcting a single bit error.
func DecodeEMB(bits []byte) (EMB, bool) {
	v, _, ok := fec.DecodeQR1676(bits)
	if !ok {
		return EMB{}, false
	}
	return EMB{
		ColorCode: (v >> 3) & 0x0F,
		PI:        v&0x04 != 0,
		LCSS:      LCSS(v & 0x03),
	}, true
}
