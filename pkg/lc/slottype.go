package lc

import "github.com/k9fne/fned/pkg/fec"

// EncodeSlotType assembles the DMR slot-type field — (color-code<<4) |
// data-type — and protects it with Golay(20,8,7), returning 20 bits
// (spec.md §4.2).
func EncodeSlotType(colorCode, dataType byte) []byte {
	value := (colorCode&0x0F)<<4 | (dataType & 0x0F)
	return fec.EncodeGolay2087(value)
}

// DecodeSlotType reverses EncodeSlotType, correcting up to 2 bit
// errors.
func DecodeSlotType(bits []byte) (colorCode, dataType byte, ok bool) {
	value, _, ok := fec.DecodeGolay2087(bits)
	if !ok {
		return 0, 0, false
	}
	return (value >> 4) & 0x0F, value & 0x0F, true
}
