package lc

import "github.com/k9fne/fned/pkg/fec"

// P25 protects its LC header and terminator payloads with
// Reed-Solomon(12,9) rather than BPTC, reusing the same 9-byte LC
// payload shape as the DMR full LC (spec.md §4.2).
func EncodeP25LC(payload [9]byte) []byte {
	return fec.RSEncode129(payload[:])
}

// DecodeP25LC reverses EncodeP25LC, correcting a single corrupted
// byte.
func DecodeP25LC(codeword []byte) (payload [9]byte, ok bool) {
	data, _, ok := fec.RSDecode129(codeword)
	if !ok {
		return [9]byte{}, false
	}
	copy(payload[:], data)
	return payload, true
}

// LDUChecksum computes the 5-bit status checksum P25 LDU1/LDU2 frames
// carry alongside their payload words: the low 5 bits of the sum of
// all payload bytes.
func LDUChecksum(payload []byte) byte {
	var sum int
	for _, b := range payload {
		sum += int(b)
	}
	return byte(sum & 0x1F)
}

// VerifyLDUChecksum reports whether a received payload matches its
// carried 5-bit checksum.
func VerifyLDUChecksum(payload []byte, checksum byte) bool {
	return LDUChecksum(payload) == checksum&0x1F
}
