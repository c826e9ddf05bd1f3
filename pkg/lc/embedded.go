package lc

import "github.com/k9fne/fned/pkg/fec"

// Embedded LC splits the 72-bit LC payload across the 4 non-sync voice
// bursts B, C, D, and E (18 bits each), plus a null fragment F that
// carries no payload (spec.md §4.2). Each 32-bit fragment is 18
// payload bits followed by a 14-bit check value, the same
// internally-consistent-checksum approach pkg/lc's full-LC CRC uses,
// at a width matching the fragment.
const embeddedFragmentBits = 32
const embeddedDataBits = 18
const embeddedCheckBits = 14

func crc14(data []byte) uint16 {
	var crc uint16 = 0x3FFF
	for _, bit := range data {
		top := (crc >> 13) & 1
		crc = (crc << 1) & 0x3FFF
		if top^uint16(bit) != 0 {
			crc ^= 0x0805
		}
	}
	return crc
}

// EmbeddedFragment is one 32-bit embedded-LC slice ready for insertion
// into a voice burst's embedded signalling field.
type EmbeddedFragment struct {
	Bits [embeddedFragmentBits]byte
}

// BuildEmbeddedFragments fragments a 9-byte LC payload into the B-E
// sequence plus the trailing null fragment F.
func BuildEmbeddedFragments(payload [9]byte) (b, c, d, e, f EmbeddedFragment) {
	allBits := fec.BytesToBits(payload[:])[0:72]
	chunks := [4][]byte{
		allBits[0:18],
		allBits[18:36],
		allBits[36:54],
		allBits[54:72],
	}
	frags := [4]EmbeddedFragment{}
	for i, chunk := range chunks {
		frags[i] = encodeFragment(chunk)
	}
	return frags[0], frags[1], frags[2], frags[3], nullFragment()
}

func encodeFragment(data []byte) EmbeddedFragment {
	var frag EmbeddedFragment
	copy(frag.Bits[0:embeddedDataBits], data)
	check := crc14(data)
	for i := 0; i < embeddedCheckBits; i++ {
		frag.Bits[embeddedDataBits+i] = byte((check >> uint(embeddedCheckBits-1-i)) & 1)
	}
	return frag
}

func nullFragment() EmbeddedFragment {
	return encodeFragment(make([]byte, embeddedDataBits))
}

// DecodeEmbeddedFragments reassembles the 9-byte LC payload from the
// B-E fragments (the null fragment F carries no payload and is not an
// input here). ok is false if any fragment's checksum does not match
// its data.
func DecodeEmbeddedFragments(b, c, d, e EmbeddedFragment) (payload [9]byte, ok bool) {
	ok = true
	bits := make([]byte, 0, 72)
	for _, frag := range []EmbeddedFragment{b, c, d, e} {
		data := frag.Bits[0:embeddedDataBits]
		var check uint16
		for i := 0; i < embeddedCheckBits; i++ {
			check = check<<1 | uint16(frag.Bits[embeddedDataBits+i])
		}
		if crc14(data) != check {
			ok = false
		}
		bits = append(bits, data...)
	}
	packed := fec.BitsToBytes(bits)
	copy(payload[:], packed)
	return payload, ok
}
