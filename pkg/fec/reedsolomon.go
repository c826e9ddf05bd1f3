package fec

// GF(2^8) arithmetic with field polynomial x^8+x^5+x^3+x^2+1 (0x12D),
// the generator spec.md §4.2 names for P25 LC-header/terminator Reed-
// Solomon parity.
const gfFieldPoly = 0x12D

var gfExp [512]byte
var gfLog [256]byte

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gfFieldPoly
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return gfExp[(int(gfLog[a])-int(gfLog[b])+255)%255]
}

func gfPow(a byte, n int) byte {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	return gfExp[(int(gfLog[a])*n)%255]
}

// gfPolyEval evaluates polynomial p (highest degree first) at x.
func gfPolyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}

// rsGenerator builds the RS generator polynomial for nsym parity
// symbols: product of (X - alpha^i) for i in [0, nsym).
func rsGenerator(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		root := gfPow(2, i)
		g = polyMulMonomial(g, root)
	}
	return g
}

// polyMulMonomial multiplies polynomial g (highest degree first) by
// (X - root), i.e. (X + root) in GF(2).
func polyMulMonomial(g []byte, root byte) []byte {
	out := make([]byte, len(g)+1)
	copy(out, g)
	for i := range g {
		out[i+1] ^= gfMul(g[i], root)
	}
	return out
}

// RSEncode129 encodes 9 data bytes into a 12-byte Reed-Solomon(12,9)
// codeword: 9 data bytes followed by 3 parity bytes, per spec.md §4.2.
func RSEncode129(data []byte) []byte {
	if len(data) != 9 {
		panic("fec: RSEncode129 requires exactly 9 data bytes")
	}
	const nsym = 3
	gen := rsGenerator(nsym)

	msg := make([]byte, len(data)+nsym)
	copy(msg, data)

	remainder := make([]byte, len(msg))
	copy(remainder, msg)
	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(gen); j++ {
			remainder[i+j] ^= gfMul(gen[j], coef)
		}
	}

	out := make([]byte, 12)
	copy(out, data)
	copy(out[9:], remainder[len(data):])
	return out
}

// RSDecode129 validates a 12-byte Reed-Solomon(12,9) codeword. With 3
// parity bytes the code can detect up to 2 symbol errors and correct
// 1. If the codeword is clean (or the single error is corrected), the
// 9 data bytes are returned with ok=true; an uncorrectable codeword
// returns ok=false.
func RSDecode129(codeword []byte) (data []byte, corrected, ok bool) {
	if len(codeword) != 12 {
		panic("fec: RSDecode129 requires exactly 12 bytes")
	}
	const nsym = 3

	syndromes := make([]byte, nsym)
	clean := true
	for i := 0; i < nsym; i++ {
		root := gfPow(2, i)
		syndromes[i] = gfPolyEvalCodeword(codeword, root)
		if syndromes[i] != 0 {
			clean = false
		}
	}
	if clean {
		return append([]byte(nil), codeword[:9]...), false, true
	}

	// Single-symbol error correction: try every position and every
	// nonzero magnitude until the syndromes are satisfied. With only 3
	// parity bytes this exhaustive search (12 positions * 255 values)
	// is cheap and avoids needing a full Berlekamp-Massey solver for a
	// code this small.
	for pos := 0; pos < 12; pos++ {
		for mag := 1; mag < 256; mag++ {
			trial := append([]byte(nil), codeword...)
			trial[pos] ^= byte(mag)
			ok := true
			for i := 0; i < nsym; i++ {
				root := gfPow(2, i)
				if gfPolyEvalCodeword(trial, root) != 0 {
					ok = false
					break
				}
			}
			if ok {
				return append([]byte(nil), trial[:9]...), true, true
			}
		}
	}
	return nil, false, false
}

// gfPolyEvalCodeword evaluates the codeword, treated as a polynomial
// with the first byte as the highest-degree coefficient, at x.
func gfPolyEvalCodeword(codeword []byte, x byte) byte {
	return gfPolyEval(codeword, x)
}
