package peer

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
)

// GenerateSalt produces a random 32-bit challenge salt for the
// LOGIN_RECEIVED -> CHALLENGE_SENT transition.
func GenerateSalt() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is not recoverable; a zero salt would
		// make authentication deterministic, which is worse than
		// panicking loudly.
		panic("peer: crypto/rand unavailable: " + err.Error())
	}
	return binary.BigEndian.Uint32(buf[:])
}

// ExpectedDigest computes SHA-256(salt || passphrase), the response a
// peer must present in RPTK (spec.md §4.3).
func ExpectedDigest(salt uint32, passphrase string) [32]byte {
	var saltBytes [4]byte
	binary.BigEndian.PutUint32(saltBytes[:], salt)
	h := sha256.New()
	h.Write(saltBytes[:])
	h.Write([]byte(passphrase))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// VerifyDigest reports whether digest matches SHA-256(salt ||
// passphrase), using a constant-time comparison so the response
// cannot be distinguished by timing.
func VerifyDigest(salt uint32, passphrase string, digest [32]byte) bool {
	expected := ExpectedDigest(salt, passphrase)
	return subtle.ConstantTimeCompare(expected[:], digest[:]) == 1
}
