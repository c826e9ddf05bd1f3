package protocol

import "bytes"

// Frame is the tagged-variant interface implemented by every wire
// frame this codec understands. spec.md §9's design note calls for
// ad-hoc opcode strings to become enumerations the compiler can check
// exhaustiveness of — Frame plus a type switch in callers is that
// enumeration.
type Frame interface {
	// Opcode returns the frame's wire tag, e.g. "DMRD" or "RPTACK".
	Opcode() string
	// Encode serializes the frame back to wire bytes, tag included.
	Encode() []byte
}

// tagOrder lists every recognized opcode, longest first, so that a
// prefix match against a shorter-but-colliding tag (RPTC is a prefix
// of RPTCL) never misfires.
var tagOrder = []string{
	TagTRNSDIAG,
	TagMSTWRID, TagMSTBRID, TagMSTDTID, TagMSTPONG, TagRPTPING, TagTRNSLOG,
	TagMSTNAK, TagMSTTID, TagRPTACK,
	TagMSTCL, TagRPTCL,
	TagDMRD, TagP25D, TagRPTC, TagRPTL, TagRPTK,
}

// Parse classifies a raw UDP datagram by its leading opcode tag and
// decodes it into the matching Frame implementation. Short or
// malformed datagrams and unrecognized tags return the errors defined
// in errors.go; callers treat both as "ignore but log" per spec.md §7.
func Parse(data []byte) (Frame, error) {
	for _, tag := range tagOrder {
		if bytes.HasPrefix(data, []byte(tag)) {
			return decode(tag, data)
		}
	}
	return nil, ErrUnknownOpcode
}

func decode(tag string, data []byte) (Frame, error) {
	switch tag {
	case TagDMRD:
		return parseDMRD(data)
	case TagP25D:
		return parseP25D(data)
	case TagRPTL:
		return parseRPTL(data)
	case TagRPTK:
		return parseRPTK(data)
	case TagRPTC:
		return parseRPTC(data)
	case TagRPTPING:
		return parseRPTPing(data)
	case TagRPTCL:
		return parseRPTCL(data)
	case TagTRNSLOG:
		return parseTrnsLog(data)
	case TagTRNSDIAG:
		return parseTrnsDiag(data)
	case TagMSTNAK:
		return parseMSTNak(data)
	case TagMSTPONG:
		return parseMSTPong(data)
	case TagRPTACK:
		return parseRPTAck(data)
	case TagMSTCL:
		return parseMSTCl(data)
	case TagMSTWRID, TagMSTBRID, TagMSTTID, TagMSTDTID:
		return parseTablePush(tag, data)
	default:
		return nil, ErrUnknownOpcode
	}
}

// put24 writes the low 24 bits of v into b as big-endian.
func put24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// get24 reads 3 big-endian bytes into the low 24 bits of a uint32.
func get24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func put32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func get32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
