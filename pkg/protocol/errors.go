package protocol

import "errors"

// Parse errors per spec.md §4.1. All three are treated by upper layers as
// "ignore but log" (spec.md §7: drop, log at debug/warning, continue).
var (
	ErrShortFrame    = errors.New("protocol: short frame")
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	ErrBadPeerID     = errors.New("protocol: bad peer id")
)
