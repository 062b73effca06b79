package core

import "encoding/binary"

// LengthSize is the width, in bytes, of the big-endian length prefix that
// turns a byte-stream channel into a packet-oriented one.
const LengthSize = 2

// MaxPayload bounds a single frame's payload. This build uses the
// L2TP-encapsulated, MTU-enforced size since the server loop dispatches
// on an L2TP session id carried inside that encapsulation.
const MaxPayload = 4096

// PacketBatchSize is the number of datagrams handled in one recvmmsg/
// sendmmsg call.
const PacketBatchSize = 32

// EncodeLength writes n, which must fit in 16 bits, as a big-endian
// length prefix into dst[:2].
func EncodeLength(dst []byte, n int) {
	binary.BigEndian.PutUint16(dst, uint16(n))
}

// DecodeLength reads a big-endian length prefix from src[:2].
func DecodeLength(src []byte) int {
	return int(binary.BigEndian.Uint16(src))
}

// l2tpSessionIDOffset is the byte offset of the 32-bit big-endian session
// id within an L2TP header.
const l2tpSessionIDOffset = 4

// SessionID extracts the 32-bit big-endian L2TP session id from offset 4
// of frame. The caller must ensure frame is at least 8 bytes; no further
// validation is attempted — the peer is trusted to produce well-formed
// frames.
func SessionID(frame []byte) uint32 {
	return binary.BigEndian.Uint32(frame[l2tpSessionIDOffset : l2tpSessionIDOffset+4])
}
