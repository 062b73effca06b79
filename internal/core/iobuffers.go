package core

// slotState tags which side of an IOBuffers slot is live. The receive and
// send iovec arrays intentionally share the same payload backing store —
// this is safe only because the single-threaded loop never interleaves a
// receive and a send on the same buffer index. The tag exists so that
// invariant is checkable, not enforced at runtime.
type slotState int

const (
	slotIdle slotState = iota
	slotReceiving
	slotSending
)

// IOBuffers holds PacketBatchSize reusable payload buffers plus the
// staging buffer for their length prefixes, shared between one loop
// instance's receive and send paths.
type IOBuffers struct {
	Payloads [][]byte // PacketBatchSize buffers of MaxPayload bytes each
	Lengths  []byte   // LengthSize * PacketBatchSize staging buffer
	state    []slotState
}

// NewIOBuffers allocates a fresh IOBuffers with n slots of maxPayload
// bytes each.
func NewIOBuffers(n, maxPayload int) *IOBuffers {
	b := &IOBuffers{
		Payloads: make([][]byte, n),
		Lengths:  make([]byte, LengthSize*n),
		state:    make([]slotState, n),
	}
	for i := range b.Payloads {
		b.Payloads[i] = make([]byte, maxPayload)
	}
	return b
}

// Len is the number of slots.
func (b *IOBuffers) Len() int { return len(b.Payloads) }

// MarkReceiving tags slot i as owned by the receive path. It panics if the
// slot is already live, since that would mean a receive and a send are
// interleaved on the same backing store — exactly what single-threaded
// ownership is meant to prevent.
func (b *IOBuffers) MarkReceiving(i int) {
	if b.state[i] != slotIdle {
		panic("core: io buffer slot already live")
	}
	b.state[i] = slotReceiving
}

// MarkSending tags slot i as owned by the send path.
func (b *IOBuffers) MarkSending(i int) {
	if b.state[i] != slotIdle {
		panic("core: io buffer slot already live")
	}
	b.state[i] = slotSending
}

// Release returns slot i to idle once its I/O has completed.
func (b *IOBuffers) Release(i int) {
	b.state[i] = slotIdle
}
