package binary

// BitWriter appends bit fields to a growing byte slice.
type BitWriter struct {
	order BitOrder
	buf   []byte
	bits  int
}

// NewBitWriter creates a BitWriter that packs fields in the given order.
func NewBitWriter(order BitOrder) *BitWriter {
	return &BitWriter{order: order}
}

// WriteBits appends the low width bits of v.
func (bw *BitWriter) WriteBits(v uint64, width int) *BitWriter {
	need := (bw.bits + width + 7) / 8
	for len(bw.buf) < need {
		bw.buf = append(bw.buf, 0)
	}
	PackUint(bw.buf, bw.bits, width, bw.order, v)
	bw.bits += width
	return bw
}

// Len returns the number of bits written.
func (bw *BitWriter) Len() int {
	return bw.bits
}

// Bytes returns the packed bytes; a trailing partial byte is zero padded.
func (bw *BitWriter) Bytes() []byte {
	out := make([]byte, len(bw.buf))
	copy(out, bw.buf)
	return out
}
