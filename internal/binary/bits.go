package binary

import "fmt"

// BitOrder selects how bit positions map onto bytes.
type BitOrder int

const (
	// MSBFirst numbers bits from the most significant bit of b[0] and
	// assembles values most significant bit first. FLAC headers and MPEG
	// audio frame headers are packed this way.
	MSBFirst BitOrder = iota

	// LSBFirst numbers bits from the least significant bit of b[0] and
	// assembles values least significant bit first. Byte-aligned fields
	// read this way are little-endian integers (RIFF, VP8L).
	LSBFirst
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "lsb-first"
	}
	return "msb-first"
}

// UnpackUint extracts a bitLength-wide unsigned integer starting at
// bitOffset. Out-of-range arguments are programming errors and panic.
func UnpackUint(b []byte, bitOffset, bitLength int, order BitOrder) uint64 {
	checkSpan(len(b), bitOffset, bitLength)

	var v uint64
	for i := range bitLength {
		pos := bitOffset + i
		switch order {
		case MSBFirst:
			bit := b[pos/8] >> (7 - pos%8) & 1
			v = v<<1 | uint64(bit)
		default:
			bit := b[pos/8] >> (pos % 8) & 1
			v |= uint64(bit) << i
		}
	}
	return v
}

// PackUint stores the low bitLength bits of v at bitOffset. Bits outside
// the span are left untouched. It is the inverse of UnpackUint.
func PackUint(b []byte, bitOffset, bitLength int, order BitOrder, v uint64) {
	checkSpan(len(b), bitOffset, bitLength)

	for i := range bitLength {
		pos := bitOffset + i
		var bit byte
		var shift uint
		switch order {
		case MSBFirst:
			bit = byte(v >> (bitLength - 1 - i) & 1)
			shift = uint(7 - pos%8)
		default:
			bit = byte(v >> i & 1)
			shift = uint(pos % 8)
		}
		b[pos/8] = b[pos/8]&^(1<<shift) | bit<<shift
	}
}

func checkSpan(n, bitOffset, bitLength int) {
	if bitLength < 0 || bitLength > 64 {
		panic(fmt.Sprintf("binary: bit length %d outside [0, 64]", bitLength))
	}
	if bitOffset < 0 {
		panic(fmt.Sprintf("binary: negative bit offset %d", bitOffset))
	}
	if bitOffset+bitLength > n*8 {
		panic(fmt.Sprintf("binary: bit span [%d, %d) exceeds %d bytes", bitOffset, bitOffset+bitLength, n))
	}
}
