package cpu

import (
	"fmt"
)

// Word is a 32-bit two's-complement value, the unit of register and
// memory storage.
type Word int32

const (
	WORD_BITS = 32
	WORD_MAX  = int64(1<<31 - 1) // Largest representable Word.
	WORD_MIN  = -int64(1 << 31)  // Smallest representable Word.
)

// Bits returns the 32 character binary rendering of the word.
func (w Word) Bits() string {
	return fmt.Sprintf("%032b", uint32(w))
}

// Hex returns the 8 digit upper case hex rendering of the word.
func (w Word) Hex() string {
	return fmt.Sprintf("%08X", uint32(w))
}

// field returns the n bit unsigned field of a 32-bit pattern whose most
// significant bit is at position 'from' (0 being the MSB).
func field(pattern uint32, from, n uint) uint32 {
	shift := WORD_BITS - from - n
	return (pattern >> shift) & (1<<n - 1)
}

// SignExtend interprets the low n bits of value as a two's-complement
// number. With a leading 0 the result is the unsigned value of the
// remaining n-1 bits; with a leading 1 it is that value minus 2^(n-1).
func SignExtend(value uint32, n uint) int32 {
	if n == 0 {
		return 0
	}

	lead := (value >> (n - 1)) & 1
	rest := int64(value & (1<<(n-1) - 1))
	if lead == 1 {
		rest -= int64(1) << (n - 1)
	}

	return int32(rest)
}

// Truncate32 reduces a wide value to its low 32 bits, reinterpreted as
// two's complement.
func Truncate32(value int64) Word {
	return Word(int32(uint32(value)))
}
