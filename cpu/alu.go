package cpu

// The ALU operates on Words and returns wide results, so that carry and
// overflow can be seen before the result is truncated for storage.

// Add returns the wide sum a + b.
func Add(a, b Word) int64 {
	return int64(a) + int64(b)
}

// Sub returns the wide difference a - b.
func Sub(a, b Word) int64 {
	return int64(a) - int64(b)
}

// And returns the bitwise AND of the 32-bit patterns of a and b.
func And(a, b Word) int64 {
	return int64(Word(uint32(a) & uint32(b)))
}

// Or returns the bitwise OR of the 32-bit patterns of a and b.
func Or(a, b Word) int64 {
	return int64(Word(uint32(a) | uint32(b)))
}

// Not returns the bitwise complement of the 32-bit pattern of a.
func Not(a Word) int64 {
	return int64(Word(^uint32(a)))
}
