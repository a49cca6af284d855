package cpu

import (
	"math/rand"
)

const (
	REGFILE_SIZE = 16  // Number of general-purpose registers.
	MEMORY_SIZE  = 100 // Number of memory words.
)

// RegisterFile holds the general-purpose registers R0-R15.
type RegisterFile [REGFILE_SIZE]Word

// Memory holds the memory words.
type Memory [MEMORY_SIZE]Word

// Read returns the memory word at addr. ok is false if addr does not
// name a memory word.
func (mem *Memory) Read(addr int64) (value Word, ok bool) {
	if addr < 0 || addr >= int64(len(mem)) {
		return
	}

	return mem[addr], true
}

// Write sets the memory word at addr. ok is false, and nothing is
// written, if addr does not name a memory word.
func (mem *Memory) Write(addr int64, value Word) (ok bool) {
	if addr < 0 || addr >= int64(len(mem)) {
		return
	}

	mem[addr] = value
	return true
}

// randomWords fills a slice with undefined content: pseudo-random values
// in [0, 2^31-1), as an unpowered memory would present.
func randomWords(rng *rand.Rand, words []Word) {
	for n := range words {
		words[n] = Word(rng.Int63n(WORD_MAX))
	}
}
