package cpu

import (
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and
// generated instruction word.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Code      Word
	LinkLabel string
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// ProgramOf creates a program from a memory image, one opcode per word.
// Each word is attributed to source line ip+1, as in a listing.
func ProgramOf(words []Word) (prog *Program) {
	prog = &Program{Opcodes: make([]Opcode, 0, len(words))}
	for ip, code := range words {
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: ip + 1,
			Ip:     ip,
			Words:  strings.Fields(Decode(code).String()),
			Code:   code,
		})
	}

	return
}

// Debug returns the opcode assembled at ip, or nil if there is none.
func (prog *Program) Debug(ip int) (op *Opcode) {
	for n := range prog.Opcodes {
		if prog.Opcodes[n].Ip == ip {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []Word) {
	for ip, code := range prog.Codes() {
		for len(bins) <= ip {
			bins = append(bins, 0)
		}
		bins[ip] = code
	}

	return
}

// Codes iterates over the address and instruction word of each opcode.
func (prog *Program) Codes() iter.Seq2[int, Word] {
	return func(yield func(ip int, code Word) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Ip, op.Code) {
				return
			}
		}
	}
}
