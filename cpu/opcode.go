package cpu

import (
	"fmt"
)

// Op is an instruction opcode, the top 5 bits of an instruction word.
type Op uint8

const (
	OP_LDI  = Op(1)  // Rdr <- immed
	OP_LD   = Op(2)  // Rdr <- MEM[Rsr1 + immed]
	OP_ST   = Op(4)  // MEM[Rsr1 + immed] <- Rdr
	OP_ADD  = Op(8)  // Rdr <- Rsr1 + Rsr2
	OP_SUB  = Op(9)  // Rdr <- Rsr1 - Rsr2
	OP_AND  = Op(10) // Rdr <- Rsr1 AND Rsr2
	OP_OR   = Op(11) // Rdr <- Rsr1 OR Rsr2
	OP_NOT  = Op(12) // Rdr <- NOT Rsr1
	OP_BR   = Op(16) // PC <- PC + immed
	OP_BRZ  = Op(17) // if Z, PC <- PC + immed
	OP_HALT = Op(29) // stop
	OP_NOP  = Op(0)  // Any opcode not listed above executes as a no-op.
)

var opMnemonic = map[Op]string{
	OP_LDI:  "LDI",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_ADD:  "ADD",
	OP_SUB:  "SUB",
	OP_AND:  "AND",
	OP_OR:   "OR",
	OP_NOT:  "NOT",
	OP_BR:   "BR",
	OP_BRZ:  "BRZ",
	OP_HALT: "HALT",
}

// Known returns true if the opcode is part of the instruction set.
func (op Op) Known() bool {
	_, ok := opMnemonic[op]
	return ok
}

// String returns the mnemonic of the opcode, "NOP" if unrecognized.
func (op Op) String() string {
	if !op.Known() {
		return "NOP"
	}
	return opMnemonic[op]
}

// Format is an instruction layout variant:
//
//   - F1: dr, 23-bit immed
//   - F2: dr, sr1, 19-bit immed
//   - F3: dr, sr1, sr2
//   - F4: 27-bit immed
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_1 = Format(1) // F1
	FORMAT_2 = Format(2) // F2
	FORMAT_3 = Format(3) // F3
	FORMAT_4 = Format(4) // F4
)

// Field positions, counted from the most significant bit.
const (
	OP_BITS  = 5
	REG_BITS = 4

	DR_FROM  = 5
	SR1_FROM = 9
	SR2_FROM = 13

	IMM_F1_FROM = 9
	IMM_F1_BITS = WORD_BITS - IMM_F1_FROM // 23
	IMM_F2_FROM = 13
	IMM_F2_BITS = WORD_BITS - IMM_F2_FROM // 19
	IMM_F4_FROM = 5
	IMM_F4_BITS = WORD_BITS - IMM_F4_FROM // 27
)

// FormatOf returns the instruction format used by an opcode.
func FormatOf(op Op) Format {
	switch op {
	case OP_LDI:
		return FORMAT_1
	case OP_LD, OP_ST, OP_NOT:
		return FORMAT_2
	case OP_ADD, OP_SUB, OP_AND, OP_OR:
		return FORMAT_3
	default:
		return FORMAT_4
	}
}

// ImmediateBits returns the width of the immediate field of a format,
// or 0 if the format has none.
func (format Format) ImmediateBits() uint {
	switch format {
	case FORMAT_1:
		return IMM_F1_BITS
	case FORMAT_2:
		return IMM_F2_BITS
	case FORMAT_4:
		return IMM_F4_BITS
	default:
		return 0
	}
}

// Instruction is a decoded instruction word. Fields that the format does
// not define are left zero.
type Instruction struct {
	Op     Op
	Format Format
	Dr     uint8
	Sr1    uint8
	Sr2    uint8
	Immed  int32
}

// Decode splits a raw instruction word into its fields. Decoding never
// fails; unknown opcodes select FORMAT_4.
func Decode(raw Word) (inst Instruction) {
	ir := uint32(raw)

	inst.Op = Op(field(ir, 0, OP_BITS))
	inst.Format = FormatOf(inst.Op)

	switch inst.Format {
	case FORMAT_1:
		inst.Dr = uint8(field(ir, DR_FROM, REG_BITS))
		inst.Immed = SignExtend(field(ir, IMM_F1_FROM, IMM_F1_BITS), IMM_F1_BITS)
	case FORMAT_2:
		inst.Dr = uint8(field(ir, DR_FROM, REG_BITS))
		inst.Sr1 = uint8(field(ir, SR1_FROM, REG_BITS))
		inst.Immed = SignExtend(field(ir, IMM_F2_FROM, IMM_F2_BITS), IMM_F2_BITS)
	case FORMAT_3:
		inst.Dr = uint8(field(ir, DR_FROM, REG_BITS))
		inst.Sr1 = uint8(field(ir, SR1_FROM, REG_BITS))
		inst.Sr2 = uint8(field(ir, SR2_FROM, REG_BITS))
	case FORMAT_4:
		inst.Immed = SignExtend(field(ir, IMM_F4_FROM, IMM_F4_BITS), IMM_F4_BITS)
	}

	return
}

// place positions an n bit value with its MSB at bit 'from'.
func place(value uint32, from, n uint) uint32 {
	return (value & (1<<n - 1)) << (WORD_BITS - from - n)
}

// ImmediateFits returns true if value is representable in an n bit
// two's-complement field.
func ImmediateFits(value int64, n uint) bool {
	return value >= -(int64(1)<<(n-1)) && value < int64(1)<<(n-1)
}

// MakeCodeF1 encodes a format 1 instruction.
func MakeCodeF1(op Op, dr uint8, immed int32) Word {
	return Word(place(uint32(op), 0, OP_BITS) |
		place(uint32(dr), DR_FROM, REG_BITS) |
		place(uint32(immed), IMM_F1_FROM, IMM_F1_BITS))
}

// MakeCodeF2 encodes a format 2 instruction.
func MakeCodeF2(op Op, dr, sr1 uint8, immed int32) Word {
	return Word(place(uint32(op), 0, OP_BITS) |
		place(uint32(dr), DR_FROM, REG_BITS) |
		place(uint32(sr1), SR1_FROM, REG_BITS) |
		place(uint32(immed), IMM_F2_FROM, IMM_F2_BITS))
}

// MakeCodeF3 encodes a format 3 instruction.
func MakeCodeF3(op Op, dr, sr1, sr2 uint8) Word {
	return Word(place(uint32(op), 0, OP_BITS) |
		place(uint32(dr), DR_FROM, REG_BITS) |
		place(uint32(sr1), SR1_FROM, REG_BITS) |
		place(uint32(sr2), SR2_FROM, REG_BITS))
}

// MakeCodeF4 encodes a format 4 instruction.
func MakeCodeF4(op Op, immed int32) Word {
	return Word(place(uint32(op), 0, OP_BITS) |
		place(uint32(immed), IMM_F4_FROM, IMM_F4_BITS))
}

// MakeCodeLdi creates a LDI instruction: Rdr <- immed.
func MakeCodeLdi(dr uint8, immed int32) Word {
	return MakeCodeF1(OP_LDI, dr, immed)
}

// MakeCodeLd creates a LD instruction: Rdr <- MEM[Rsr1 + immed].
func MakeCodeLd(dr, sr1 uint8, immed int32) Word {
	return MakeCodeF2(OP_LD, dr, sr1, immed)
}

// MakeCodeSt creates a ST instruction: MEM[Rsr1 + immed] <- Rdr.
func MakeCodeSt(dr, sr1 uint8, immed int32) Word {
	return MakeCodeF2(OP_ST, dr, sr1, immed)
}

// MakeCodeNot creates a NOT instruction: Rdr <- NOT Rsr1.
func MakeCodeNot(dr, sr1 uint8) Word {
	return MakeCodeF2(OP_NOT, dr, sr1, 0)
}

// MakeCodeAlu creates an ADD, SUB, AND or OR instruction.
func MakeCodeAlu(op Op, dr, sr1, sr2 uint8) Word {
	return MakeCodeF3(op, dr, sr1, sr2)
}

// MakeCodeBranch creates a BR or BRZ instruction, relative to the
// incremented PC.
func MakeCodeBranch(op Op, offset int32) Word {
	return MakeCodeF4(op, offset)
}

// MakeCodeHalt creates a HALT instruction.
func MakeCodeHalt() Word {
	return MakeCodeF4(OP_HALT, 0)
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() (out string) {
	switch inst.Format {
	case FORMAT_1:
		out = fmt.Sprintf("%v R%d %d", inst.Op, inst.Dr, inst.Immed)
	case FORMAT_2:
		if inst.Op == OP_NOT {
			out = fmt.Sprintf("%v R%d R%d", inst.Op, inst.Dr, inst.Sr1)
		} else {
			out = fmt.Sprintf("%v R%d R%d %d", inst.Op, inst.Dr, inst.Sr1, inst.Immed)
		}
	case FORMAT_3:
		out = fmt.Sprintf("%v R%d R%d R%d", inst.Op, inst.Dr, inst.Sr1, inst.Sr2)
	default:
		switch inst.Op {
		case OP_BR, OP_BRZ:
			out = fmt.Sprintf("%v %d", inst.Op, inst.Immed)
		default:
			out = inst.Op.String()
		}
	}

	return
}
