package cpu

import (
	"fmt"
)

// Snapshot is a copy of the machine state, taken between cycles.
type Snapshot struct {
	Register RegisterFile
	Memory   Memory

	PC   Word
	IR   Word
	MAR  Word
	MDR  Word
	AluA Word
	AluB Word
	AluR Word
	SW   uint32

	Flags       Flags
	State       Macrostate
	Microstate  Microstate
	Instruction Instruction
	Cycles      int
}

// Snapshot returns a read-only copy of the machine state.
func (cpu *Cpu) Snapshot() Snapshot {
	return Snapshot{
		Register:    cpu.register,
		Memory:      cpu.memory,
		PC:          cpu.pc,
		IR:          cpu.ir,
		MAR:         cpu.mar,
		MDR:         cpu.mdr,
		AluA:        cpu.aluA,
		AluB:        cpu.aluB,
		AluR:        cpu.aluR,
		SW:          cpu.sw,
		Flags:       FlagsOf(cpu.sw),
		State:       cpu.state,
		Microstate:  cpu.microstate,
		Instruction: cpu.inst,
		Cycles:      cpu.cycles,
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return cpu.Snapshot().String()
}

// String returns the datapath and register file as a string.
func (snap Snapshot) String() (text string) {
	regs := []struct {
		name  string
		value string
	}{
		{"state", snap.State.String()},
		{"pc", snap.PC.Hex()},
		{"ir", snap.IR.Hex()},
		{"mar", snap.MAR.Hex()},
		{"mdr", snap.MDR.Hex()},
		{"alu.a", snap.AluA.Hex()},
		{"alu.b", snap.AluB.Hex()},
		{"alu.r", snap.AluR.Hex()},
		{"sw", fmt.Sprintf("%08X", snap.SW)},
		{"cc", snap.Flags.String()},
	}
	for _, reg := range regs {
		text += fmt.Sprintf("% 6s: %v\n", reg.name, reg.value)
	}
	for n, val := range snap.Register {
		text += fmt.Sprintf("% 6s: %v\n", fmt.Sprintf("r%d", n), val.Hex())
	}

	return
}
