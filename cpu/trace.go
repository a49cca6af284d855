package cpu

import (
	"fmt"
)

// Trace records one executed instruction.
type Trace struct {
	Address     Word        // Address the instruction was fetched from.
	IR          Word        // Raw instruction word.
	Instruction Instruction // Decoded instruction.
	Mnemonic    string      // Mnemonic of the executed operation.
	Effect      string      // Symbolic description of the effect.
	Err         error       // Non-fatal execution anomaly, if any.
}

// Binary returns the binary encoding of the instruction.
func (trace Trace) Binary() string {
	return trace.IR.Bits()
}

// String renders the trace as a register transfer line.
func (trace Trace) String() string {
	return fmt.Sprintf(" RTL: (%v) %v     Binary: %v", trace.Mnemonic, trace.Effect, trace.Binary())
}
