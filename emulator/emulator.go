// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/sc4/cpu"
)

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
}

// NewEmulator creates a new emulator.
func NewEmulator(opts ...cpu.Option) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(opts...),
		Program: &cpu.Program{},
	}

	return
}

// Assemble compiles assembly source into the program, and loads it.
// On error the emulator is left as it was.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	return emu.install(prog)
}

// Load uses a memory image as the program, and loads it. On error the
// emulator is left as it was.
func (emu *Emulator) Load(words []cpu.Word) (err error) {
	return emu.install(cpu.ProgramOf(words))
}

// install checks that prog fits in memory before making it the current
// program. The register file and the memory past the program keep their
// contents; the control unit restarts at address 0.
func (emu *Emulator) install(prog *cpu.Program) (err error) {
	binary := prog.Binary()
	if len(binary) > cpu.MEMORY_SIZE {
		err = errors.Join(cpu.ErrInvalidProgram, fmt.Errorf("%d > %d", len(binary), cpu.MEMORY_SIZE))
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Program = prog

	emu.Cpu.Reset()

	return emu.Cpu.LoadProgram(binary)
}

// Reset the machine to power on state, with the program in memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.ResetMemory()

	if emu.Program == nil {
		emu.Program = &cpu.Program{}
	}

	return emu.Cpu.LoadProgram(emu.Program.Binary())
}

// lineOf returns the source line of the opcode at an address, or 0.
func (emu *Emulator) lineOf(addr cpu.Word) int {
	op := emu.Program.Debug(int(addr))
	if op == nil {
		return 0
	}

	return op.LineNo
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.lineOf(emu.Cpu.PC())
}

// annotate places the source line on a trace's execution anomaly.
func (emu *Emulator) annotate(trace *cpu.Trace) {
	if trace.Err == nil {
		return
	}

	lineno := emu.lineOf(trace.Address)
	trace.Err = &ErrRuntime{LineNo: lineno, Address: trace.Address, Err: trace.Err}

	if emu.Verbose {
		logrus.WithFields(logrus.Fields{
			"line":    lineno,
			"address": int32(trace.Address),
		}).Warn(trace.Effect)
	}
}

// Tick performs a single instruction cycle of the emulator. An execution
// anomaly is returned as an *ErrRuntime; the machine may be ticked again.
// done is set once the machine has halted.
func (emu *Emulator) Tick() (trace cpu.Trace, done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	trace, err = emu.Cpu.Step()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	emu.annotate(&trace)
	err = trace.Err
	done = emu.Cpu.Halted()

	return
}

// Run the machine until it halts, calling fn (if not nil) with each
// trace. Execution anomalies do not stop the run; they are reported in
// the traces.
func (emu *Emulator) Run(ctx context.Context, fn func(trace cpu.Trace)) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	return emu.Cpu.RunFunc(ctx, func(trace cpu.Trace) {
		emu.annotate(&trace)
		if fn != nil {
			fn(trace)
		}
	})
}
