// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Cpu is the simulation context for the SC4 control unit and datapath.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	register RegisterFile // General-purpose registers.
	memory   Memory       // Main memory.

	state      Macrostate // Current macrostate.
	microstate Microstate // Current Fetch microstate.

	pc   Word   // Program counter.
	ir   Word   // Instruction register.
	mar  Word   // Memory address register.
	mdr  Word   // Memory data register.
	aluA Word   // ALU A input.
	aluB Word   // ALU B input.
	aluR Word   // ALU result.
	sw   uint32 // Status word, holding the condition codes as last set.

	inst Instruction // Instruction decoded from IR.

	cycles    int // Completed instruction cycles since reset.
	maxCycles int // Run() cycle bound, 0 for none.

	fixedRegister *RegisterFile
	fixedMemory   []Word

	rng *rand.Rand
	log logrus.FieldLogger
}

// Option configures a new Cpu.
type Option func(cpu *Cpu)

// WithRegisters sets the initial register file contents instead of
// random values.
func WithRegisters(regs RegisterFile) Option {
	return func(cpu *Cpu) {
		cpu.fixedRegister = &regs
	}
}

// WithMemory sets the initial memory contents, starting at address 0,
// instead of random values. Memory past the supplied words is zero.
func WithMemory(words []Word) Option {
	return func(cpu *Cpu) {
		cpu.fixedMemory = append([]Word{}, words...)
	}
}

// WithRand sets the source of the random power-on contents.
func WithRand(rng *rand.Rand) Option {
	return func(cpu *Cpu) {
		cpu.rng = rng
	}
}

// WithSeed makes the random power-on contents reproducible.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithMaxCycles bounds the number of cycles a single Run() may execute.
// A value of 0 means no limit.
func WithMaxCycles(max int) Option {
	return func(cpu *Cpu) {
		cpu.maxCycles = max
	}
}

// WithLogger sets the logger used when Verbose is set.
func WithLogger(log logrus.FieldLogger) Option {
	return func(cpu *Cpu) {
		cpu.log = log
	}
}

// NewCpu creates a new CPU. Unless fixtures are supplied, the register
// file and memory hold undefined (random) values, as the hardware would
// at power on.
func NewCpu(opts ...Option) (cpu *Cpu) {
	cpu = &Cpu{}

	for _, opt := range opts {
		opt(cpu)
	}

	if cpu.rng == nil {
		cpu.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if cpu.log == nil {
		cpu.log = logrus.StandardLogger()
	}

	cpu.ResetMemory()

	return
}

// ResetMemory restores the power-on contents of the register file and
// memory, and resets the control unit.
func (cpu *Cpu) ResetMemory() {
	if cpu.fixedRegister != nil {
		cpu.register = *cpu.fixedRegister
	} else {
		randomWords(cpu.rng, cpu.register[:])
	}

	if cpu.fixedMemory != nil {
		clear(cpu.memory[:])
		copy(cpu.memory[:], cpu.fixedMemory)
	} else {
		randomWords(cpu.rng, cpu.memory[:])
	}

	cpu.Reset()
}

// Reset the control unit.
// - Zeros the datapath registers and the status word.
// - Returns to the first Fetch microstate.
// - Zeros the cycle counter.
//
// The register file and memory are left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		cpu.log.Debug("cpu: reset")
	}

	cpu.state = FETCH
	cpu.microstate = IFETCH1

	cpu.pc = 0
	cpu.ir = 0
	cpu.mar = 0
	cpu.mdr = 0
	cpu.aluA = 0
	cpu.aluB = 0
	cpu.aluR = 0
	cpu.sw = 0

	cpu.inst = Instruction{}
	cpu.cycles = 0
}

// LoadProgram copies a program into memory starting at address 0, and
// restarts execution from there. Memory past the program is untouched.
func (cpu *Cpu) LoadProgram(words []Word) (err error) {
	if len(words) > len(cpu.memory) {
		err = errors.Join(ErrInvalidProgram, fmt.Errorf("%d > %d", len(words), len(cpu.memory)))
		return
	}

	copy(cpu.memory[:], words)

	cpu.pc = 0
	cpu.state = FETCH
	cpu.microstate = IFETCH1

	if cpu.Verbose {
		cpu.log.WithField("words", len(words)).Debug("cpu: program loaded")
	}

	return
}

// State returns the current macrostate.
func (cpu *Cpu) State() Macrostate {
	return cpu.state
}

// Halted returns true once the control unit has reached HALT.
func (cpu *Cpu) Halted() bool {
	return cpu.state == HALT
}

// PC returns the program counter.
func (cpu *Cpu) PC() Word {
	return cpu.pc
}

// Cycles returns the number of instruction cycles completed since reset.
func (cpu *Cpu) Cycles() int {
	return cpu.cycles
}

// Step advances exactly one Fetch, Decode, Execute cycle and returns the
// trace of the executed instruction. Once halted, Step changes nothing
// and returns ErrHalted.
func (cpu *Cpu) Step() (trace Trace, err error) {
	for {
		switch cpu.state {
		case FETCH:
			cpu.fetch()
		case DECODE:
			cpu.decode()
		case EXECUTE:
			trace = cpu.execute()
			cpu.cycles++
			if cpu.Verbose {
				cpu.log.WithFields(logrus.Fields{
					"pc":    fmt.Sprintf("%02d", trace.Address),
					"ir":    trace.IR.Hex(),
					"op":    trace.Mnemonic,
					"sw":    fmt.Sprintf("%08X", cpu.sw),
					"cycle": cpu.cycles,
				}).Debug(trace.Effect)
			}
			return
		default:
			err = ErrHalted
			return
		}
	}
}

// RunFunc steps until HALT, calling fn with each trace. Cancellation of
// ctx is checked between cycles only.
func (cpu *Cpu) RunFunc(ctx context.Context, fn func(trace Trace)) (err error) {
	for cycles := 0; ; cycles++ {
		err = ctx.Err()
		if err != nil {
			return
		}

		if cpu.maxCycles > 0 && cycles >= cpu.maxCycles && !cpu.Halted() {
			err = ErrCycleLimit
			return
		}

		var trace Trace
		trace, err = cpu.Step()
		if errors.Is(err, ErrHalted) {
			err = nil
			return
		}

		if fn != nil {
			fn(trace)
		}
	}
}

// Run steps until HALT, and returns the traces of every executed
// instruction.
func (cpu *Cpu) Run(ctx context.Context) (traces []Trace, err error) {
	err = cpu.RunFunc(ctx, func(trace Trace) {
		traces = append(traces, trace)
	})

	return
}

// fetchMicrocode is the Fetch microstate sequence. Each entry performs
// its register transfers and names the next microstate.
var fetchMicrocode = [...]func(cpu *Cpu) Microstate{
	IFETCH1: func(cpu *Cpu) Microstate {
		cpu.mar = cpu.pc
		cpu.aluA = cpu.pc
		return IFETCH2
	},
	IFETCH2: func(cpu *Cpu) Microstate {
		cpu.ir = cpu.memory[cpu.mar]
		return IFETCH3
	},
	IFETCH3: func(cpu *Cpu) Microstate {
		cpu.pc = Truncate32(Add(cpu.aluA, 1))
		return IFETCH4
	},
	IFETCH4: func(cpu *Cpu) Microstate {
		cpu.state = DECODE
		return MICROSTATE_EXIT
	},
}

// fetch runs the Fetch microstates. A PC outside of memory halts the
// machine.
func (cpu *Cpu) fetch() {
	cpu.microstate = IFETCH1

	if cpu.pc < 0 || int(cpu.pc) >= len(cpu.memory) {
		cpu.state = HALT
		cpu.microstate = MICROSTATE_EXIT
	}

	for cpu.microstate != MICROSTATE_EXIT {
		cpu.microstate = fetchMicrocode[cpu.microstate](cpu)
	}
}

// decode splits IR into the instruction fields.
func (cpu *Cpu) decode() {
	cpu.inst = Decode(cpu.ir)
	cpu.state = EXECUTE
}

// setCC sets the condition codes and status word from a wide ALU result,
// and returns the result truncated for storage.
func (cpu *Cpu) setCC(result int64) Word {
	cpu.sw = DeriveFlags(result).StatusWord()

	return Truncate32(result)
}

// effectiveAddress computes Rsr1 + immed through the ALU. ok is false if
// the address fails the memory bound check.
func (cpu *Cpu) effectiveAddress(inst Instruction) (addr int64, ok bool) {
	cpu.aluA = cpu.register[inst.Sr1]
	cpu.aluB = Word(inst.Immed)
	cpu.aluR = Truncate32(Add(cpu.aluA, cpu.aluB))

	addr = int64(cpu.aluR)
	// An address equal to the memory size passes the check.
	ok = !(addr > int64(len(cpu.memory)) || addr < 0)

	return
}

// branch sets PC to the incremented PC plus the offset.
func (cpu *Cpu) branch(offset int32) {
	cpu.aluA = cpu.pc
	cpu.aluB = Word(offset)
	cpu.aluR = Truncate32(Add(cpu.aluA, cpu.aluB))
	cpu.pc = cpu.aluR
}

// execute performs the decoded instruction, and returns its trace.
func (cpu *Cpu) execute() (trace Trace) {
	inst := cpu.inst
	reg := &cpu.register

	trace = Trace{
		Address:     cpu.mar,
		IR:          cpu.ir,
		Instruction: inst,
		Mnemonic:    inst.Op.String(),
	}

	switch inst.Op {
	case OP_LDI:
		trace.Effect = fmt.Sprintf("R%d <- %d", inst.Dr, inst.Immed)
		reg[inst.Dr] = Word(inst.Immed)
	case OP_LD:
		addr, ok := cpu.effectiveAddress(inst)
		if !ok {
			trace.Effect = fmt.Sprintf("Error, memory out of bounds at: %d", addr)
			trace.Err = ErrAddress(addr)
			break
		}
		trace.Effect = fmt.Sprintf("R%d <- MEM[R%d + %d]", inst.Dr, inst.Sr1, inst.Immed)
		value, ok := cpu.memory.Read(addr)
		if ok {
			reg[inst.Dr] = value
		}
	case OP_ST:
		addr, ok := cpu.effectiveAddress(inst)
		if !ok {
			trace.Effect = fmt.Sprintf("Error, memory out of bounds at: %d", addr)
			trace.Err = ErrAddress(addr)
			break
		}
		trace.Effect = fmt.Sprintf("MEM[R%d + %d] <- R%d", inst.Sr1, inst.Immed, inst.Dr)
		cpu.memory.Write(addr, reg[inst.Dr])
	case OP_ADD:
		trace.Effect = fmt.Sprintf("R%d <- R%d + R%d", inst.Dr, inst.Sr1, inst.Sr2)
		cpu.aluA = reg[inst.Sr1]
		cpu.aluB = reg[inst.Sr2]
		cpu.aluR = cpu.setCC(Add(cpu.aluA, cpu.aluB))
		reg[inst.Dr] = cpu.aluR
	case OP_SUB:
		cpu.sw = 0
		trace.Effect = fmt.Sprintf("R%d <- R%d - R%d", inst.Dr, inst.Sr1, inst.Sr2)
		cpu.aluA = reg[inst.Sr1]
		cpu.aluB = reg[inst.Sr2]
		cpu.aluR = cpu.setCC(Sub(cpu.aluA, cpu.aluB))
		reg[inst.Dr] = cpu.aluR
	case OP_AND:
		trace.Effect = fmt.Sprintf("R%d <- R%d AND R%d", inst.Dr, inst.Sr1, inst.Sr2)
		cpu.aluA = reg[inst.Sr1]
		cpu.aluB = reg[inst.Sr2]
		cpu.aluR = cpu.setCC(And(cpu.aluA, cpu.aluB))
		reg[inst.Dr] = cpu.aluR
	case OP_OR:
		trace.Effect = fmt.Sprintf("R%d <- R%d OR R%d", inst.Dr, inst.Sr1, inst.Sr2)
		cpu.aluA = reg[inst.Sr1]
		cpu.aluB = reg[inst.Sr2]
		cpu.aluR = cpu.setCC(Or(cpu.aluA, cpu.aluB))
		reg[inst.Dr] = cpu.aluR
	case OP_NOT:
		trace.Effect = fmt.Sprintf("R%d <- NOT R%d", inst.Dr, inst.Sr1)
		cpu.aluA = reg[inst.Sr1]
		cpu.aluR = cpu.setCC(Not(cpu.aluA))
		reg[inst.Dr] = cpu.aluR
	case OP_BR:
		trace.Effect = fmt.Sprintf("PC <- iterated PC + %d", inst.Immed)
		cpu.branch(inst.Immed)
	case OP_BRZ:
		if FlagsOf(cpu.sw).Zero {
			trace.Effect = fmt.Sprintf("PC <- iterated PC + %d", inst.Immed)
			cpu.branch(inst.Immed)
		} else {
			trace.Effect = "Did not branch"
		}
	case OP_HALT:
		trace.Effect = "Halting Program..."
		cpu.state = HALT
	default:
		trace.Effect = "No operation"
		if cpu.Verbose && inst.Op != OP_NOP {
			cpu.log.WithField("op", int(inst.Op)).Debug("cpu: unknown opcode")
		}
	}

	if cpu.state != HALT {
		cpu.state = FETCH
	}

	return
}
