package emulator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sc4/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(0, emu.LineNo())
}

func newEmulator(t *testing.T, program []string) (emu *Emulator) {
	assert := assert.New(t)

	emu = NewEmulator(cpu.WithRegisters(cpu.RegisterFile{}), cpu.WithMemory(nil))
	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func doRunSingle(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	for _, op := range emu.Program.Opcodes {
		assert.Equal(op.LineNo, emu.LineNo())
		here := program[emu.LineNo()-1]
		assert.Equal(cpu.Word(op.Ip), emu.Cpu.PC(), here)
		trace, done, err := emu.Tick()
		assert.NoError(err, here)
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
		assert.Equal(op.Code, trace.IR, here)
		assert.Equal(cpu.Decode(op.Code).Op == cpu.OP_HALT, done, here)
	}

	_, done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorRegisters(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ CONST_10 0x10",
		"ldi r0 CONST_10",               // r0
		"ldi r1 $(CONST_10 + CONST_10)", // r1
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"ldi r2 CONST_30",
		"ldi r3 $(LINENO * 8 + 0x10)", // r3
		"halt",
	}

	emu := newEmulator(t, program)
	doRunSingle(emu, program, t)

	regs := emu.Cpu.Snapshot().Register
	assert.Equal(cpu.Word(0x10), regs[0])
	assert.Equal(cpu.Word(0x20), regs[1])
	assert.Equal(cpu.Word(0x30), regs[2])
	assert.Equal(cpu.Word(0x40), regs[3])
}

func TestEmulatorAlu(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ldi r1 0x10",
		"ldi r2 1",
		"add r1 r1 r2", // r1 = 0x11
		"sub r0 r0 r1", // r0 = -0x11
		"ldi r3 0xf0",
		"and r4 r3 r1", // r4 = 0x10
		"or r5 r3 r1",  // r5 = 0xf1
		"not r6 r5",    // r6 = ^0xf1
		"halt",
	}

	emu := newEmulator(t, program)
	doRunSingle(emu, program, t)

	snap := emu.Cpu.Snapshot()
	assert.Equal(cpu.Word(-0x11), snap.Register[0])
	assert.Equal(cpu.Word(0x11), snap.Register[1])
	assert.Equal(cpu.Word(0x10), snap.Register[4])
	assert.Equal(cpu.Word(0xf1), snap.Register[5])
	assert.Equal(cpu.Word(^0xf1), snap.Register[6])
	assert.True(snap.Flags.Negative)
}

func TestEmulatorLabel(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ N 5",
		"      ldi r1 N  ; counter",
		"      ldi r2 0  ; sum",
		"      ldi r3 1",
		"      ldi r4 0",
		"loop: add r2 r2 r1",
		"      sub r1 r1 r3",
		"      brz done",
		"      br loop",
		"done: st r2 r4 50",
		"      halt",
	}

	emu := newEmulator(t, program)

	var lines []int
	var traces []cpu.Trace
	err := emu.Run(context.Background(), func(trace cpu.Trace) {
		traces = append(traces, trace)
		lines = append(lines, emu.Program.Debug(int(trace.Address)).LineNo)
	})
	assert.NoError(err)

	assert.Len(traces, 25)
	assert.Equal([]int{2, 3, 4, 5, 6, 7, 8, 9, 6}, lines[:9])
	assert.Equal([]int{8, 10, 11}, lines[len(lines)-3:])

	snap := emu.Cpu.Snapshot()
	assert.Equal(cpu.Word(15), snap.Register[2])
	assert.Equal(cpu.Word(15), snap.Memory[50])
	assert.True(emu.Cpu.Halted())

	// Reset restores the program and starts over.
	err = emu.Reset()
	assert.NoError(err)
	assert.Equal(2, emu.LineNo())
	assert.Equal(cpu.Word(0), emu.Cpu.Snapshot().Memory[50])
	assert.False(emu.Cpu.Halted())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ldi r0 7",
		"ld r0 r0 150",
		"ldi r1 1",
		"halt",
	}

	emu := newEmulator(t, program)

	_, done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	trace, done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, cpu.ErrAddressOutOfBounds)
	var re *ErrRuntime
	assert.True(errors.As(err, &re))
	assert.Equal(2, re.LineNo)
	assert.Equal(cpu.Word(1), re.Address)
	assert.Equal("line 2 (address 1): memory out of bounds at: 157", err.Error())
	assert.Equal(err, trace.Err)
	assert.Equal("Error, memory out of bounds at: 157", trace.Effect)

	// The machine carries on.
	_, done, err = emu.Tick()
	assert.NoError(err)
	assert.False(done)
	_, done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)

	snap := emu.Cpu.Snapshot()
	assert.Equal(cpu.Word(7), snap.Register[0])
	assert.Equal(cpu.Word(1), snap.Register[1])

	// Run reports the anomaly in the trace only.
	err = emu.Reset()
	assert.NoError(err)
	var anomalies []error
	err = emu.Run(context.Background(), func(trace cpu.Trace) {
		if trace.Err != nil {
			anomalies = append(anomalies, trace.Err)
		}
	})
	assert.NoError(err)
	assert.Len(anomalies, 1)
	assert.True(errors.As(anomalies[0], &re))
	assert.Equal(2, re.LineNo)
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.WithSeed(42))
	emu.Verbose = true

	err := emu.Load([]cpu.Word{0x08000005, cpu.MakeCodeHalt()})
	assert.NoError(err)
	assert.Equal(1, emu.LineNo())

	err = emu.Run(context.Background(), nil)
	assert.NoError(err)
	assert.Equal(cpu.Word(5), emu.Cpu.Snapshot().Register[0])
	assert.Equal(2, emu.Cpu.Cycles())

	// Loading again keeps the register file and restarts at address 0.
	err = emu.Load([]cpu.Word{cpu.MakeCodeHalt()})
	assert.NoError(err)
	snap := emu.Cpu.Snapshot()
	assert.Equal(cpu.Word(5), snap.Register[0])
	assert.Equal(cpu.Word(0), snap.PC)
	assert.Equal(cpu.MakeCodeHalt(), snap.Memory[0])
	assert.Equal(cpu.MakeCodeHalt(), snap.Memory[1])
	assert.Equal(0, snap.Cycles)
	assert.False(emu.Cpu.Halted())
}

func TestEmulatorLoadTooLarge(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.WithSeed(7))

	err := emu.Load([]cpu.Word{0x08000005, cpu.MakeCodeHalt()})
	assert.NoError(err)
	prog := emu.Program
	before := emu.Cpu.Snapshot()

	err = emu.Load(make([]cpu.Word, cpu.MEMORY_SIZE+1))
	assert.ErrorIs(err, cpu.ErrInvalidProgram)
	assert.Same(prog, emu.Program)
	assert.Equal(before, emu.Cpu.Snapshot())

	source := strings.Repeat("nop\n", cpu.MEMORY_SIZE+1)
	err = emu.Assemble(strings.NewReader(source))
	assert.ErrorIs(err, cpu.ErrInvalidProgram)
	assert.Same(prog, emu.Program)
	assert.Equal(before, emu.Cpu.Snapshot())

	// The previous program still resets and runs.
	err = emu.Reset()
	assert.NoError(err)
	err = emu.Run(context.Background(), nil)
	assert.NoError(err)
	assert.Equal(cpu.Word(5), emu.Cpu.Snapshot().Register[0])
	assert.True(emu.Cpu.Halted())
}

func TestEmulatorCancel(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, []string{"spin: br spin"})

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := emu.Run(ctx, func(trace cpu.Trace) {
		count++
		if count == 5 {
			cancel()
		}
	})
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(5, count)
	assert.Equal(1, emu.LineNo())
}

func TestErrRuntime(t *testing.T) {
	assert := assert.New(t)

	err := &ErrRuntime{Address: 42, Err: cpu.ErrAddress(-3)}
	assert.Equal("address 42: memory out of bounds at: -3", err.Error())
	assert.ErrorIs(err, cpu.ErrAddressOutOfBounds)
}
