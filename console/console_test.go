package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sc4/cpu"
	"github.com/ezrec/sc4/emulator"
	"github.com/ezrec/sc4/listing"
)

func newConsole(t *testing.T, files map[string]string) (con *Console, dir string) {
	dir = t.TempDir()
	for name, text := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	emu := emulator.NewEmulator(cpu.WithRegisters(cpu.RegisterFile{}), cpu.WithMemory(nil))
	con = NewConsole(emu, listing.DirFS(dir))

	return
}

func serve(t *testing.T, con *Console, commands ...string) string {
	output := &bytes.Buffer{}
	input := strings.NewReader(strings.Join(commands, "\n") + "\n")

	err := con.Serve(context.Background(), input, output)
	assert.NoError(t, err)

	return output.String()
}

func TestMonitor(t *testing.T) {
	assert := assert.New(t)

	snap := cpu.Snapshot{}
	snap.Register[0] = 5
	snap.Register[15] = -1
	snap.Memory[0] = 0x08000005
	snap.Memory[1] = cpu.MakeCodeHalt()
	snap.PC = 2
	snap.IR = cpu.MakeCodeHalt()
	snap.SW = cpu.SW_ZERO
	snap.MAR = 1
	snap.AluR = 0x10

	buff := &bytes.Buffer{}
	err := Monitor(buff, snap)
	assert.NoError(err)

	lines := strings.Split(buff.String(), "\n")
	assert.Equal("  Debug Monitor", lines[0])
	assert.Equal(" Register File                  Memory Dump", lines[1])
	assert.Equal(" 0: 00000005                 00000000: 08000005", lines[2])
	assert.Equal(" 1: 00000000                 00000001: E8000000", lines[3])
	assert.Equal(" F: FFFFFFFF                 0000000F: 00000000", lines[17])
	assert.Equal("", lines[18])
	assert.Equal(" PC: 00000002  IR: E8000000 SW: 80000000", lines[19])
	assert.Equal(" MAR: 00000001 MDR: 00000000 ALU.A: 00000000 ALU.B: 00000000 ALU.R: 00000010", lines[20])
}

func TestConsoleExit(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, nil)

	out := serve(t, con, "bogus", "9", "2")
	assert.Contains(out, "  Debug Monitor\n")
	assert.Contains(out, " Please enter a valid command.\n")
	assert.Contains(out, " (EXIT) Terminating Console...\n")
	// Nothing runs after Exit.
	assert.NotContains(out, "RTL:")

	// End of input also ends the console.
	out = serve(t, con)
	assert.Contains(out, " Commands: 1=Load, 2=Step, 3=Run, 4=Memory, 5=Save, 9=Exit    Enter: ")
}

func TestConsoleLoadStep(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, map[string]string{
		"prog.txt": "0:08000005\n1:E8000000\n",
	})

	out := serve(t, con, "1", "prog", "2", "2", "2", "9")
	assert.Contains(out, " Enter name of file to load: ")
	assert.Contains(out, " 0: 00000000                 00000000: 08000005\n")
	assert.Contains(out, " RTL: (LDI) R0 <- 5     Binary: 00001000000000000000000000000101\n")
	assert.Contains(out, " 0: 00000005                 00000000: 08000005\n")
	assert.Contains(out, " RTL: (HALT) Halting Program...     Binary: 11101000000000000000000000000000\n")
	assert.Contains(out, " Program halted.\n")

	snap := con.Emulator.Cpu.Snapshot()
	assert.Equal(cpu.Word(5), snap.Register[0])
	assert.True(con.Emulator.Cpu.Halted())
}

func TestConsoleLoadInvalid(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, map[string]string{
		"bad.txt":  "0:08000005\n1:nothex\n2:E8000000\n",
		"long.txt": strings.Repeat("0:00000000\n", cpu.MEMORY_SIZE+1),
	})

	out := serve(t, con, "1", "missing", "1", "long.txt", "1", "bad", "3", "9")
	assert.Equal(2, strings.Count(out, " Error, invalid file!\n"))
	assert.Contains(out, "line 2 '1:nothex'")
	assert.Contains(out, " RTL: (NOP) No operation")
	assert.Contains(out, " Program halted.\n")
	assert.Equal(cpu.Word(5), con.Emulator.Cpu.Snapshot().Register[0])
}

func TestConsoleLoadTooLarge(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, map[string]string{
		"prog.txt": "0:08000005\n1:E8000000\n",
		"long.txt": strings.Repeat("0:00000000\n", cpu.MEMORY_SIZE+1),
	})

	out := serve(t, con, "1", "prog", "2", "1", "long", "2", "9")
	assert.Equal(1, strings.Count(out, " Error, invalid file!\n"))
	assert.Contains(out, " RTL: (HALT) Halting Program...")
	assert.Equal(2, len(con.Emulator.Program.Opcodes))

	snap := con.Emulator.Cpu.Snapshot()
	assert.Equal(cpu.Word(5), snap.Register[0])
	assert.Equal(cpu.Word(2), snap.PC)
	assert.True(con.Emulator.Cpu.Halted())
}

func TestConsoleAssemble(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, map[string]string{
		"prog.asm": "ldi r1 7\nst r1 r0 20\nhalt\n",
		"bad.asm":  "ldi r99 7\n",
	})

	out := serve(t, con, "1", "bad.asm", "1", "prog.asm", "3", "9")
	assert.Contains(out, " Error, invalid file!\n")
	assert.Contains(out, " RTL: (ST) MEM[R0 + 20] <- R1")
	assert.Equal(cpu.Word(7), con.Emulator.Cpu.Snapshot().Memory[20])
	assert.Equal(2, con.Emulator.Program.Debug(1).LineNo)
}

func TestConsoleRunInterrupt(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, map[string]string{
		"spin.asm": "spin: br spin\n",
	})

	con.RunContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		return ctx, cancel
	}

	out := serve(t, con, "1", "spin.asm", "3", "9")
	assert.Contains(out, " Run interrupted.\n")
	assert.Contains(out, " (EXIT) Terminating Console...\n")
}

func TestConsoleCycleLimit(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "spin.asm"), []byte("spin: br spin\n"), 0644)
	assert.NoError(err)

	emu := emulator.NewEmulator(cpu.WithSeed(1), cpu.WithMaxCycles(3))
	con := NewConsole(emu, listing.DirFS(dir))

	out := serve(t, con, "1", "spin.asm", "3", "9")
	assert.Equal(3, strings.Count(out, " RTL: (BR) "))
	assert.Contains(out, " cycle limit reached\n")
}

func TestConsoleMemorySave(t *testing.T) {
	assert := assert.New(t)

	con, dir := newConsole(t, map[string]string{
		"prog.txt": "0:08000005\n1:E8000000\n",
	})

	out := serve(t, con, "1", "prog.txt", "4", "5", "copy", "9")
	assert.Contains(out, "cpu.Snapshot{")
	assert.Contains(out, " Saved copy.txt\n")

	data, err := os.ReadFile(filepath.Join(dir, "copy.txt"))
	assert.NoError(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(lines, cpu.MEMORY_SIZE)
	assert.Equal("0:08000005", lines[0])
	assert.Equal("1:E8000000", lines[1])
	assert.Equal("99:00000000", lines[99])

	words, err := listing.Load(listing.DirFS(dir), "copy")
	assert.NoError(err)
	assert.Equal(cpu.MakeCodeHalt(), words[1])
}

func TestConsoleCancel(t *testing.T) {
	assert := assert.New(t)

	con, _ := newConsole(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := con.Serve(ctx, strings.NewReader("2\n"), &bytes.Buffer{})
	assert.ErrorIs(err, context.Canceled)
}
