// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package console is the interactive debug monitor for the SC4.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"

	"github.com/ezrec/sc4/cpu"
	"github.com/ezrec/sc4/emulator"
	"github.com/ezrec/sc4/listing"
	"github.com/ezrec/sc4/translate"
)

// Console commands.
const (
	CMD_LOAD   = "1"
	CMD_STEP   = "2"
	CMD_RUN    = "3"
	CMD_MEMORY = "4"
	CMD_SAVE   = "5"
	CMD_EXIT   = "9"
)

// ASM_EXT is the file name extension of assembly source.
const ASM_EXT = ".asm"

// Console drives an emulator from line oriented commands.
type Console struct {
	Verbose  bool               // If set, logs each command.
	Emulator *emulator.Emulator // Machine under control.
	FS       listing.CreateFS   // Filesystem for Load and Save.

	// RunContext, if set, derives the context of a Run command. The
	// command line uses this to interrupt a run with Ctrl-C.
	RunContext func(ctx context.Context) (context.Context, context.CancelFunc)

	input  *bufio.Scanner
	output io.Writer
}

// NewConsole creates a console for an emulator, loading and saving files
// in filesys.
func NewConsole(emu *emulator.Emulator, filesys listing.CreateFS) *Console {
	return &Console{
		Emulator: emu,
		FS:       filesys,
	}
}

func (con *Console) printf(format string, args ...any) {
	translate.Fprintf(con.output, format, args...)
}

// readLine reads the next trimmed input line. ok is false at end of input.
func (con *Console) readLine() (line string, ok bool) {
	if !con.input.Scan() {
		return
	}

	return strings.TrimSpace(con.input.Text()), true
}

// Serve runs the command loop until the Exit command, the end of input,
// or cancellation of ctx.
func (con *Console) Serve(ctx context.Context, input io.Reader, output io.Writer) (err error) {
	con.input = bufio.NewScanner(input)
	con.output = output

	con.monitor()

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		con.printf("\n Commands: 1=Load, 2=Step, 3=Run, 4=Memory, 5=Save, 9=Exit    Enter: ")
		cmd, ok := con.readLine()
		if !ok {
			err = con.input.Err()
			return
		}
		con.printf("\n")

		if con.Verbose {
			logrus.WithField("command", cmd).Debug("console")
		}

		switch cmd {
		case CMD_LOAD:
			con.load()
		case CMD_STEP:
			con.step()
		case CMD_RUN:
			err = con.run(ctx)
			if err != nil {
				return
			}
		case CMD_MEMORY:
			con.memory()
		case CMD_SAVE:
			con.save()
		case CMD_EXIT:
			con.printf(" (EXIT) Terminating Console...\n")
			return
		default:
			con.printf(" Please enter a valid command.\n")
		}
	}
}

func (con *Console) monitor() {
	Monitor(con.output, con.Emulator.Cpu.Snapshot())
}

// report prints the monitor and the register transfer line of a trace.
func (con *Console) report(trace cpu.Trace) {
	con.monitor()
	con.printf("%v\n", trace.String())
}

func (con *Console) load() {
	con.printf(" Enter name of file to load: ")
	name, ok := con.readLine()
	if !ok {
		return
	}
	con.printf("\n")

	var err error
	if strings.HasSuffix(strings.ToLower(name), ASM_EXT) {
		err = con.assemble(name)
	} else {
		var words []cpu.Word
		words, err = listing.Load(con.FS, name)
		if errors.Is(err, listing.ErrInvalidEncoding) {
			// Invalid lines are loaded as NOPs.
			for _, line := range strings.Split(err.Error(), "\n") {
				con.printf(" %v\n", line)
			}
			err = nil
		}
		if err == nil {
			err = con.Emulator.Load(words)
		}
	}

	if err != nil {
		con.printf(" Error, invalid file!\n")
		if con.Verbose {
			logrus.WithField("file", name).Warn(err)
		}
		return
	}

	con.monitor()
}

func (con *Console) assemble(name string) (err error) {
	file, err := con.FS.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	err = con.Emulator.Assemble(file)
	if err != nil {
		con.printf(" %v\n", err)
	}

	return
}

func (con *Console) step() {
	if con.Emulator.Cpu.Halted() {
		con.printf(" Program halted.\n")
		return
	}

	trace, _, _ := con.Emulator.Tick()
	if len(trace.Mnemonic) == 0 {
		// Fetch ran off the end of memory.
		con.printf(" Program halted.\n")
		return
	}

	con.report(trace)
}

// run executes until HALT. Interrupting the run returns to the command
// prompt; only cancellation of ctx itself is returned.
func (con *Console) run(ctx context.Context) (err error) {
	runCtx := ctx
	if con.RunContext != nil {
		var cancel context.CancelFunc
		runCtx, cancel = con.RunContext(ctx)
		defer cancel()
	}

	err = con.Emulator.Run(runCtx, con.report)
	switch {
	case err == nil:
		con.printf(" Program halted.\n")
	case ctx.Err() != nil:
		return
	case errors.Is(err, context.Canceled):
		con.printf(" Run interrupted.\n")
		err = nil
	default:
		con.printf(" %v\n", err)
		err = nil
	}

	return
}

func (con *Console) memory() {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.Fprintln(con.output, con.Emulator.Cpu.Snapshot())
}

func (con *Console) save() {
	con.printf(" Enter name of file to save: ")
	name, ok := con.readLine()
	if !ok {
		return
	}
	con.printf("\n")

	snap := con.Emulator.Cpu.Snapshot()
	err := listing.Save(con.FS, name, snap.Memory[:])
	if err != nil {
		con.printf(" Error, unable to save %v: %v\n", name, err)
		return
	}

	con.printf(" Saved %v\n", listing.Name(name))
}
