// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/sc4/console"
	"github.com/ezrec/sc4/cpu"
	"github.com/ezrec/sc4/emulator"
	"github.com/ezrec/sc4/listing"
)

func main() {
	var load string
	var compile string
	var save bool
	var output string
	var run bool
	var seed int64
	var maxCycles int
	var verbose bool

	flag.StringVar(&load, "l", "", ".txt listing to load")
	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.BoolVar(&save, "s", false, "Save program as a listing to -o, do not execute")
	flag.StringVar(&output, "o", "-", "Listing output")
	flag.BoolVar(&run, "r", false, "Run to completion, printing each instruction")
	flag.Int64Var(&seed, "seed", 0, "Seed for the power on memory contents (0 for random)")
	flag.IntVar(&maxCycles, "max", 0, "Maximum instruction cycles per run (0 for no limit)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(load) != 0 && len(compile) != 0 {
		log.Fatalf("%v: -l and -c are exclusive", os.Args[0])
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	opts := []cpu.Option{cpu.WithMaxCycles(maxCycles)}
	if seed != 0 {
		opts = append(opts, cpu.WithSeed(seed))
	}

	emu := emulator.NewEmulator(opts...)
	emu.Verbose = verbose

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if len(load) != 0 {
		words, err := listing.Load(listing.DirFS("."), load)
		if errors.Is(err, listing.ErrInvalidEncoding) {
			log.Printf("%v: %v", load, err)
			err = nil
		}
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}

		err = emu.Load(words)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
	}

	if save {
		words := emu.Program.Binary()
		var err error
		if output == "-" {
			err = listing.Write(os.Stdout, words)
		} else {
			err = listing.Save(listing.DirFS("."), output, words)
		}
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if run {
		err := emu.Run(ctx, func(trace cpu.Trace) {
			fmt.Println(trace.String())
			if trace.Err != nil {
				log.Print(trace.Err)
			}
		})
		if err != nil {
			log.Fatal(err)
		}
		console.Monitor(os.Stdout, emu.Cpu.Snapshot())
		return
	}

	// Interactive; Ctrl-C stops a Run command, not the console.
	stop()
	con := console.NewConsole(emu, listing.DirFS("."))
	con.Verbose = verbose
	con.RunContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(ctx, os.Interrupt)
	}

	err := con.Serve(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}
