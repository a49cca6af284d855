// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"github.com/ezrec/sc4/cpu"
	"github.com/ezrec/sc4/translate"
)

var f = translate.From

// ErrRuntime is an execution anomaly, placed at the source line of the
// instruction that raised it. LineNo is 0 when the address has no
// source line.
type ErrRuntime struct {
	LineNo  int
	Address cpu.Word // Address of the instruction.
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("address %d: %v", int32(err.Address), err.Err)
	}
	return f("line %d (address %d): %v", err.LineNo, int32(err.Address), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
