package cpu

import (
	"errors"

	"github.com/ezrec/sc4/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted             = errors.New(f("cpu halted"))
	ErrInvalidProgram     = errors.New(f("program larger than memory"))
	ErrCycleLimit         = errors.New(f("cycle limit reached"))
	ErrAddressOutOfBounds = errors.New(f("memory out of bounds"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOpcodeImm          = errors.New(f("immediate out of range"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
)

// ErrAddress reports an effective address outside of memory.
type ErrAddress int64

func (ea ErrAddress) Error() string {
	return f("memory out of bounds at: %d", int64(ea))
}

func (ea ErrAddress) Unwrap() error {
	return ErrAddressOutOfBounds
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
