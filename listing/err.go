package listing

import (
	"errors"

	"github.com/ezrec/sc4/translate"
)

var f = translate.From

var (
	ErrInvalidEncoding = errors.New(f("invalid instruction encoding"))
	ErrNotDirectory    = errors.New(f("not a directory"))
)

// ErrSyntax reports a listing line that did not hold a valid
// instruction word.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
