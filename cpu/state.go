package cpu

// Macrostate is a top-level phase of the instruction cycle.
type Macrostate int

//go:generate go tool stringer -linecomment -type=Macrostate
const (
	FETCH   = Macrostate(0) // fetch
	DECODE  = Macrostate(1) // decode
	EXECUTE = Macrostate(2) // execute
	HALT    = Macrostate(3) // halt
)

// Microstate is a step within the Fetch macrostate. Decode and Execute
// have no microstates.
type Microstate int

//go:generate go tool stringer -linecomment -type=Microstate
const (
	IFETCH1         = Microstate(0) // ifetch1
	IFETCH2         = Microstate(1) // ifetch2
	IFETCH3         = Microstate(2) // ifetch3
	IFETCH4         = Microstate(3) // ifetch4
	MICROSTATE_EXIT = Microstate(4) // exit
)
