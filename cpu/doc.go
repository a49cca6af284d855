// Package cpu implements the control unit and assembler for the SC4 system.
//
// The SC4 is a load/store machine with sixteen 32-bit general-purpose
// registers (R0-R15), a 100 word memory, and a status word holding the
// Zero, Negative, Carryout and Overflow condition codes. The control unit
// is a finite state machine stepping through the Fetch, Decode and Execute
// macrostates; only Fetch is divided into microstates.
//
// The assembler provides a small assembly language for the SC4 instruction
// set, supporting labels, equates, and compile-time expression evaluation.
package cpu
