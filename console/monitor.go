package console

import (
	"fmt"
	"io"

	"github.com/ezrec/sc4/cpu"
)

// MONITOR_ROWS is the number of memory words shown beside the register
// file.
const MONITOR_ROWS = cpu.REGFILE_SIZE

// Monitor writes the debug monitor view of a machine state: the register
// file beside the start of memory, then the datapath registers.
func Monitor(w io.Writer, snap cpu.Snapshot) (err error) {
	pr := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	pr("  Debug Monitor\n")
	pr(" Register File                  Memory Dump\n")
	for n := range MONITOR_ROWS {
		pr(" %X: %v                 %08X: %v\n", n, snap.Register[n].Hex(), n, snap.Memory[n].Hex())
	}
	pr("\n")
	pr(" PC: %v  IR: %v SW: %08X\n", snap.PC.Hex(), snap.IR.Hex(), snap.SW)
	pr(" MAR: %v MDR: %v ALU.A: %v ALU.B: %v ALU.R: %v\n",
		snap.MAR.Hex(), snap.MDR.Hex(), snap.AluA.Hex(), snap.AluB.Hex(), snap.AluR.Hex())

	return
}
