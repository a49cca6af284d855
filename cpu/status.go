package cpu

import (
	"strings"
)

// Status word condition code bits. The remaining 28 bits are always zero.
const (
	SW_ZERO     = uint32(1 << 31)
	SW_NEGATIVE = uint32(1 << 30)
	SW_CARRYOUT = uint32(1 << 29)
	SW_OVERFLOW = uint32(1 << 28)
	SW_MASK     = SW_ZERO | SW_NEGATIVE | SW_CARRYOUT | SW_OVERFLOW
)

// Flags are the condition codes derived from the last flag setting
// ALU result.
type Flags struct {
	Zero     bool
	Negative bool
	Carryout bool
	Overflow bool
}

// DeriveFlags computes the condition codes of a wide, pre-truncation
// ALU result. Carryout and Overflow share the same range check.
func DeriveFlags(result int64) (flags Flags) {
	outside := result > WORD_MAX || result < WORD_MIN

	flags = Flags{
		Zero:     result == 0,
		Negative: result < 0,
		Carryout: outside,
		Overflow: outside,
	}

	return
}

// StatusWord packs the flags into the high 4 bits of a status word.
func (flags Flags) StatusWord() (sw uint32) {
	if flags.Zero {
		sw |= SW_ZERO
	}
	if flags.Negative {
		sw |= SW_NEGATIVE
	}
	if flags.Carryout {
		sw |= SW_CARRYOUT
	}
	if flags.Overflow {
		sw |= SW_OVERFLOW
	}

	return
}

// FlagsOf unpacks a status word.
func FlagsOf(sw uint32) Flags {
	return Flags{
		Zero:     sw&SW_ZERO != 0,
		Negative: sw&SW_NEGATIVE != 0,
		Carryout: sw&SW_CARRYOUT != 0,
		Overflow: sw&SW_OVERFLOW != 0,
	}
}

// String returns the set flags as "ZNCV", with '-' for clear flags.
func (flags Flags) String() string {
	var sb strings.Builder
	for _, flag := range []struct {
		set  bool
		name byte
	}{
		{flags.Zero, 'Z'},
		{flags.Negative, 'N'},
		{flags.Carryout, 'C'},
		{flags.Overflow, 'V'},
	} {
		if flag.set {
			sb.WriteByte(flag.name)
		} else {
			sb.WriteByte('-')
		}
	}

	return sb.String()
}
