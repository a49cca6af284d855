// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":       "0",
	"MEMORY_SIZE":  fmt.Sprintf("%d", MEMORY_SIZE),
	"REGFILE_SIZE": fmt.Sprintf("%d", REGFILE_SIZE),
}

// Assembler is a single pass assembler for the SC4 system.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reParen    = regexp.MustCompile(`\$\([^\$]*\)`)
	reRegister = regexp.MustCompile(`^(?i)r([0-9]|1[0-5])$`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// registerOf returns the register index named by a word.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	match := reRegister.FindStringSubmatch(word)
	if match == nil {
		err = fmt.Errorf("%w: %v", ErrRegisterInvalid, word)
		return
	}

	n, _ := strconv.Atoi(match[1])
	reg = uint8(n)
	return
}

// immediateOf returns the value of a word that must fit an n bit field.
func (asm *Assembler) immediateOf(word string, n uint) (value int32, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if !ImmediateFits(v64, n) {
		err = fmt.Errorf("%w: %v does not fit %d bits", ErrOpcodeImm, v64, n)
		return
	}

	value = int32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or labels.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling expressions,
// equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Fields(line), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + 1
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			logrus.WithField("line", lineno).Debug(text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of branch labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		offset := int64(ip - (op.Ip + 1))
		if !ImmediateFits(offset, IMM_F4_BITS) {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrOpcodeImm
			return
		}
		op.Code = MakeCodeBranch(Decode(op.Code).Op, int32(offset))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// argCount checks the operand count of an instruction.
func argCount(words []string, n int) (err error) {
	switch {
	case len(words)-1 < n:
		err = ErrOpcodeValueMissing
	case len(words)-1 > n:
		err = ErrOpcodeExtraArgs
	}

	return
}

// aluMap maps format 3 mnemonics.
var aluMap = map[string]Op{
	"ADD": OP_ADD,
	"SUB": OP_SUB,
	"AND": OP_AND,
	"OR":  OP_OR,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code Word
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Code: code, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToUpper(words[0])

	switch mnemonic {
	case ".WORD":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		var v64 int64
		v64, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if v64 > 0xffffffff || v64 < WORD_MIN {
			err = ErrOpcodeImm
			return
		}
		code = Word(uint32(v64))
	case "NOP":
		err = argCount(words, 0)
	case "HALT":
		err = argCount(words, 0)
		code = MakeCodeHalt()
	case "LDI":
		err = argCount(words, 2)
		if err != nil {
			return
		}
		var dr uint8
		var imm int32
		dr, err = asm.registerOf(words[1])
		if err != nil {
			return
		}
		imm, err = asm.immediateOf(words[2], IMM_F1_BITS)
		if err != nil {
			return
		}
		code = MakeCodeLdi(dr, imm)
	case "LD", "ST":
		err = argCount(words, 3)
		if err != nil {
			return
		}
		var dr, sr1 uint8
		var imm int32
		dr, err = asm.registerOf(words[1])
		if err != nil {
			return
		}
		sr1, err = asm.registerOf(words[2])
		if err != nil {
			return
		}
		imm, err = asm.immediateOf(words[3], IMM_F2_BITS)
		if err != nil {
			return
		}
		if mnemonic == "LD" {
			code = MakeCodeLd(dr, sr1, imm)
		} else {
			code = MakeCodeSt(dr, sr1, imm)
		}
	case "NOT":
		err = argCount(words, 2)
		if err != nil {
			return
		}
		var dr, sr1 uint8
		dr, err = asm.registerOf(words[1])
		if err != nil {
			return
		}
		sr1, err = asm.registerOf(words[2])
		if err != nil {
			return
		}
		code = MakeCodeNot(dr, sr1)
	case "ADD", "SUB", "AND", "OR":
		err = argCount(words, 3)
		if err != nil {
			return
		}
		var regs [3]uint8
		for n := range regs {
			regs[n], err = asm.registerOf(words[1+n])
			if err != nil {
				return
			}
		}
		code = MakeCodeAlu(aluMap[mnemonic], regs[0], regs[1], regs[2])
	case "BR", "BRZ":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		op := OP_BR
		if mnemonic == "BRZ" {
			op = OP_BRZ
		}
		target := words[1]
		var offset int64
		offset, err = asm.valueOf(target)
		if err != nil {
			// Not a number, so link it as a label.
			err = nil
			label = target
			code = MakeCodeBranch(op, 0)
			return
		}
		if !ImmediateFits(offset, IMM_F4_BITS) {
			err = ErrOpcodeImm
			return
		}
		code = MakeCodeBranch(op, int32(offset))
	default:
		err = fmt.Errorf("%w: %v", ErrOpcodeInvalid, words[0])
	}

	return
}
