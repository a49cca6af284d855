// Package listing reads and writes SC4 program listings.
//
// A listing holds one instruction word per line, as
//
//	<address>:<hex>
//
// where <hex> is 1 to 8 hexadecimal digits. The address is informational
// only; words are placed sequentially from address 0.
package listing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/ezrec/sc4/cpu"
)

// Ext is the file name extension of a listing.
const Ext = ".txt"

var reHex = regexp.MustCompile(`^[0-9A-Fa-f]{1,8}$`)

// Decode returns the instruction word of a single listing line.
func Decode(line string) (word cpu.Word, err error) {
	_, hex, found := strings.Cut(line, ":")
	if !found {
		hex = line
	}
	hex = strings.TrimSpace(hex)

	if !reHex.MatchString(hex) {
		err = ErrInvalidEncoding
		return
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		err = errors.Join(ErrInvalidEncoding, err)
		return
	}

	word = cpu.Word(uint32(value))
	return
}

// Parse reads a listing. Lines that do not hold a valid instruction word
// are loaded as 0 (NOP), and reported as *ErrSyntax joined into err; the
// returned words are complete in that case.
func Parse(input io.Reader) (words []cpu.Word, err error) {
	scanner := bufio.NewScanner(input)

	var errs []error
	var lineno int
	for scanner.Scan() {
		line := scanner.Text()
		lineno++

		word, _err := Decode(line)
		if _err != nil {
			errs = append(errs, &ErrSyntax{LineNo: lineno, Line: line, Err: _err})
		}
		words = append(words, word)
	}

	err = scanner.Err()
	if err != nil {
		words = nil
		return
	}

	err = errors.Join(errs...)
	return
}

// Name returns the listing file name, adding the extension if missing.
func Name(name string) string {
	if !strings.HasSuffix(strings.ToLower(name), Ext) {
		name += Ext
	}

	return name
}

// Load reads the named listing from a filesystem.
func Load(filesys fs.FS, name string) (words []cpu.Word, err error) {
	file, err := filesys.Open(Name(name))
	if err != nil {
		return
	}
	defer file.Close()

	return Parse(file)
}

// Write writes words as a listing.
func Write(output io.Writer, words []cpu.Word) (err error) {
	for addr, word := range words {
		_, err = fmt.Fprintf(output, "%d:%v\n", addr, word.Hex())
		if err != nil {
			return
		}
	}

	return
}

// Save writes words as the named listing, creating its directory if
// needed.
func Save(filesys CreateFS, name string, words []cpu.Word) (err error) {
	name = Name(name)

	dir, base := path.Split(name)
	if len(dir) != 0 {
		dir = path.Clean(dir)
		var sub CreateFS
		sub, err = filesys.Sub(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return
			}
			err = filesys.Mkdir(dir, 0755)
			if err != nil {
				return
			}
			sub, err = filesys.Sub(dir)
			if err != nil {
				return
			}
		}
		filesys = sub
	}

	file, err := filesys.Create(base)
	if err != nil {
		return
	}

	err = Write(file, words)
	if err != nil {
		file.Close()
		return
	}

	return file.Close()
}
