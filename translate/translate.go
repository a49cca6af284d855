// Package translate formats user facing messages for the user's locale.
package translate

import (
	"io"
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// Fallback is the language used when no locale can be discovered.
const Fallback = "en-US"

var (
	once    sync.Once
	printer *message.Printer
)

func setup() {
	tags, err := locale.GetLocales()
	if err != nil {
		log.Printf("sc4: locale: %v", err)
	}

	if len(tags) == 0 {
		tags = []string{Fallback}
	}

	printer = message.NewPrinter(message.MatchLanguage(tags...))
}

// From translates an en-US Sprintf() format into a string.
func From(key message.Reference, args ...any) string {
	once.Do(setup)
	return printer.Sprintf(key, args...)
}

// Fprintf translates an en-US Fprintf() format onto w.
func Fprintf(w io.Writer, key message.Reference, args ...any) (n int, err error) {
	once.Do(setup)
	return printer.Fprintf(w, key, args...)
}
