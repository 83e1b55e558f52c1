// Package logging builds the structured loggers used by the fzx tools.
package logging

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// New returns a logger writing one line per entry to w. Entries logged at
// V(n) are kept when n <= verbosity.
func New(w io.Writer, verbosity int) logr.Logger {
	if w == nil {
		return logr.Discard()
	}
	if verbosity < 0 {
		verbosity = 0
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp: false,
		Verbosity:    verbosity,
	})
}
