package cli

import (
	"fmt"
	"io"
)

// out is a helper for CLI output.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}
