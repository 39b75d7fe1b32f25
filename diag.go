// diag.go - small stderr diagnostic helper, plain fmt.Printf texture
// instead of a structured logging library.
package jopcore

import (
	"fmt"
	"os"
)

// Diagf writes a formatted diagnostic line to stderr. It never returns an
// error: a failed write to stderr is not something a caller can act on.
func Diagf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Fatalf writes a formatted diagnostic line to stderr and exits 1.
func Fatalf(format string, args ...any) {
	Diagf(format, args...)
	os.Exit(1)
}
