// Package proc isolates the ambient operating-system process identity behind
// explicit accessors, so the rest of the module never queries it directly and
// tests can inject fixed identifiers.
package proc

import "os"

// CurrentPID returns the identifier of the calling process. It is the single
// place the module reads the ambient pid.
func CurrentPID() int {
	return os.Getpid()
}
