package lower

import (
	"errors"
	"fmt"

	"github.com/roach88/qcanvas/internal/catalog"
)

// UnsupportedError reports a valid circuit construct the target cannot
// express, such as a generic control in OpenQASM 2.
type UnsupportedError struct {
	// Index is the offending gate's position, or -1 for circuit-level problems.
	Index  int
	Gate   string
	Target catalog.Target
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Target, e.Reason)
	}
	return fmt.Sprintf("%s: gate %d (%s): %s", e.Target, e.Index, e.Gate, e.Reason)
}

// IsUnsupported reports whether err wraps an *UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}
