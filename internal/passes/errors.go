package passes

import (
	"errors"
	"fmt"
)

// UnknownPassError reports a pass name absent from the registry.
type UnknownPassError struct {
	Name string
}

func (e *UnknownPassError) Error() string {
	return fmt.Sprintf("unknown pass %q", e.Name)
}

// IsUnknownPass reports whether err wraps an *UnknownPassError.
func IsUnknownPass(err error) bool {
	var up *UnknownPassError
	return errors.As(err, &up)
}
