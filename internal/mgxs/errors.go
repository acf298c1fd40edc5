package mgxs

import (
	"errors"
	"fmt"
)

// Domain errors for loading and querying cross sections.
var (
	// ErrConfiguration indicates a missing library file or a wrong type or version tag.
	ErrConfiguration = errors.New("mgxs: invalid library configuration")

	// ErrDataAbsent indicates a referenced data set or temperature is not in the library.
	ErrDataAbsent = errors.New("mgxs: cross section data absent from library")

	// ErrEmptyLibrary indicates a library without any data set.
	ErrEmptyLibrary = errors.New("mgxs: library contains no data sets")

	// ErrMalformed indicates a data set whose structure does not match its header.
	ErrMalformed = errors.New("mgxs: malformed cross section data")

	// ErrContractViolation indicates an unsupported query or an out-of-range index.
	ErrContractViolation = errors.New("mgxs: contract violation")
)

// LoadError wraps a load failure with the library path and entry involved.
type LoadError struct {
	Path    string
	Entry   string
	Wrapped error
}

func (e *LoadError) Error() string {
	switch {
	case e.Path != "" && e.Entry != "":
		return fmt.Sprintf("load %s[%s]: %v", e.Path, e.Entry, e.Wrapped)
	case e.Path != "":
		return fmt.Sprintf("load %s: %v", e.Path, e.Wrapped)
	case e.Entry != "":
		return fmt.Sprintf("load %s: %v", e.Entry, e.Wrapped)
	}
	return e.Wrapped.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Wrapped
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrContractViolation}, args...)...)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)
}
