package exitcode

import (
	"errors"
)

const (
	Success = 0

	// At least one file had a syntax error or a class that couldn't be lowered
	TransformFailed = 1

	// The flags or the config file were rejected before anything was read
	InvalidOptions = 2

	// An input file couldn't be read or an output file couldn't be written
	IOFailed = 3
)

// Coder is an error that knows which exit code the process should use
type Coder interface {
	error
	ExitCode() int
}

// Get gets the exit code associated with an error:
//
//	nil => Success
//	errors implementing Coder => value returned by ExitCode
//	all other errors => TransformFailed
func Get(err error) int {
	if err == nil {
		return Success
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return TransformFailed
}

// Set wraps an error in a Coder without changing its message
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

var _ Coder = coder{}

type coder struct {
	error
	int
}

func (co coder) ExitCode() int {
	return co.int
}

func (co coder) Unwrap() error {
	return co.error
}
