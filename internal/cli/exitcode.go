package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// Process exit codes.
const (
	ExitOK = iota
	ExitWrongArgs
	ExitInputPath
	ExitCloseInput
	ExitOutputPath
	ExitCloseOutput
	ExitReadHeaders
	ExitWriteSection
)

// ExitError attaches a process exit code to an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, pe.ErrInvalidSignature), errors.Is(err, pe.ErrRead):
		return ExitReadHeaders
	case errors.Is(err, pe.ErrSectionNotFound),
		errors.Is(err, pe.ErrAllocation),
		errors.Is(err, pe.ErrReadSection),
		errors.Is(err, pe.ErrWrite):
		return ExitWriteSection
	default:
		return ExitWrongArgs
	}
}

// exactArgs is cobra.ExactArgs with a usage exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &ExitError{
				Code: ExitWrongArgs,
				Err:  fmt.Errorf("需要 %d 个参数, 实际 %d 个\n用法: %s", n, len(args), cmd.UseLine()),
			}
		}
		return nil
	}
}
