package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrPersistence   = errors.New("persistence error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInterrupted   = errors.New("operation interrupted")
)

// Both are persistence failures: errors.Is(err, ErrPersistence) holds.
var (
	ErrCorruptIndex  = fmt.Errorf("%w: corrupt index", ErrPersistence)
	ErrIndexNotFound = fmt.Errorf("%w: index not found", ErrPersistence)
)

// Exit codes returned by the command line tool.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitConfiguration = 3
	ExitPersistence   = 4
)

// AppError tags a failure with one of the sentinels above and the path that
// caused it.
type AppError struct {
	Err     error
	Path    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Path, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func New(sentinel error, path string, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: message,
	}
}

func Newf(sentinel error, path string, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a sentinel and path to an underlying cause while keeping the
// cause reachable through errors.Is and errors.As.
func Wrap(sentinel error, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// WithPath fills in the path of the outermost AppError in err when it has
// none.
func WithPath(err error, path string) error {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Path != "" {
		return err
	}
	withPath := *appErr
	withPath.Path = path
	return &withPath
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrPersistence):
		return ExitPersistence
	default:
		return ExitFailure
	}
}

// Is and As re-export the standard helpers so callers importing this package
// under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
