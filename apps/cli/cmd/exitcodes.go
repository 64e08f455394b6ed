package cmd

import "fmt"

// Exit codes for arduinotap CLI
const (
	// ExitSuccess indicates the run passed
	ExitSuccess = 0

	// ExitTestFailure indicates a failed test, a bail out, or (strict) a broken plan
	ExitTestFailure = 1

	// ExitParseError indicates the TAP stream could not be read
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries an exit code out of a command. Err, when set, is
// printed before exiting.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode turns a code into the error a RunE returns.
func exitCode(code int) error {
	if code == ExitSuccess {
		return nil
	}
	return &ExitError{Code: code}
}
