package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtask/cloudtask/internal/query"
	"github.com/cloudtask/cloudtask/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitPartialFailure indicates a batch operation with some failed items
	ExitPartialFailure = 5
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitStoreError indicates a record store error
	ExitStoreError = 12
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError wrapping an existing error
func WrapCLIError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && IsVerbose() {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	// Parse errors are user mistakes: print the specific message and fail
	// before anything reaches a record store.
	var parseErr *query.ParseError
	if errors.As(err, &parseErr) {
		cmd.PrintErrln("Error:", parseErr.Error())
		return ExitError
	}

	var ctErr *types.CloudTaskError
	if errors.As(err, &ctErr) {
		cmd.PrintErrln("Error:", ctErr.Error())
		switch ctErr.Code {
		case types.CONFIG_LOAD_FAILED, types.CONFIG_PARSE_FAILED, types.CONFIG_VALIDATION_FAILED:
			return ExitConfigError
		case types.STORE_OPEN_FAILED, types.STORE_MIGRATION_FAILED, types.STORE_QUERY_FAILED, types.STORE_NOT_FOUND:
			return ExitStoreError
		default:
			return ExitError
		}
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}
