package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/roach88/akashic/internal/config"
	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timeline"
	"github.com/roach88/akashic/internal/timer"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (storage error, nothing to stop, etc.)
	ExitCommandError = 2 // Command error (bad arguments, unknown ID, bad config)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeAlreadyRunning = string(timer.ErrCodeAlreadyRunning)
	ErrCodeNotRunning     = string(timer.ErrCodeNotRunning)
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeStorage        = "STORAGE_ERROR"
	ErrCodeConfig         = "CONFIG_ERROR"
	ErrCodeGeneric        = "ERROR"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// ExitErrors carry their own code; caller mistakes map to ExitCommandError
// and everything else to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch ErrorCode(err) {
	case ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeConfig:
		return ExitCommandError
	}
	return ExitFailure
}

// ErrorCode maps an error to the code reported to users.
func ErrorCode(err error) string {
	var inputErr *InputError
	var cfgErr *config.ValidationError
	switch {
	case timer.IsAlreadyRunning(err):
		return ErrCodeAlreadyRunning
	case timer.IsNotRunning(err):
		return ErrCodeNotRunning
	case errors.Is(err, store.ErrNotFound), errors.Is(err, timeline.ErrNotFound):
		return ErrCodeNotFound
	case errors.As(err, &inputErr),
		timer.IsInvalidDuration(err),
		errors.Is(err, store.ErrInvalidTag),
		errors.Is(err, store.ErrInvalidSlice):
		return ErrCodeInvalidInput
	case errors.As(err, &cfgErr):
		return ErrCodeConfig
	case store.IsStorageError(err):
		return ErrCodeStorage
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // ALREADY_RUNNING, NOT_FOUND, ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Emit writes data as a JSON envelope, or calls text to render it for
// humans.
func (f *OutputFormatter) Emit(data any, text func(io.Writer) error) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Success outputs a plain result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	return f.Emit(data, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, data)
		return err
	})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Report outputs err with the code ErrorCode assigns it.
func (f *OutputFormatter) Report(err error) error {
	return f.Error(ErrorCode(err), err.Error(), nil)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	data, err := sonic.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = f.Writer.Write(append(data, '\n'))
	return err
}
