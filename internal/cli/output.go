package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/lower"
	"github.com/roach88/qcanvas/internal/passes"
	"github.com/roach88/qcanvas/internal/qasm"
	"github.com/roach88/qcanvas/internal/stats"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Failure (scenarios failed, target cannot express the circuit, etc.)
	ExitCommandError = 2 // Command error (invalid paths, malformed input, unknown pass, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCatalog     = "E008" // Catalog file failed to compile
	ErrCodeStore       = "E009" // History database error
	ErrCodeFormat      = "E010" // Unrecognized input file extension

	// Circuit errors
	ErrCodeMalformed   = "E201" // Structural invariant violated
	ErrCodeUnknownGate = "E202" // Gate name not in the catalog
	ErrCodeUnknownPass = "E203" // Pass name not registered
	ErrCodeUnsupported = "E204" // Target cannot express a construct
	ErrCodeParse       = "E205" // OpenQASM source rejected
	ErrCodeStaleStats  = "E206" // Cached statistics disagree with the gates

	ErrCodeUnknownTarget = "E207" // Target selector not recognized
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// reported is set when the error was already written by an
	// OutputFormatter, so main does not print it twice.
	reported bool
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
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already written to the user.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// ErrorCode maps a domain error to its CLI error code and exit code.
func ErrorCode(err error) (string, int) {
	var stale *stats.StaleError
	switch {
	case qasm.IsParseError(err):
		return ErrCodeParse, ExitCommandError
	case catalog.IsUnknownGate(err):
		return ErrCodeUnknownGate, ExitCommandError
	case catalog.IsUnknownTarget(err):
		return ErrCodeUnknownTarget, ExitCommandError
	case ir.IsMalformed(err):
		return ErrCodeMalformed, ExitCommandError
	case passes.IsUnknownPass(err):
		return ErrCodeUnknownPass, ExitCommandError
	case errors.As(err, &stale):
		return ErrCodeStaleStats, ExitCommandError
	case lower.IsUnsupported(err):
		return ErrCodeUnsupported, ExitFailure
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
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
	Code    string `json:"code"`              // "E001", "E201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encodeJSON(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encodeJSON(CLIResponse{
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

// Fail writes err with the code ErrorCode assigns it and returns the
// matching ExitError, marked as reported.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := ErrorCode(err)
	return f.FailWithCode(code, exit, message, err)
}

// FailWithCode is Fail with an explicit error code and exit code.
func (f *OutputFormatter) FailWithCode(code string, exit int, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	if writeErr := f.Error(code, text, nil); writeErr != nil {
		return writeErr
	}
	return &ExitError{Code: exit, Message: message, Err: err, reported: true}
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

func (f *OutputFormatter) encodeJSON(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
