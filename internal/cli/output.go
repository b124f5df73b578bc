package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jacentio/moviereview/review"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected (validation, missing or existing review)
	ExitCommandError = 2 // Command error (bad flags, unreachable backend, etc.)
)

// Error codes reported in CLI output.
const (
	ErrCodeInvalidRating      = "E_INVALID_RATING"
	ErrCodeTitleTooLong       = "E_TITLE_TOO_LONG"
	ErrCodeDescriptionTooLong = "E_DESCRIPTION_TOO_LONG"
	ErrCodeAlreadyExists      = "E_ALREADY_EXISTS"
	ErrCodeNotFound           = "E_NOT_FOUND"
	ErrCodeConcurrentModified = "E_CONCURRENT_MODIFICATION"
	ErrCodeInvalidRecord      = "E_INVALID_RECORD"
	ErrCodeGeneric            = "E_GENERIC"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written to command output.
	Reported bool
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps a review error onto its CLI error code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, review.ErrInvalidRating):
		return ErrCodeInvalidRating
	case errors.Is(err, review.ErrTitleTooLong):
		return ErrCodeTitleTooLong
	case errors.Is(err, review.ErrDescriptionTooLong):
		return ErrCodeDescriptionTooLong
	case errors.Is(err, review.ErrAlreadyExists):
		return ErrCodeAlreadyExists
	case errors.Is(err, review.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, review.ErrConcurrentModification):
		return ErrCodeConcurrentModified
	case errors.Is(err, review.ErrInvalidRecord):
		return ErrCodeInvalidRecord
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReviewView is the printed form of a review.
type ReviewView struct {
	Key         string `json:"key"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rating      uint8  `json:"rating"`
}

func (v ReviewView) String() string {
	return fmt.Sprintf("Title: %s\nDescription: %s\nRating: %d\nAuthor: %s\nKey: %s",
		v.Title, v.Description, v.Rating, v.Author, v.Key)
}

func newReviewView(r *review.Review) ReviewView {
	return ReviewView{
		Key:         string(r.Key()),
		Author:      r.Author.String(),
		Title:       r.Title,
		Description: r.Description,
		Rating:      r.Rating,
	}
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// Fail reports err and returns the ExitError the command should exit with.
// Review rejections exit with ExitFailure; anything else is a command error.
func (f *OutputFormatter) Fail(op string, err error) error {
	code := errorCode(err)
	if outErr := f.Error(code, err.Error()); outErr != nil {
		return outErr
	}
	exit := ExitFailure
	if code == ErrCodeGeneric {
		exit = ExitCommandError
	}
	exitErr := WrapExitError(exit, op, err)
	exitErr.Reported = true
	return exitErr
}
