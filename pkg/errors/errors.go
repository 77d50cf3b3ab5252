// Package errors provides structured error handling for Vigil.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitProof    = 3 // Proof verification failed
	ExitNotFound = 4 // Resource not found
	ExitOracle   = 5 // Difficulty oracle unavailable
)

// VigilError is the structured error type for Vigil.
type VigilError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *VigilError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *VigilError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for VigilError.
func (e *VigilError) Is(target error) bool {
	var t *VigilError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &VigilError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &VigilError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &VigilError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Address errors.
	ErrInvalidFormat = &VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidCharacter = &VigilError{
		Code:     "INVALID_CHARACTER",
		Message:  "invalid character in encoded string",
		ExitCode: ExitInput,
	}

	ErrChecksumMismatch = &VigilError{
		Code:     "CHECKSUM_MISMATCH",
		Message:  "address checksum mismatch",
		ExitCode: ExitInput,
	}

	ErrUnsupportedAddressType = &VigilError{
		Code:     "UNSUPPORTED_ADDRESS_TYPE",
		Message:  "unsupported address type",
		ExitCode: ExitInput,
	}

	// Transaction errors.
	ErrInvalidInputVector = &VigilError{
		Code:     "INVALID_INPUT_VECTOR",
		Message:  "malformed transaction input vector",
		ExitCode: ExitInput,
	}

	ErrInvalidOutputVector = &VigilError{
		Code:     "INVALID_OUTPUT_VECTOR",
		Message:  "malformed transaction output vector",
		ExitCode: ExitInput,
	}

	// Proof errors.
	ErrProofFailed = &VigilError{
		Code:     "PROOF_FAILED",
		Message:  "SPV proof verification failed",
		ExitCode: ExitProof,
	}

	ErrOracleUnavailable = &VigilError{
		Code:     "ORACLE_UNAVAILABLE",
		Message:  "difficulty oracle unavailable",
		ExitCode: ExitOracle,
	}

	// Config errors.
	ErrConfigNotFound = &VigilError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &VigilError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownNetwork = &VigilError{
		Code:     "UNKNOWN_NETWORK",
		Message:  "unknown network name",
		ExitCode: ExitInput,
	}
)

// New creates a new VigilError with the given code and message.
func New(code, message string) *VigilError {
	return &VigilError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ve *VigilError
	if errors.As(err, &ve) {
		return &VigilError{
			Code:       ve.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ve.Message),
			Details:    ve.Details,
			Suggestion: ve.Suggestion,
			Cause:      err,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VigilError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ve *VigilError
	if errors.As(err, &ve) {
		return &VigilError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    details,
			Suggestion: ve.Suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VigilError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ve *VigilError
	if errors.As(err, &ve) {
		return &VigilError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    ve.Details,
			Suggestion: suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VigilError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the exit code for an error.
// Returns ExitSuccess for nil errors and ExitGeneral for unknown errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *VigilError
	if errors.As(err, &ve) {
		return ve.ExitCode
	}
	return ExitGeneral
}
