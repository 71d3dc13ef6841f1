// Package cli provides shared configuration and utilities for the docsql CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
)

// Code is a process exit code.
type Code int

const (
	ExitSuccess     Code = 0
	ExitGeneral     Code = 1
	ExitConfig      Code = 2
	ExitSchemaParse Code = 3
	ExitDBConnect   Code = 4
)

func (c Code) String() string {
	switch c {
	case ExitSuccess:
		return "success"
	case ExitConfig:
		return "configuration error"
	case ExitSchemaParse:
		return "schema error"
	case ExitDBConnect:
		return "database connection error"
	default:
		return "error"
	}
}

// ExitError is an error that ends the process with Code.
type ExitError struct {
	Code    Code
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for err: ExitSuccess for nil, the
// ExitError's code when err wraps one, ExitGeneral otherwise.
func ExitCode(err error) Code {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneral
}

// ExitWithError prints err to stderr and exits with its code.
func ExitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(int(ExitCode(err)))
}

func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

func SchemaParseError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitSchemaParse, Message: msg, Err: err}
}

func DBConnectError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDBConnect, Message: msg, Err: err}
}

func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}
