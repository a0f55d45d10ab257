// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clierr carries process exit codes through returned errors.
package clierr

import (
	"errors"
	"fmt"

	"github.com/bartekus/policycomposer/internal/build"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitConfig     = 2
	ExitTemplate   = 3
	ExitConversion = 4
)

// ExitError is an error that carries an explicit process exit code.
// It unwraps to its cause so errors.Is/As see through it.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Wrapf is a formatted variant that wraps.
func Wrapf(code int, cause error, format string, args ...any) error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// ExitCodeOf extracts an exit code from any error. An ExitError in the
// chain wins, then build error kinds, then ExitGeneral. Exit statuses of
// child processes (pandoc, git) never become ours.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	switch {
	case errors.Is(err, build.ErrConfig):
		return ExitConfig
	case errors.Is(err, build.ErrTemplate):
		return ExitTemplate
	case errors.Is(err, build.ErrConversion):
		return ExitConversion
	}
	return ExitGeneral
}

func normalize(code int) int {
	// 0 means success; an error never exits 0.
	if code <= 0 {
		return ExitGeneral
	}
	return code
}
