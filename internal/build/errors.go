// SPDX-License-Identifier: AGPL-3.0-or-later

package build

import (
	"errors"
	"fmt"
)

// Failure kinds. Each aborts the build; the command layer maps them to exit codes.
var (
	ErrConfig     = errors.New("configuration error")
	ErrTemplate   = errors.New("template error")
	ErrConversion = errors.New("conversion error")
)

// Error is a classified build failure, optionally tied to one policy source.
type Error struct {
	Kind   error
	Policy string
	Err    error
}

// Wrap classifies err. A nil err returns nil.
func Wrap(kind error, policy string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Policy: policy, Err: err}
}

func (e *Error) Error() string {
	if e.Policy != "" {
		return fmt.Sprintf("%v in %s: %v", e.Kind, e.Policy, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }
