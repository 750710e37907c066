// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkerr defines the fatal error kinds a chunk operation can
// surface: every error aborts the current operation, releases resources,
// and is reported to the caller with a diagnostic message. No retries are
// attempted internally.
package chunkerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a chunk operation failed.
type Kind int

const (
	// IoError is any underlying I/O failure.
	IoError Kind = iota
	// CorruptInput covers unexpected EOF, unknown tags, and mismatched
	// record counts between columns.
	CorruptInput
	// SchemaError covers a schema that isn't an object, or a leaf type
	// tag the schema parser doesn't support.
	SchemaError
	// NotImplemented marks a format with no implementation.
	NotImplemented
	// BadProjection marks an unparseable projection DSL string.
	BadProjection
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "io error"
	case CorruptInput:
		return "corrupt input"
	case SchemaError:
		return "schema error"
	case NotImplemented:
		return "not implemented"
	case BadProjection:
		return "bad projection"
	default:
		return "unknown error"
	}
}

// Error wraps a Kind and an underlying cause. Two *Error values compare
// equal under errors.Is when their Kinds match, and errors.As/errors.Unwrap
// reach the wrapped cause, mirroring how moshee-sound's use of
// github.com/pkg/errors keeps the original cause inspectable while
// attaching a diagnostic message.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and a diagnostic message to cause, preserving it for
// errors.Unwrap/errors.As.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, err: errors.WithMessage(cause, msg)}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports two *Error values equal when their Kinds match, so
// errors.Is(err, chunkerr.New(chunkerr.CorruptInput, "")) finds any
// CorruptInput error regardless of message or cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from err, defaulting to IoError when err was not
// produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return IoError
}
