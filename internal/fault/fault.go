// Package fault defines the error taxonomy shared by the record store and the
// attachment pipeline. Backend-specific failures are translated into these
// codes at the infrastructure boundary so callers can branch on semantics
// rather than on driver error strings.
package fault

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeAttachmentFailed Code = "ATTACHMENT_FAILED"
)

// Error is a classified error. Ref is set only for attachment failures and
// names the offending canonical reference or object key.
type Error struct {
	Code    Code
	Message string
	Ref     string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Ref != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Code, e.Message, e.Ref, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Ref != "":
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Ref)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a lookup miss. This is an expected outcome, not a failure.
func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

// AlreadyExists reports an id collision within a partition on create.
func AlreadyExists(what string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: what + " already exists"}
}

// InvalidArgument reports a caller contract violation such as a missing
// partition key or a malformed filter value.
func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// Unavailable wraps a transient backend failure. Callers may retry
// operations that are idempotent in their context.
func Unavailable(msg string, err error) *Error {
	return &Error{Code: CodeUnavailable, Message: msg, Err: err}
}

// Attachment wraps an upload/delete/sign failure for a single reference.
func Attachment(ref, msg string, err error) *Error {
	return &Error{Code: CodeAttachmentFailed, Message: msg, Ref: ref, Err: err}
}

func is(err error, code Code) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == code
}

func IsNotFound(err error) bool        { return is(err, CodeNotFound) }
func IsAlreadyExists(err error) bool   { return is(err, CodeAlreadyExists) }
func IsInvalidArgument(err error) bool { return is(err, CodeInvalidArgument) }
func IsUnavailable(err error) bool     { return is(err, CodeUnavailable) }
func IsAttachment(err error) bool      { return is(err, CodeAttachmentFailed) }

// RefOf returns the attachment reference carried by err, if any.
func RefOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Ref
	}
	return ""
}
