// Copyright 2025 NetApp, Inc. All Rights Reserved.

package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ///////////////////////////////////////////////////////////////////////////
// Wrappers for standard library errors package
// ///////////////////////////////////////////////////////////////////////////

func New(message string) error {
	return errors.New(message)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Append combines errors, ignoring nils; it is the accumulation form used while undoing
// a sequence of cache writes.
func Append(left, right error) error {
	return multierr.Append(left, right)
}

// Errors returns the list of errors combined by Append, or a single-element slice.
func Errors(err error) []error {
	return multierr.Errors(err)
}

// ///////////////////////////////////////////////////////////////////////////
// notFoundError
// ///////////////////////////////////////////////////////////////////////////

type notFoundError struct {
	inner   error
	message string
}

func (e *notFoundError) Error() string {
	if e.inner == nil || e.inner.Error() == "" {
		return e.message
	} else if e.message == "" {
		return e.inner.Error()
	}
	return fmt.Sprintf("%v; %v", e.message, e.inner.Error())
}

func (e *notFoundError) Unwrap() error { return e.inner }

func NotFoundError(message string, a ...any) error {
	if len(a) == 0 {
		return &notFoundError{message: message}
	}
	return &notFoundError{message: fmt.Sprintf(message, a...)}
}

func WrapWithNotFoundError(err error, message string, a ...any) error {
	return &notFoundError{
		inner:   err,
		message: fmt.Sprintf(message, a...),
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *notFoundError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// invalidStateError
// ///////////////////////////////////////////////////////////////////////////

type invalidStateError struct {
	message string
}

func (e *invalidStateError) Error() string { return e.message }

func InvalidStateError(message string, a ...any) error {
	if len(a) == 0 {
		return &invalidStateError{message: message}
	}
	return &invalidStateError{message: fmt.Sprintf(message, a...)}
}

func IsInvalidStateError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *invalidStateError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// prePatchError
// ///////////////////////////////////////////////////////////////////////////

// prePatchError reports a mutation that was abandoned while its optimistic patches were being
// applied. Patches applied before the failure have already been undone when this is returned.
type prePatchError struct {
	inner   error
	message string
}

func (e *prePatchError) Error() string {
	if e.inner == nil || e.inner.Error() == "" {
		return e.message
	} else if e.message == "" {
		return e.inner.Error()
	}
	return fmt.Sprintf("%v; %v", e.message, e.inner.Error())
}

func (e *prePatchError) Unwrap() error { return e.inner }

func WrapWithPrePatchError(err error, message string, a ...any) error {
	return &prePatchError{
		inner:   err,
		message: fmt.Sprintf(message, a...),
	}
}

func IsPrePatchError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *prePatchError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// remoteOperationError
// ///////////////////////////////////////////////////////////////////////////

// remoteOperationError carries the rejection of a remote call through the rollback path. It
// reports the rejection's own message so callers see exactly what the remote side said.
type remoteOperationError struct {
	inner     error
	operation string
}

func (e *remoteOperationError) Error() string {
	if e.inner == nil {
		return fmt.Sprintf("remote operation %s failed", e.operation)
	}
	return e.inner.Error()
}

func (e *remoteOperationError) Unwrap() error { return e.inner }

func (e *remoteOperationError) Operation() string { return e.operation }

func WrapWithRemoteOperationError(err error, operation string) error {
	return &remoteOperationError{
		inner:     err,
		operation: operation,
	}
}

func IsRemoteOperationError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *remoteOperationError
	return errors.As(err, &errPtr)
}

// RemoteOperationName returns the operation recorded on a remote operation error, if any.
func RemoteOperationName(err error) (string, bool) {
	var errPtr *remoteOperationError
	if !errors.As(err, &errPtr) {
		return "", false
	}
	return errPtr.operation, true
}

// ///////////////////////////////////////////////////////////////////////////
// invalidInputError
// ///////////////////////////////////////////////////////////////////////////

type invalidInputError struct {
	message string
}

func (e *invalidInputError) Error() string { return e.message }

func InvalidInputError(message string, a ...any) error {
	if len(a) == 0 {
		return &invalidInputError{message: message}
	}
	return &invalidInputError{message: fmt.Sprintf(message, a...)}
}

func IsInvalidInputError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *invalidInputError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// typeAssertionError
// ///////////////////////////////////////////////////////////////////////////

type typeAssertionError struct {
	assertion string
}

func (e *typeAssertionError) Error() string {
	return fmt.Sprintf("could not perform assertion: %s", e.assertion)
}

func TypeAssertionError(assertion string) error {
	return &typeAssertionError{assertion}
}

func IsTypeAssertionError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *typeAssertionError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// connectionError
// ///////////////////////////////////////////////////////////////////////////

type connectionError struct {
	inner   error
	message string
}

func (e *connectionError) Error() string {
	if e.inner == nil || e.inner.Error() == "" {
		return e.message
	} else if e.message == "" {
		return e.inner.Error()
	}
	return fmt.Sprintf("%v; %v", e.message, e.inner.Error())
}

func (e *connectionError) Unwrap() error {
	// Return the inner error.
	return e.inner
}

func ConnectionError(message string, a ...any) error {
	if len(a) == 0 {
		return &connectionError{message: message}
	}
	return &connectionError{message: fmt.Sprintf(message, a...)}
}

func WrapWithConnectionError(err error, message string, a ...any) error {
	return &connectionError{
		inner:   err,
		message: fmt.Sprintf(message, a...),
	}
}

func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var errPointer *connectionError
	return errors.As(err, &errPointer)
}

// ///////////////////////////////////////////////////////////////////////////
// conflictError
// ///////////////////////////////////////////////////////////////////////////

type conflictError struct {
	inner   error
	message string
}

func (e *conflictError) Error() string {
	if e.inner == nil || e.inner.Error() == "" {
		return e.message
	} else if e.message == "" {
		return e.inner.Error()
	}
	return fmt.Sprintf("%v; %v", e.message, e.inner.Error())
}

func (e *conflictError) Unwrap() error { return e.inner }

func ConflictError(message string, a ...any) error {
	if len(a) == 0 {
		return &conflictError{message: message}
	}
	return &conflictError{message: fmt.Sprintf(message, a...)}
}

func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *conflictError
	return errors.As(err, &errPtr)
}

// ///////////////////////////////////////////////////////////////////////////
// permissionDeniedError
// ///////////////////////////////////////////////////////////////////////////

type permissionDeniedError struct {
	message string
}

func (e *permissionDeniedError) Error() string { return e.message }

func PermissionDeniedError(message string, a ...any) error {
	if len(a) == 0 {
		return &permissionDeniedError{message: message}
	}
	return &permissionDeniedError{message: fmt.Sprintf(message, a...)}
}

func IsPermissionDeniedError(err error) bool {
	if err == nil {
		return false
	}
	var errPtr *permissionDeniedError
	return errors.As(err, &errPtr)
}
