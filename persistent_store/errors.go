// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"fmt"

	"github.com/jobloop/querycache/utils/errors"
)

const (
	KeyNotFoundErr   = "Unable to find key"
	InvalidDocErr    = "Invalid document"
	UnknownOperation = "Unknown operation"
)

// Error turns store-specific failures into something callers can match without importing the
// client library. Connectivity failures are reported as utils/errors ConnectionErrors instead.
type Error struct {
	Message string
	Key     string
}

func NewPersistentStoreError(message, key string) *Error {
	return &Error{
		Message: message,
		Key:     key,
	}
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Key)
}

func matchMessage(err error, message string) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.Message == message
}

func MatchKeyNotFoundErr(err error) bool {
	return matchMessage(err, KeyNotFoundErr)
}

func MatchInvalidDocErr(err error) bool {
	return matchMessage(err, InvalidDocErr)
}

func MatchUnknownOperationErr(err error) bool {
	return matchMessage(err, UnknownOperation)
}

func documentKey(collection, id string) string {
	return collection + "/" + id
}
