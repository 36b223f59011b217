package gateway

import (
	"errors"
	"fmt"
)

// Operation names the kind of call that failed. It is spliced into the
// user-facing message, so the values read as verbs.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpAssign Operation = "assign"
	OpSave   Operation = "save"
)

// RequestFailedError is returned for every non-2xx answer from a data
// endpoint and for transport failures (Status 0). Error() is the fixed,
// user-presentable message, e.g. "Failed to fetch tasks"; the server's own
// detail is kept for logs only.
type RequestFailedError struct {
	Resource  string
	Operation Operation
	Status    int
	Detail    string
	Err       error
}

func (e *RequestFailedError) Error() string {
	return Message(e.Operation, e.Resource)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Message builds the fixed message for an operation on a resource.
func Message(op Operation, resource string) string {
	return fmt.Sprintf("Failed to %s %s", op, resource)
}

// AuthenticationError is returned when the login endpoint rejects the
// credentials. It deliberately says nothing about why.
type AuthenticationError struct {
	Status int
	Err    error
}

func (e *AuthenticationError) Error() string { return "Login failed" }

func (e *AuthenticationError) Unwrap() error { return e.Err }

// StatusOf extracts the HTTP status carried by a gateway error, or 0.
func StatusOf(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.Status
	}
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return ae.Status
	}

	return 0
}
