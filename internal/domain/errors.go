// Package domain defines the core value types, interfaces, and errors for
// the split-planning connector.
package domain

import "fmt"

// QueryNotPushedDownError indicates a query that cannot be represented as a
// pushable broker request while segment-level fallback is unavailable —
// either structurally (no compiled query attached) or by session policy.
// It is a user error: retrying without changing the query will not help.
type QueryNotPushedDownError struct {
	ConnectorID string
	Table       string
}

func (e *QueryNotPushedDownError) Error() string {
	return fmt.Sprintf(
		"query uses unsupported expressions that cannot be pushed into the storage engine, table: %s:%s",
		e.ConnectorID, e.Table)
}

// ErrQueryNotPushedDown creates a QueryNotPushedDownError for the given table.
func ErrQueryNotPushedDown(connectorID, table string) *QueryNotPushedDownError {
	return &QueryNotPushedDownError{ConnectorID: connectorID, Table: table}
}

// ValidationError indicates invalid input to the planning API.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UnavailableError indicates the cluster metadata service could not be
// reached or returned a malformed response. It is a system fault — the
// caller owns retry policy.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ErrUnavailable wraps a transport or decoding failure from the metadata
// service.
func ErrUnavailable(err error, format string, args ...interface{}) *UnavailableError {
	return &UnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}
