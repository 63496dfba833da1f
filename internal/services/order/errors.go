package order

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable tag for an engine failure
type ErrorCode string

const (
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeTableNotFound       ErrorCode = "TABLE_NOT_FOUND"
	CodeTableDeleted        ErrorCode = "TABLE_DELETED"
	CodeTableOccupied       ErrorCode = "TABLE_OCCUPIED"
	CodeMenuItemNotFound    ErrorCode = "MENU_ITEM_NOT_FOUND"
	CodeMenuItemUnavailable ErrorCode = "MENU_ITEM_UNAVAILABLE"
	CodeOrderNotFound       ErrorCode = "ORDER_NOT_FOUND"
	CodeOrderClosed         ErrorCode = "ORDER_CLOSED"
	CodeVersionConflict     ErrorCode = "VERSION_CONFLICT"
	CodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	CodeCreationFailed      ErrorCode = "CREATION_FAILED"
)

// Error is a typed engine failure. Every failure inside a mutating unit
// aborts the whole transaction and surfaces as one of these.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// newError builds a typed engine error
func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsEngineError unwraps err into a typed engine error if it carries one
func AsEngineError(err error) (*Error, bool) {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

// HTTPStatus maps the error code to its HTTP response status. VERSION_CONFLICT
// is retryable-after-refetch for clients; everything else is terminal for
// that request.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeTableNotFound, CodeTableDeleted, CodeMenuItemNotFound, CodeOrderNotFound:
		return http.StatusNotFound
	case CodeVersionConflict, CodeTableOccupied:
		return http.StatusConflict
	case CodeInvalidInput, CodeMenuItemUnavailable, CodeOrderClosed, CodeInvalidTransition:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
