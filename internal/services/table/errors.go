package table

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable tag for a registry failure
type ErrorCode string

const (
	CodeInvalidInput    ErrorCode = "INVALID_INPUT"
	CodeTableNotFound   ErrorCode = "TABLE_NOT_FOUND"
	CodeTableDeleted    ErrorCode = "TABLE_DELETED"
	CodeTableCodeExists ErrorCode = "TABLE_CODE_EXISTS"
	CodeTableOccupied   ErrorCode = "TABLE_OCCUPIED"
)

// Error is a typed registry failure
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsRegistryError unwraps err into a typed registry error if it carries one
func AsRegistryError(err error) (*Error, bool) {
	var registryErr *Error
	if errors.As(err, &registryErr) {
		return registryErr, true
	}
	return nil, false
}

// HTTPStatus maps the error code to its HTTP response status
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeTableNotFound, CodeTableDeleted:
		return http.StatusNotFound
	case CodeTableCodeExists, CodeTableOccupied:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
