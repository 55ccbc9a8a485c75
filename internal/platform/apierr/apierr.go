package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeInvalidState     Code = "INVALID_STATE"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeStorageFailure   Code = "STORAGE_FAILURE"
	CodeInternal         Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *Error          { return &Error{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) *Error         { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *Error         { return &Error{Code: CodeConflict, Message: msg} }
func InvalidState(msg string) *Error     { return &Error{Code: CodeInvalidState, Message: msg} }
func PermissionDenied(msg string) *Error { return &Error{Code: CodePermissionDenied, Message: msg} }
func Internal(msg string) *Error         { return &Error{Code: CodeInternal, Message: msg} }

// Storage wraps an unexpected store failure (connectivity, constraint, scan)
// so it is not conflated with business-rule rejections.
func Storage(err error) *Error {
	return &Error{Code: CodeStorageFailure, Message: err.Error()}
}

// Wrap passes typed errors through and tags everything else as a
// storage failure.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var api *Error
	if errors.As(err, &api) {
		return err
	}
	return Storage(err)
}

func ToHTTPStatus(err error) int {
	var api *Error
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict, CodeInvalidState:
			return http.StatusConflict
		case CodePermissionDenied:
			return http.StatusForbidden
		case CodeStorageFailure:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Response is the JSON error body shared by all handlers.
type Response struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) Response {
	var r Response
	r.Error.Code = code
	r.Error.Message = msg
	return r
}

func From(err error) Response {
	var api *Error
	if errors.As(err, &api) {
		return Body(api.Code, api.Message)
	}
	return Body(CodeInternal, err.Error())
}
