package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidParam        = NewError(400, http.StatusBadRequest, "invalid parameter")
	ErrServerInternalError = NewError(500, http.StatusInternalServerError, "internal server error")
	ErrRouteNotFound       = NewError(404, http.StatusNotFound, "route not found")
)

// friend requests
var (
	ErrDuplicateRequest     = NewError(20002, http.StatusBadRequest, "a friend request has already been sent")
	ErrRequestNotFound      = NewError(20003, http.StatusNotFound, "friend request not found")
	ErrNotFoundOrNotPending = NewError(20004, http.StatusNotFound, "friend request not found or not pending")
	ErrSubmitInProgress     = NewError(20005, http.StatusConflict, "a friend request for this pair is being processed, retry later")
)

var (
	codeMap = make(map[int]*Error)
)

type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	httpStatus int
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %d, message: %v", e.Code, e.Message)
}

func (e *Error) HTTPStatus() int {
	return e.httpStatus
}

func NewError(code int, httpStatus int, message string) *Error {
	if _, ok := codeMap[code]; ok {
		panic("code has defined")
	}
	e := &Error{Code: code, Message: message, httpStatus: httpStatus}
	codeMap[e.Code] = e
	return e
}

// FromError maps any error to a coded one; anything that is not already an
// *Error is reported as ErrServerInternalError.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrServerInternalError
}

func Lookup(code int) (*Error, bool) {
	e, ok := codeMap[code]
	return e, ok
}
