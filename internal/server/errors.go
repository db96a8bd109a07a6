package server

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	errValidation       = "validation"
	errUnauthorized     = "unauthorized"
	errNotFound         = "not_found"
	errState            = "state"
	errConflict         = "conflict"
	errJudgeUnavailable = "judge_unavailable"
	errImageUnavailable = "image_unavailable"
)

// Error is the single error type crossing the engine boundary. Handlers and
// the websocket gateway map Kind to a transport code without reinterpreting
// the message.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errf(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errKind(err error) string {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return ""
}

func httpStatusForError(err error) int {
	switch errKind(err) {
	case errValidation:
		return http.StatusBadRequest
	case errUnauthorized:
		return http.StatusUnauthorized
	case errNotFound:
		return http.StatusNotFound
	case errState, errConflict:
		return http.StatusConflict
	case errJudgeUnavailable, errImageUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
