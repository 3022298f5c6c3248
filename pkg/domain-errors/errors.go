// Package domainerrors defines the error taxonomy surfaced to callers of the
// check-in service. Every error carries a Code (machine readable, stable) and a
// Message (human readable, in the working language of the event staff).
//
// Services create errors with New or Wrap; transports translate codes to
// status codes with HTTPStatus.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeInvalidQuery       Code = "invalid_query"
	CodeNotFound           Code = "not_found"
	CodeNoTeam             Code = "no_team"
	CodeAmbiguousQuery     Code = "ambiguous_query"
	CodeRemoteReadFailed   Code = "remote_read_failed"
	CodeCheckInWriteFailed Code = "checkin_write_failed"
	CodeRenderFailed       Code = "render_failed"
	CodePrintFailed        Code = "print_failed"
	CodeBusy               Code = "busy"
	CodeInternal           Code = "internal"
)

// Default messages shown to event staff.
const (
	MsgInvalidQuery       = "查询参数必须提供 id、name 或 phone 中的一个"
	MsgNotFound           = "未找到选手信息"
	MsgTeamNotFound       = "未找到队伍信息"
	MsgNoTeam             = "选手未组队"
	MsgAmbiguousQuery     = "匹配到多名选手，请提供更精确的查询条件"
	MsgRemoteReadFailed   = "查询选手数据失败"
	MsgCheckInWriteFailed = "签到状态写入失败，可能需要手动修改"
	MsgRenderFailed       = "标签生成失败"
	MsgPrintFailed        = "标签打印失败"
	MsgBusy               = "该选手正在签到中，请稍后重试"
	MsgInternal           = "内部错误"
)

// Error is a coded domain error. Err keeps the underlying cause for logs; it is
// never rendered to callers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
// If err is nil, Wrap behaves like New.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// As returns the outermost domain error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// CodeOf returns the code of err, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// PublicMessage returns the message safe to show to callers.
func PublicMessage(err error) string {
	if de, ok := As(err); ok {
		return de.Message
	}
	return MsgInternal
}

// HTTPStatus maps a code to the HTTP status returned by the transport layer.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidQuery:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNoTeam:
		return http.StatusUnprocessableEntity
	case CodeAmbiguousQuery, CodeBusy:
		return http.StatusConflict
	case CodeRemoteReadFailed, CodeCheckInWriteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
