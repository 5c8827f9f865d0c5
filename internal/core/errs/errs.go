package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误大类（封闭集合），决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindSyntax
	KindRestriction
	KindRateLimited
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindSyntax:
		return "syntax"
	case KindRestriction:
		return "restriction"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus 每个 Kind 必须在这里有对应
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict, KindSyntax, KindRestriction:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Error 业务错误：稳定的 code + 可读描述，可包裹底层错误
type Error struct {
	Code        Code
	Kind        Kind
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按 code 比较，便于 errors.Is(err, errs.New(errs.RoleNotFound))
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func (e *Error) Status() int { return e.Kind.HTTPStatus() }

func New(code Code) *Error {
	d, ok := registry[code]
	if !ok {
		d = registry[Unknown]
	}
	return &Error{Code: code, Kind: d.kind, Description: d.desc}
}

func Wrap(code Code, err error) *Error {
	e := New(code)
	e.Err = err
	return e
}

// Internal 未翻译的底层错误统一走 UNKNOWN
func Internal(err error) *Error { return Wrap(Unknown, err) }

// E 把任意 error 归一成 *Error
func E(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is 判断 err 链上是否有指定 code
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// FromCode 远端返回的 code 还原成本地错误；未知 code 视为 UNKNOWN
func FromCode(code string) *Error {
	c := Code(code)
	if _, ok := registry[c]; !ok {
		return New(Unknown)
	}
	return New(c)
}
