package response

import (
	"go-gin-gorm-auth/internal/core/errs"
)

// ErrBody 错误体：稳定 code + 描述（不暴露底层原因）
type ErrBody struct {
	ErrorCode   string `json:"error_code"`
	Description string `json:"description"`
}

// FromError 任意 error -> (HTTP 状态码, 错误体)
func FromError(err error) (int, *ErrBody) {
	e := errs.E(err)
	if e == nil {
		e = errs.New(errs.Unknown)
	}
	return e.Status(), &ErrBody{ErrorCode: string(e.Code), Description: e.Description}
}
