package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			response.Abort(c, errs.New(errs.RequestTooLarge))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// IsBodyTooLarge 绑定失败是否因为超出 MaxBodyBytes
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
